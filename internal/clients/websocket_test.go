package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ws "receivables-desk/internal/transport/websocket"

	"github.com/gorilla/websocket"
)

func connectSubscriber(t *testing.T, subscriber string) (*WebSocketClient, *websocket.Conn) {
	t.Helper()

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, subscriber)
	}))
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[4:], nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	time.Sleep(100 * time.Millisecond)
	return NewWebSocketClient(hub), conn
}

type received struct {
	Type       string                 `json:"type"`
	Channel    string                 `json:"channel"`
	Subscriber string                 `json:"subscriber"`
	Data       map[string]interface{} `json:"data"`
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg received
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	return msg
}

func TestWebSocketClient_NotifyReceivableSubmitted(t *testing.T) {
	client, conn := connectSubscriber(t, "desk-7")

	if err := client.NotifyReceivableSubmitted(context.Background(), "desk-7", "rcv-1", "Acme Corp"); err != nil {
		t.Fatalf("notify: %v", err)
	}

	msg := readMessage(t, conn)
	if msg.Type != "receivable_submitted" {
		t.Errorf("expected receivable_submitted, got %s", msg.Type)
	}
	if msg.Channel != "receivables#desk-7" {
		t.Errorf("unexpected channel %s", msg.Channel)
	}
	if msg.Data["id"] != "rcv-1" || msg.Data["debtor_name"] != "Acme Corp" {
		t.Errorf("unexpected data %v", msg.Data)
	}
}

func TestWebSocketClient_NotifyPaymentSubmitted(t *testing.T) {
	client, conn := connectSubscriber(t, "desk-7")

	if err := client.NotifyPaymentSubmitted(context.Background(), "desk-7", "pay-1", "sec-1", "crypto", "1010"); err != nil {
		t.Fatalf("notify: %v", err)
	}

	msg := readMessage(t, conn)
	if msg.Type != "payment_submitted" || msg.Data["payment_method"] != "crypto" || msg.Data["total_amount"] != "1010" {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestWebSocketClient_ExportLifecycle(t *testing.T) {
	client, conn := connectSubscriber(t, "desk-7")
	ctx := context.Background()

	for _, progress := range []float64{10, 50, 95} {
		_ = client.NotifyExportProgress(ctx, "desk-7", "exports:1", progress, "generating")
		msg := readMessage(t, conn)
		if msg.Data["progress"].(float64) != progress || msg.Data["stage"] != "generating" {
			t.Fatalf("unexpected progress message %+v", msg)
		}
	}

	_ = client.NotifyExportComplete(ctx, "desk-7", "exports:1", "/files/x.xlsx", "receivables.xlsx")
	if msg := readMessage(t, conn); msg.Type != "export_complete" || msg.Data["url"] != "/files/x.xlsx" {
		t.Fatalf("unexpected complete message %+v", msg)
	}

	_ = client.NotifyExportFailed(ctx, "desk-7", "exports:2", "upload failed")
	if msg := readMessage(t, conn); msg.Type != "export_failed" || msg.Data["message"] != "upload failed" {
		t.Fatalf("unexpected failed message %+v", msg)
	}
}

func TestWebSocketClient_NilHubAndEmptySubscriber(t *testing.T) {
	client := NewWebSocketClient(nil)
	if err := client.NotifyExportProgress(context.Background(), "desk-7", "exports:1", 50, ""); err != nil {
		t.Errorf("nil hub should not error, got %v", err)
	}

	var nilClient *WebSocketClient
	if err := nilClient.NotifyReceivableSubmitted(context.Background(), "desk-7", "rcv-1", "x"); err != nil {
		t.Errorf("nil client should not error, got %v", err)
	}

	hub := ws.NewHub()
	if err := NewWebSocketClient(hub).NotifyExportFailed(context.Background(), "", "exports:1", "x"); err != nil {
		t.Errorf("empty subscriber should not error, got %v", err)
	}
}
