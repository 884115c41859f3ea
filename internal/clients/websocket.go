package clients

import (
	"context"

	ws "receivables-desk/internal/transport/websocket"
)

// WebSocketClient publishes service events to hub subscribers. A nil hub
// turns every call into a no-op.
type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{
		hub: hub,
	}
}

func (c *WebSocketClient) publish(subscriber, typ, channel string, data map[string]interface{}) error {
	if c == nil || c.hub == nil || subscriber == "" {
		return nil
	}
	c.hub.Broadcast(subscriber, &ws.Message{
		Type:    typ,
		Channel: channel + "#" + subscriber,
		Data:    data,
	})
	return nil
}

func (c *WebSocketClient) NotifyReceivableSubmitted(ctx context.Context, subscriber, receivableID, debtorName string) error {
	return c.publish(subscriber, "receivable_submitted", "receivables", map[string]interface{}{
		"id":          receivableID,
		"debtor_name": debtorName,
	})
}

func (c *WebSocketClient) NotifyPaymentSubmitted(ctx context.Context, subscriber, paymentID, securityID, method, total string) error {
	return c.publish(subscriber, "payment_submitted", "payments", map[string]interface{}{
		"id":             paymentID,
		"security_id":    securityID,
		"payment_method": method,
		"total_amount":   total,
	})
}

func (c *WebSocketClient) NotifyExportProgress(ctx context.Context, subscriber, exportID string, progress float64, stage string) error {
	data := map[string]interface{}{
		"id":       exportID,
		"progress": progress,
	}
	if stage != "" {
		data["stage"] = stage
	}
	return c.publish(subscriber, "export_progress", "export_progress", data)
}

func (c *WebSocketClient) NotifyExportComplete(ctx context.Context, subscriber, exportID, url, filename string) error {
	return c.publish(subscriber, "export_complete", "export_complete", map[string]interface{}{
		"id":       exportID,
		"url":      url,
		"filename": filename,
	})
}

func (c *WebSocketClient) NotifyExportFailed(ctx context.Context, subscriber, exportID, errMsg string) error {
	return c.publish(subscriber, "export_failed", "export_failed", map[string]interface{}{
		"id":      exportID,
		"message": errMsg,
	})
}
