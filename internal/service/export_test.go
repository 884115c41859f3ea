package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"receivables-desk/internal/domain"
	"receivables-desk/internal/repository"
	"receivables-desk/pkg/metrics"

	"github.com/xuri/excelize/v2"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestStartReceivablesExport_WritesWorkbook(t *testing.T) {
	repo := &memReceivables{stored: []domain.Receivable{
		{ID: "r1", ReceivableSubmission: domain.ReceivableSubmission{ReceivableFields: domain.ReceivableFields{DebtorName: "Acme Corp", Amount: "5000", Currency: "USD"}}},
		{ID: "r2", ReceivableSubmission: domain.ReceivableSubmission{
			ReceivableFields: domain.ReceivableFields{DebtorName: "Globex", Amount: "120.50", Currency: "EUR"},
			DueDiligence:     &domain.DueDiligence{OrderPhotos: []string{"a", "b"}},
		}},
	}}
	cache := newMemCache()
	store := newMemStore()
	ws := &recNotifier{}
	m := newCountMetrics()
	svc := NewReceivableService(repo, cache, store, ws, m, "exports:")

	key, err := svc.StartReceivablesExport(context.Background(), []string{"id", "debtor_name", "order_photos", "nope"}, repository.ReceivablesFilter{}, "desk-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	waitFor(t, func() bool { return m.exportCount(metrics.ResultAccepted) == 1 })

	exports := NewExportService(cache)
	st, err := exports.GetExport(context.Background(), key, "desk-1")
	if err != nil {
		t.Fatalf("get export: %v", err)
	}
	if st.Progress != 100 || st.FileURL == nil {
		t.Fatalf("expected finished export, got %+v", st)
	}

	store.mu.Lock()
	var data []byte
	for _, v := range store.files {
		data = v
	}
	store.mu.Unlock()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	rows, err := f.GetRows("Receivables")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][1] != "Debtor" || rows[0][2] != "Order photos" || len(rows[0]) != 3 {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[2][1] != "Globex" || rows[2][2] != "2" {
		t.Fatalf("unexpected row %v", rows[2])
	}

	last := ws.snapshot()
	if got := last[len(last)-1]; got.typ != "export_complete" || got.subscriber != "desk-1" {
		t.Fatalf("expected export_complete last, got %+v", got)
	}
}

func TestStartReceivablesExport_StoreFailure(t *testing.T) {
	repo := &memReceivables{}
	cache := newMemCache()
	store := newMemStore()
	store.err = errBoom
	ws := &recNotifier{}
	m := newCountMetrics()
	svc := NewReceivableService(repo, cache, store, ws, m, "exports:")

	key, err := svc.StartReceivablesExport(context.Background(), nil, repository.ReceivablesFilter{}, "desk-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	waitFor(t, func() bool { return m.exportCount(metrics.ResultFailed) == 1 })

	st, err := NewExportService(cache).GetExport(context.Background(), key, "desk-1")
	if err != nil {
		t.Fatalf("get export: %v", err)
	}
	if st.Error == nil || st.FileURL != nil {
		t.Fatalf("expected failed export status, got %+v", st)
	}
}

func TestStartReceivablesExport_TooMany(t *testing.T) {
	svc := NewReceivableService(&memReceivables{tooMany: true}, newMemCache(), newMemStore(), nil, nil, "")
	if _, err := svc.StartReceivablesExport(context.Background(), nil, repository.ReceivablesFilter{}, "desk-1"); err == nil {
		t.Fatal("expected an error for oversized export")
	}
}

func TestExportService_ScopedToSubscriber(t *testing.T) {
	cache := newMemCache()
	svc := NewReceivableService(&memReceivables{}, cache, nil, nil, nil, "exports:")

	older := &ExportStatus{Key: "exports:1", Subscriber: "desk-1", Created: time.Now().Add(-time.Hour)}
	newer := &ExportStatus{Key: "exports:2", Subscriber: "desk-1", Created: time.Now()}
	other := &ExportStatus{Key: "exports:3", Subscriber: "desk-2", Created: time.Now()}
	for _, st := range []*ExportStatus{older, newer, other} {
		if err := svc.saveExportStatus(context.Background(), st); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	exports := NewExportService(cache)
	list, err := exports.GetExports(context.Background(), "desk-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "exports:2" || list[1].Key != "exports:1" {
		t.Fatalf("expected newest first for desk-1, got %+v", list)
	}

	if _, err := exports.GetExport(context.Background(), "exports:3", "desk-1"); !errors.Is(err, ErrExportNotFound) {
		t.Fatalf("expected ErrExportNotFound for another subscriber, got %v", err)
	}
	if _, err := exports.GetExport(context.Background(), "exports:404", "desk-1"); !errors.Is(err, ErrExportNotFound) {
		t.Fatalf("expected ErrExportNotFound for missing key, got %v", err)
	}
}
