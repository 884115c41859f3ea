package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"receivables-desk/internal/clients"
	"receivables-desk/internal/domain"
	"receivables-desk/internal/repository"
	"receivables-desk/pkg/metrics"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

var ErrExportNotFound = errors.New("export not found")

type ExportStatus struct {
	Key        string    `json:"key"`
	Type       string    `json:"type"`
	Subscriber string    `json:"subscriber"`
	Filters    any       `json:"filters"`
	Progress   float64   `json:"progress"`
	FileURL    *string   `json:"file_url"`
	Error      *string   `json:"error,omitempty"`
	Created    time.Time `json:"created_at"`
}

const (
	exportSetKey = "export_ids"
	exportTTL    = 20 * time.Minute

	maxReceivablesForExport = 200_000

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ReceivableColumn struct {
	Header string
	Value  func(r domain.Receivable) any
}

var receivableColumns = map[string]ReceivableColumn{
	"id":          {Header: "ID", Value: func(r domain.Receivable) any { return r.ID }},
	"debtor_name": {Header: "Debtor", Value: func(r domain.Receivable) any { return r.DebtorName }},
	"amount":      {Header: "Amount", Value: func(r domain.Receivable) any { return r.Amount }},
	"currency":    {Header: "Currency", Value: func(r domain.Receivable) any { return r.Currency }},
	"due_date":    {Header: "Due date", Value: func(r domain.Receivable) any { return r.DueDate }},
	"description": {Header: "Description", Value: func(r domain.Receivable) any { return r.Description }},
	"category":    {Header: "Category", Value: func(r domain.Receivable) any { return r.Category }},
	"risk_level":  {Header: "Risk level", Value: func(r domain.Receivable) any { return r.RiskLevel }},
	"order_photos": {Header: "Order photos", Value: func(r domain.Receivable) any {
		if r.DueDiligence == nil {
			return 0
		}
		return len(r.DueDiligence.OrderPhotos)
	}},
	"legal_documents": {Header: "Legal documents", Value: func(r domain.Receivable) any {
		if r.DueDiligence == nil {
			return 0
		}
		return len(r.DueDiligence.LegalDocuments)
	}},
	"debtor_contact": {Header: "Debtor contact", Value: func(r domain.Receivable) any {
		if r.DueDiligence == nil || r.DueDiligence.DebtorContact == nil {
			return ""
		}
		c := r.DueDiligence.DebtorContact
		return strings.TrimSpace(strings.Join([]string{c.Name, c.Email, c.Phone}, " "))
	}},
	"order_number": {Header: "Order number", Value: func(r domain.Receivable) any {
		if r.DueDiligence == nil || r.DueDiligence.OrderDetails == nil {
			return ""
		}
		return r.DueDiligence.OrderDetails.OrderNumber
	}},
	"created_at": {Header: "Created", Value: func(r domain.Receivable) any { return timePtr(r.CreatedAt) }},
}

var defaultReceivableColumns = []string{
	"id", "debtor_name", "amount", "currency", "due_date", "description", "category", "risk_level",
	"order_photos", "legal_documents", "debtor_contact", "order_number", "created_at",
}

func timePtr(p *time.Time) string {
	if p == nil {
		return ""
	}
	return p.Format("2006-01-02 15:04:05")
}

func (s *ReceivableService) saveExportStatus(ctx context.Context, st *ExportStatus) error {
	if s.cache == nil {
		return nil
	}
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, st.Key, string(data), exportTTL); err != nil {
		return err
	}
	return s.cache.SAdd(ctx, exportSetKey, st.Key)
}

// StartReceivablesExport queues an xlsx export of the receivables register
// and returns its key. Progress is published to subscriber.
func (s *ReceivableService) StartReceivablesExport(ctx context.Context, selected []string, filter repository.ReceivablesFilter, subscriber string) (string, error) {
	if len(selected) == 0 {
		selected = defaultReceivableColumns
	}

	tooMany, err := s.repo.HasMoreThan(ctx, maxReceivablesForExport, filter)
	if err != nil {
		return "", err
	}
	if tooMany {
		return "", fmt.Errorf("too many receivables to export (more than %d)", maxReceivablesForExport)
	}

	status := &ExportStatus{
		Key:        s.exportPrefix + uuid.NewString(),
		Type:       "receivables",
		Subscriber: subscriber,
		Filters:    buildReceivablesFiltersMap(filter, selected),
		Created:    time.Now(),
	}
	_ = s.saveExportStatus(ctx, status)

	go s.runReceivablesExport(context.Background(), status, selected, filter)

	return status.Key, nil
}

func (s *ReceivableService) runReceivablesExport(ctx context.Context, status *ExportStatus, selected []string, filter repository.ReceivablesFilter) {
	fail := func(msg string) {
		log.Printf("[EXPORT] %s: %s", status.Key, msg)
		status.Error = &msg
		status.Progress = 100
		_ = s.saveExportStatus(ctx, status)
		if s.ws != nil {
			_ = s.ws.NotifyExportFailed(ctx, status.Subscriber, status.Key, msg)
		}
		if s.metrics != nil {
			s.metrics.RecordExport(metrics.ResultFailed)
		}
	}

	receivables, err := s.repo.List(ctx, filter)
	if err != nil {
		fail(fmt.Sprintf("list receivables: %v", err))
		return
	}

	data, err := s.buildWorkbook(ctx, status, selected, receivables)
	if err != nil {
		fail(err.Error())
		return
	}

	if s.store == nil {
		fail("no storage configured")
		return
	}

	status.Progress = 95
	_ = s.saveExportStatus(ctx, status)
	if s.ws != nil {
		_ = s.ws.NotifyExportProgress(ctx, status.Subscriber, status.Key, 95, "uploading")
	}

	fileName := fmt.Sprintf("receivables_%s.xlsx", time.Now().Format("20060102_150405"))
	_, url, err := s.store.Put(ctx, fileName, xlsxContentType, data)
	if err != nil {
		fail(fmt.Sprintf("save export failed: %v", err))
		return
	}

	status.FileURL = &url
	status.Progress = 100
	_ = s.saveExportStatus(ctx, status)
	if s.ws != nil {
		_ = s.ws.NotifyExportProgress(ctx, status.Subscriber, status.Key, 100, "ready")
		_ = s.ws.NotifyExportComplete(ctx, status.Subscriber, status.Key, url, fileName)
	}
	if s.metrics != nil {
		s.metrics.RecordExport(metrics.ResultAccepted)
	}
}

func (s *ReceivableService) buildWorkbook(ctx context.Context, status *ExportStatus, selected []string, receivables []domain.Receivable) ([]byte, error) {
	var cols []ReceivableColumn
	for _, key := range selected {
		if col, ok := receivableColumns[key]; ok {
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		return nil, errors.New("no known columns selected")
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Receivables"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	for i, col := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col.Header)
	}

	total := len(receivables)
	const chunkSize = 1000
	for i, r := range receivables {
		for colIdx, col := range cols {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, i+2)
			_ = f.SetCellValue(sheet, cell, col.Value(r))
		}

		if (i+1)%chunkSize == 0 || i == total-1 {
			// 100 is reserved for when the file URL exists
			progress := math.Min(math.Round(float64(i+1)/float64(total)*100), 90)
			status.Progress = progress
			_ = s.saveExportStatus(ctx, status)
			if s.ws != nil {
				_ = s.ws.NotifyExportProgress(ctx, status.Subscriber, status.Key, progress, "generating")
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func buildReceivablesFiltersMap(f repository.ReceivablesFilter, fields []string) map[string]interface{} {
	m := map[string]interface{}{
		"currency":     nil,
		"risk_level":   nil,
		"category":     nil,
		"created_from": nil,
		"created_to":   nil,
	}
	if f.Currency != nil {
		m["currency"] = *f.Currency
	}
	if f.RiskLevel != nil {
		m["risk_level"] = *f.RiskLevel
	}
	if f.Category != nil {
		m["category"] = *f.Category
	}
	if f.CreatedFrom != nil {
		m["created_from"] = f.CreatedFrom.Format("2006-01-02")
	}
	if f.CreatedTo != nil {
		m["created_to"] = f.CreatedTo.Format("2006-01-02")
	}
	m["fields"] = fields
	return m
}

// ExportService reads export statuses back from the cache.
type ExportService struct {
	cache Cache
}

func NewExportService(cache Cache) *ExportService {
	return &ExportService{cache: cache}
}

func (s *ExportService) GetExports(ctx context.Context, subscriber string) ([]ExportStatus, error) {
	if s.cache == nil {
		return nil, errors.New("cache not configured")
	}

	keys, err := s.cache.SMembers(ctx, exportSetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get export keys: %w", err)
	}

	statuses := []ExportStatus{}
	for _, key := range keys {
		st, err := s.load(ctx, key)
		if err != nil {
			continue
		}
		if st.Subscriber == subscriber {
			statuses = append(statuses, st)
		}
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Created.After(statuses[j].Created)
	})
	return statuses, nil
}

func (s *ExportService) GetExport(ctx context.Context, exportID, subscriber string) (ExportStatus, error) {
	if s.cache == nil {
		return ExportStatus{}, errors.New("cache not configured")
	}

	st, err := s.load(ctx, exportID)
	if errors.Is(err, clients.ErrCacheMiss) {
		return ExportStatus{}, ErrExportNotFound
	}
	if err != nil {
		return ExportStatus{}, err
	}
	if st.Subscriber != subscriber {
		return ExportStatus{}, ErrExportNotFound
	}
	return st, nil
}

func (s *ExportService) load(ctx context.Context, key string) (ExportStatus, error) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return ExportStatus{}, err
	}
	var st ExportStatus
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return ExportStatus{}, fmt.Errorf("failed to parse export status: %w", err)
	}
	return st, nil
}
