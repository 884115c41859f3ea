package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"receivables-desk/internal/clients"
	"receivables-desk/internal/domain"
	"receivables-desk/internal/repository"
)

type memCache struct {
	mu   sync.Mutex
	kv   map[string]string
	sets map[string]map[string]struct{}
	gets int
}

func newMemCache() *memCache {
	return &memCache{kv: map[string]string{}, sets: map[string]map[string]struct{}{}}
}

func (c *memCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kv[key] = value.(string)
	return nil
}

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.kv[key]
	if !ok {
		return "", clients.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) SAdd(_ context.Context, key string, members ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sets[key] == nil {
		c.sets[key] = map[string]struct{}{}
	}
	for _, m := range members {
		c.sets[key][m.(string)] = struct{}{}
	}
	return nil
}

func (c *memCache) SMembers(_ context.Context, key string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for m := range c.sets[key] {
		out = append(out, m)
	}
	return out, nil
}

type memStore struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func newMemStore() *memStore {
	return &memStore{files: map[string][]byte{}}
}

func (s *memStore) Put(_ context.Context, fileName, _ string, data []byte) (string, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := "k_" + fileName
	s.files[key] = data
	return key, "/files/" + key, nil
}

type event struct {
	typ        string
	subscriber string
	id         string
}

type recNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *recNotifier) add(typ, subscriber, id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{typ, subscriber, id})
}

func (n *recNotifier) snapshot() []event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]event(nil), n.events...)
}

func (n *recNotifier) NotifyReceivableSubmitted(_ context.Context, subscriber, id, _ string) error {
	n.add("receivable_submitted", subscriber, id)
	return nil
}

func (n *recNotifier) NotifyPaymentSubmitted(_ context.Context, subscriber, id, _, _, _ string) error {
	n.add("payment_submitted", subscriber, id)
	return nil
}

func (n *recNotifier) NotifyExportProgress(_ context.Context, subscriber, id string, _ float64, _ string) error {
	n.add("export_progress", subscriber, id)
	return nil
}

func (n *recNotifier) NotifyExportComplete(_ context.Context, subscriber, id, _, _ string) error {
	n.add("export_complete", subscriber, id)
	return nil
}

func (n *recNotifier) NotifyExportFailed(_ context.Context, subscriber, id, _ string) error {
	n.add("export_failed", subscriber, id)
	return nil
}

type countMetrics struct {
	mu          sync.Mutex
	receivables map[string]int
	payments    map[string]int
	attachments int
	exports     map[string]int
}

func newCountMetrics() *countMetrics {
	return &countMetrics{receivables: map[string]int{}, payments: map[string]int{}, exports: map[string]int{}}
}

func (m *countMetrics) RecordReceivable(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receivables[result]++
}

func (m *countMetrics) RecordPayment(method, result string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[method+"/"+result]++
}

func (m *countMetrics) RecordAttachment() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attachments++
}

func (m *countMetrics) RecordExport(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exports[result]++
}

func (m *countMetrics) exportCount(result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exports[result]
}

type memReceivables struct {
	mu      sync.Mutex
	stored  []domain.Receivable
	err     error
	tooMany bool
}

func (r *memReceivables) Create(_ context.Context, rcv *domain.Receivable) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	rcv.CreatedAt = &now
	r.stored = append(r.stored, *rcv)
	return nil
}

func (r *memReceivables) List(_ context.Context, _ repository.ReceivablesFilter) ([]domain.Receivable, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Receivable(nil), r.stored...), nil
}

func (r *memReceivables) HasMoreThan(_ context.Context, _ int64, _ repository.ReceivablesFilter) (bool, error) {
	return r.tooMany, nil
}

type memSecurities struct {
	items map[string]domain.Security
	calls int
}

func (r *memSecurities) Get(_ context.Context, id string) (domain.Security, error) {
	r.calls++
	sec, ok := r.items[id]
	if !ok {
		return domain.Security{}, repository.ErrNotFound
	}
	return sec, nil
}

type memPayments struct {
	stored []domain.Payment
	err    error
}

func (r *memPayments) Create(_ context.Context, p *domain.Payment) error {
	if r.err != nil {
		return r.err
	}
	now := time.Now()
	p.CreatedAt = &now
	r.stored = append(r.stored, *p)
	return nil
}

var errBoom = errors.New("boom")
