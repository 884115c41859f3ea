package service

import (
	"context"
	"time"
)

// Cache is the subset of clients.RedisClient the services rely on.
type Cache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	SAdd(ctx context.Context, key string, members ...any) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// BlobStore is implemented by both clients.S3Client and clients.StorageClient.
type BlobStore interface {
	Put(ctx context.Context, fileName, contentType string, data []byte) (key string, url string, err error)
}

// Notifier is implemented by clients.WebSocketClient.
type Notifier interface {
	NotifyReceivableSubmitted(ctx context.Context, subscriber, receivableID, debtorName string) error
	NotifyPaymentSubmitted(ctx context.Context, subscriber, paymentID, securityID, method, total string) error
	NotifyExportProgress(ctx context.Context, subscriber, exportID string, progress float64, stage string) error
	NotifyExportComplete(ctx context.Context, subscriber, exportID, url, filename string) error
	NotifyExportFailed(ctx context.Context, subscriber, exportID, errMsg string) error
}

// Metrics is implemented by *metrics.Collector.
type Metrics interface {
	RecordReceivable(result string)
	RecordPayment(method, result string, total float64)
	RecordAttachment()
	RecordExport(result string)
}
