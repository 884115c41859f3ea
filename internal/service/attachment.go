package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type AttachmentKind string

const (
	AttachmentPhoto    AttachmentKind = "photo"
	AttachmentDocument AttachmentKind = "document"
)

var (
	ErrUnknownAttachmentKind = errors.New("unknown attachment kind")
	ErrAttachmentTooLarge    = errors.New("attachment too large")
	ErrAttachmentEmpty       = errors.New("attachment is empty")
	ErrNotAnImage            = errors.New("photo must be an image")
)

// Attachment is the reference handed back to the form. URL is what gets
// appended to the photo or document list.
type Attachment struct {
	Kind        AttachmentKind `json:"kind"`
	File        string         `json:"file"`
	URL         string         `json:"url"`
	ContentType string         `json:"content_type"`
	Size        int            `json:"size"`
}

type AttachmentService struct {
	store   BlobStore
	maxSize int
	metrics Metrics
}

func NewAttachmentService(store BlobStore, maxSize int, m Metrics) *AttachmentService {
	return &AttachmentService{store: store, maxSize: maxSize, metrics: m}
}

func (s *AttachmentService) Upload(ctx context.Context, kind AttachmentKind, fileName string, data []byte) (Attachment, error) {
	if kind != AttachmentPhoto && kind != AttachmentDocument {
		return Attachment{}, fmt.Errorf("%w: %q", ErrUnknownAttachmentKind, kind)
	}
	if len(data) == 0 {
		return Attachment{}, ErrAttachmentEmpty
	}
	if s.maxSize > 0 && len(data) > s.maxSize {
		return Attachment{}, fmt.Errorf("%w: %d bytes, limit %d", ErrAttachmentTooLarge, len(data), s.maxSize)
	}

	contentType := mimetype.Detect(data).String()
	if kind == AttachmentPhoto && !strings.HasPrefix(contentType, "image/") {
		return Attachment{}, fmt.Errorf("%w: got %s", ErrNotAnImage, contentType)
	}

	key, url, err := s.store.Put(ctx, fileName, contentType, data)
	if err != nil {
		return Attachment{}, fmt.Errorf("store attachment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordAttachment()
	}
	log.Printf("[ATTACHMENT] stored %s kind=%s size=%d", key, kind, len(data))

	return Attachment{
		Kind:        kind,
		File:        key,
		URL:         url,
		ContentType: contentType,
		Size:        len(data),
	}, nil
}
