package clients

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
	URLTTL          time.Duration

	// PublicPrefix and BaseURL build the stable reference handed to clients.
	PublicPrefix string
	BaseURL      string
}

// S3Client stores attachments and exports in an S3-compatible bucket. The
// reference it returns points at the service, which presigns on every read.
type S3Client struct {
	raw    *minio.Client
	bucket string
	prefix string
	ttl    time.Duration

	publicPrefix string
	baseURL      string
}

func NewS3Client(ctx context.Context, cfg S3Config) (*S3Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}

	ttl := cfg.URLTTL
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}

	return &S3Client{
		raw:          client,
		bucket:       cfg.Bucket,
		prefix:       cfg.Prefix,
		ttl:          ttl,
		publicPrefix: cfg.PublicPrefix,
		baseURL:      cfg.BaseURL,
	}, nil
}

func (c *S3Client) objectKey(fileName string) string {
	return c.prefix + uuid.NewString() + "_" + path.Base(fileName)
}

// ReferenceURL is the stable link for key. It never expires.
func (c *S3Client) ReferenceURL(key string) string {
	prefix := c.publicPrefix
	if prefix == "" {
		prefix = "/files"
	}
	if prefix[0] != '/' {
		prefix = "/" + prefix
	}
	return strings.TrimSuffix(c.baseURL, "/") + prefix + "/" + key
}

// PresignedURL returns a short-lived download link for key.
func (c *S3Client) PresignedURL(ctx context.Context, key string) (string, error) {
	u, err := c.raw.PresignedGetObject(ctx, c.bucket, key, c.ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign get object %q failed: %w", key, err)
	}
	return u.String(), nil
}

// Put uploads data and returns the object key and its reference URL.
func (c *S3Client) Put(ctx context.Context, fileName, contentType string, data []byte) (string, string, error) {
	if c.raw == nil {
		return "", "", fmt.Errorf("s3 client is nil")
	}

	key := c.objectKey(fileName)
	_, err := c.raw.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", "", fmt.Errorf("put object %q failed: %w", key, err)
	}

	return key, c.ReferenceURL(key), nil
}
