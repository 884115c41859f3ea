package clients

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// StorageClient keeps files on local disk and serves them under PublicPrefix.
// Stored names start with Namespace, which callers cannot influence.
type StorageClient struct {
	BaseDir      string
	PublicPrefix string
	BaseURL      string
	Namespace    string
}

// ExportNamespace marks generated exports. Random name prefixes are hex, so
// no uploaded file can land in it.
const ExportNamespace = "export-"

// WithNamespace returns a client over the same directory whose files are
// stored under ns.
func (s *StorageClient) WithNamespace(ns string) *StorageClient {
	c := *s
	c.Namespace = ns
	return &c
}

// NewLocalStorage creates baseDir if it is missing.
func NewLocalStorage(baseDir, publicPrefix, baseURL string) (*StorageClient, error) {
	if baseDir == "" {
		baseDir = "./files"
	}
	if publicPrefix == "" {
		publicPrefix = "/files"
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure storage dir %q: %w", baseDir, err)
	}

	return &StorageClient{BaseDir: baseDir, PublicPrefix: publicPrefix, BaseURL: baseURL}, nil
}

// Put stores data under a unique name and returns that name and its public URL.
// contentType is ignored; the file server sniffs it on read.
func (s *StorageClient) Put(ctx context.Context, fileName, contentType string, data []byte) (string, string, error) {
	saved, err := s.Save(ctx, fileName, data)
	if err != nil {
		return "", "", err
	}
	return saved, s.GetURL(saved), nil
}

// Save writes data atomically with a random prefix and returns the stored name.
func (s *StorageClient) Save(ctx context.Context, fileName string, data []byte) (string, error) {
	fileName = filepath.Base(fileName)

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}
	final := fmt.Sprintf("%s%s_%s", s.Namespace, hex.EncodeToString(randBytes), fileName)

	path := filepath.Join(s.BaseDir, final)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize file: %w", err)
	}

	return final, nil
}

// Path resolves a stored name inside BaseDir. It rejects names that would
// escape the directory.
func (s *StorageClient) Path(fileName string) (string, error) {
	if fileName == "" || fileName != filepath.Base(fileName) || strings.HasPrefix(fileName, ".") {
		return "", fmt.Errorf("invalid file name %q", fileName)
	}
	return filepath.Join(s.BaseDir, fileName), nil
}

// OriginalName strips the random prefix added by Save.
func OriginalName(stored string) string {
	if idx := strings.IndexByte(stored, '_'); idx >= 0 {
		return stored[idx+1:]
	}
	return stored
}

// GetURL builds BaseURL + PublicPrefix + "/" + name, or a relative path when
// BaseURL is empty.
func (s *StorageClient) GetURL(fileName string) string {
	prefix := s.PublicPrefix
	if prefix == "" {
		prefix = "/files"
	}
	if prefix[0] != '/' {
		prefix = "/" + prefix
	}

	if s.BaseURL != "" {
		return fmt.Sprintf("%s%s/%s", strings.TrimSuffix(s.BaseURL, "/"), prefix, fileName)
	}
	return fmt.Sprintf("%s/%s", prefix, fileName)
}

// CleanupOlderThan deletes files of this client's namespace whose mtime is
// older than d. A client without a namespace owns user uploads and refuses.
func (s *StorageClient) CleanupOlderThan(d time.Duration) error {
	if s.Namespace == "" {
		return fmt.Errorf("cleanup needs a namespace")
	}
	now := time.Now()
	return filepath.WalkDir(s.BaseDir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() || !strings.HasPrefix(de.Name(), s.Namespace) {
			return nil
		}
		info, err := de.Info()
		if err != nil {
			return nil
		}
		if now.Sub(info.ModTime()) > d {
			_ = os.Remove(path)
		}
		return nil
	})
}
