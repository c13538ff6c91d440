package gantt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Storage persists rendered images and returns a URL for them.
type Storage interface {
	PutObject(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// BucketStorage uploads objects with an authenticated HTTP PUT.
type BucketStorage struct {
	BaseURL    string
	PublicURL  string
	Token      string
	HTTPClient *http.Client
}

// NewBucketStorage targets baseURL. Objects are served from the same base.
func NewBucketStorage(baseURL, token string) *BucketStorage {
	return &BucketStorage{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// PutObject uploads data under key and returns its public URL.
func (b *BucketStorage) PutObject(ctx context.Context, key, contentType string, data []byte) (string, error) {
	target := b.BaseURL + "/" + escapeKey(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	if b.Token != "" {
		req.Header.Set("Authorization", "Bearer "+b.Token)
	}

	client := b.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload %s: status %d: %s", key, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	public := strings.TrimRight(b.PublicURL, "/")
	if public == "" {
		public = b.BaseURL
	}
	return public + "/" + escapeKey(key), nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// DirStorage writes objects under a local directory.
type DirStorage struct {
	Dir string
}

// PutObject writes data to Dir/key and returns a file:// URL.
func (d DirStorage) PutObject(_ context.Context, key, _ string, data []byte) (string, error) {
	path := filepath.Join(d.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}
