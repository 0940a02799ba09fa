// Package gcs moves cleaning artifacts in and out of Google Cloud Storage.
// It assumes Application Default Credentials are configured
// (gcloud auth application-default login).
package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// ParseURI splits a gs://bucket/object URI into bucket and object path.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("gcs: invalid URI: %s", uri)
	}
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("gcs: invalid URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// Filename extracts the file name from a gs:// URI.
// e.g. "gs://bucket/exports/orders.csv" yields "orders.csv".
func Filename(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}

// Service is the GCS-backed storage used for remote inputs and artifact
// uploads. The zero value is ready to use.
type Service struct{}

// NewService creates a storage service.
func NewService() *Service {
	return &Service{}
}

// Fetch downloads the raw bytes behind a gs:// URI.
func (s *Service) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: creating storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("gcs: reading bytes: %w", err)
	}
	return data, nil
}

// UploadFile uploads a local file to a bucket under the given object name.
func (s *Service) UploadFile(ctx context.Context, bucket, object, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("gcs: open file %q: %w", filePath, err)
	}
	defer f.Close()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("gcs: creating storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("gcs: copying file to writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs: finalizing upload: %w", err)
	}
	return nil
}
