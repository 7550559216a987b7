// Package gcs fetches raw purchase exports dropped in a Cloud Storage
// bucket. It is the production pipeline.SourceFetcher.
package gcs

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// Fetcher downloads objects by gs:// URI.
type Fetcher struct{}

// NewFetcher returns a Fetcher. The storage client is opened per call so the
// zero value stays usable.
func NewFetcher() *Fetcher { return &Fetcher{} }

// Fetch downloads the object named by a "gs://bucket/object" URI.
func (f *Fetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", uri, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}
	return data, nil
}

// ParseURI splits "gs://bucket/path/to/object" into bucket and object.
func ParseURI(uri string) (bucket, object string, err error) {
	trimmed, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// URI: %q", uri)
	}
	bucket, object, ok = strings.Cut(trimmed, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("malformed gs:// URI: %q", uri)
	}
	return bucket, object, nil
}
