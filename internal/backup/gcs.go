package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSSink stores documents as objects in a Google Cloud Storage bucket.
// Credentials come from Application Default Credentials unless client options
// say otherwise.
type GCSSink struct {
	bucket string
	prefix string
	client *storage.Client
}

// NewGCSSink creates a sink writing to gs://bucket/prefix/.
func NewGCSSink(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*GCSSink, error) {
	if bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSSink{bucket: bucket, prefix: strings.Trim(prefix, "/"), client: client}, nil
}

func (s *GCSSink) Close() error {
	return s.client.Close()
}

func (s *GCSSink) Name() string {
	return "gs://" + path.Join(s.bucket, s.prefix)
}

func (s *GCSSink) ObjectName(name string) string {
	return path.Join(s.prefix, name)
}

func (s *GCSSink) Put(ctx context.Context, name string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(s.ObjectName(name)).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write GCS object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}

func (s *GCSSink) Get(ctx context.Context, name string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.ObjectName(name)).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object: %w", err)
	}
	return data, nil
}

func (s *GCSSink) Latest(ctx context.Context) (string, error) {
	q := &storage.Query{Prefix: s.ObjectName("monefy-backup-")}
	it := s.client.Bucket(s.bucket).Objects(ctx, q)
	var latest string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("list GCS objects: %w", err)
		}
		if name := path.Base(attrs.Name); name > latest {
			latest = name
		}
	}
	return latest, nil
}
