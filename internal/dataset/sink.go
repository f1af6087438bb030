package dataset

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"cloud.google.com/go/storage"

	"github.com/freeeve/pgntensor/internal/config"
)

// Sink stores serialized batches under a key.
type Sink interface {
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}

// BatchKey names batch n (1-based).
func BatchKey(n int, compress bool) string {
	key := "dataset_id_" + strconv.Itoa(n) + ".bin"
	if compress {
		key += ".zst"
	}
	return key
}

// OpenSink builds the sink selected by cfg.
func OpenSink(ctx context.Context, cfg config.Sink) (Sink, error) {
	switch cfg.Kind {
	case config.SinkDir:
		return NewDirSink(cfg.Dir)
	case config.SinkGCS:
		return NewGCSSink(ctx, cfg.Bucket, cfg.Prefix)
	default:
		return nil, fmt.Errorf("unknown sink kind %q", cfg.Kind)
	}
}

// DirSink writes batches as files in a local directory.
type DirSink struct {
	dir string
}

// NewDirSink creates dir if needed.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create dataset dir: %w", err)
	}
	return &DirSink{dir: dir}, nil
}

// Dir returns the output directory.
func (s *DirSink) Dir() string { return s.dir }

// Put writes data to dir/key via a temp file and rename.
func (s *DirSink) Put(_ context.Context, key string, data []byte) error {
	p := filepath.Join(s.dir, key)
	tmpPath := p + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write batch %s: %w", p, err)
	}
	if err := os.Rename(tmpPath, p); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename batch %s: %w", p, err)
	}
	return nil
}

func (s *DirSink) Close() error { return nil }

// GCSSink uploads batches to a Cloud Storage bucket.
type GCSSink struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSSink connects with application default credentials.
func NewGCSSink(ctx context.Context, bucket, prefix string) (*GCSSink, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSSink{client: client, bucket: bucket, prefix: prefix}, nil
}

// ObjectName returns the object a key is stored under.
func (s *GCSSink) ObjectName(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// Put uploads data as one object.
func (s *GCSSink) Put(ctx context.Context, key string, data []byte) error {
	name := s.ObjectName(key)
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload gs://%s/%s: %w", s.bucket, name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload gs://%s/%s: %w", s.bucket, name, err)
	}
	return nil
}

func (s *GCSSink) Close() error { return s.client.Close() }
