package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS stores objects in a Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

// NewGCS connects to bucket. Credentials come from credentialsJSON when
// set, otherwise from Application Default Credentials.
func NewGCS(ctx context.Context, bucket, credentialsJSON string) (*GCS, error) {
	if bucket == "" {
		return nil, errors.New("GCS bucket is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(credentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gcs client: %w", err)
	}

	b := client.Bucket(bucket)
	if _, err := b.Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("gcs bucket %q not found or not accessible: %w", bucket, err)
	}
	return &GCS{client: client, bucket: b}, nil
}

// Put streams r into the object. A failed copy aborts the upload.
func (s *GCS) Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if contentType == "" {
		contentType = DefaultContentType
	}
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType

	n, err := io.Copy(w, r)
	if err != nil {
		// Cancelling before Close discards the partial object.
		cancel()
		w.Close()
		return 0, fmt.Errorf("uploading blob: %w", err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("finishing blob upload: %w", err)
	}
	return n, nil
}

// Get opens a reader on the object.
func (s *GCS) Get(ctx context.Context, key string) (*Object, error) {
	rd, err := s.bucket.Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("opening blob: %w", err)
	}
	contentType := rd.Attrs.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}
	return &Object{Body: rd, ContentType: contentType, Size: rd.Attrs.Size}, nil
}

// Delete removes the object.
func (s *GCS) Delete(ctx context.Context, key string) error {
	err := s.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

// Close releases the client.
func (s *GCS) Close() error {
	return s.client.Close()
}
