package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gocloud.dev/blob"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/kode4food/feedlink/pkg/api"
	"github.com/kode4food/feedlink/pkg/log"
)

type (
	// Writer stores finished onboarding transcripts as JSON objects
	Writer struct {
		bucket BucketWriter
		prefix string
		closer func() error
	}

	// BucketWriter is the subset of blob.Bucket the Writer needs
	BucketWriter interface {
		WriteAll(context.Context, string, []byte, *blob.WriterOptions) error
	}
)

var (
	ErrBucketRequired     = errors.New("bucket is required")
	ErrTranscriptRequired = errors.New("transcript is required")
	ErrOpenBucket         = errors.New("failed to open archive bucket")
)

// NewWriter wraps an already opened bucket
func NewWriter(bucket BucketWriter, prefix string) (*Writer, error) {
	if bucket == nil {
		return nil, ErrBucketRequired
	}
	return &Writer{
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Open opens the bucket at bucketURL (mem://, file:///path, s3://, gs://) and
// returns a Writer that owns it
func Open(ctx context.Context, bucketURL, prefix string) (*Writer, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenBucket, err)
	}
	w, err := NewWriter(bucket, prefix)
	if err != nil {
		_ = bucket.Close()
		return nil, err
	}
	w.closer = bucket.Close
	return w, nil
}

// Write stores the transcript under <prefix><id>.json and returns the key
func (w *Writer) Write(ctx context.Context, t *api.Transcript) (string, error) {
	if t == nil {
		return "", ErrTranscriptRequired
	}

	data, err := json.Marshal(t)
	if err != nil {
		return "", err
	}

	key := Key(w.prefix, t.ID)
	err = w.bucket.WriteAll(ctx, key, data, &blob.WriterOptions{
		ContentType: "application/json",
	})
	if err != nil {
		slog.Error("Failed to archive transcript",
			slog.String("key", key),
			log.Error(err))
		return "", err
	}

	slog.Info("Transcript archived",
		slog.String("key", key),
		slog.Int("calls", len(t.Calls)))
	return key, nil
}

// Close releases the bucket if the Writer opened it
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer()
}

// Key builds the object key for a transcript ID
func Key(prefix, id string) string {
	if prefix == "" {
		return id + ".json"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + id + ".json"
}
