// Package snapshot persists the normalized transaction table as a single CSV
// object in Cloud Storage. The object is the canonical cached copy of the
// ledger: a forced reload overwrites it wholesale, the interactive path reads
// it verbatim.
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/mlaborde/suivi/internal/domain"
)

// ObjectName is the fixed file name of the snapshot inside the configured folder.
const ObjectName = "transactions.csv"

// ErrNotFound is returned when no snapshot object exists yet. This is a
// normal, non-fatal outcome: the caller surfaces it and asks for a reload.
var ErrNotFound = errors.New("snapshot: not found")

// Store provides read and write access to the remote snapshot.
// This interface enables mocking and testing of snapshot operations.
type Store interface {
	// Read downloads and decodes the snapshot table.
	Read(ctx context.Context) ([]domain.Transaction, error)

	// Write encodes the table and overwrites the snapshot object.
	Write(ctx context.Context, txs []domain.Transaction) error
}

// GCSStore is the concrete implementation of Store backed by a GCS bucket.
type GCSStore struct {
	bucket string
	object string
	opts   []option.ClientOption
}

// NewGCSStore creates a store scoped to bucket and folder. When
// credentialsJSON is empty, Application Default Credentials are used
// (gcloud auth application-default login).
func NewGCSStore(bucket, folder string, credentialsJSON []byte) *GCSStore {
	var opts []option.ClientOption
	if len(credentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}
	return &GCSStore{
		bucket: bucket,
		object: path.Join(folder, ObjectName),
		opts:   opts,
	}
}

// Read downloads the snapshot object and decodes it.
func (s *GCSStore) Read(ctx context.Context) ([]domain.Transaction, error) {
	client, err := storage.NewClient(ctx, s.opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open snapshot reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot object: %w", err)
	}

	return DecodeCSV(data)
}

// Write encodes the table and uploads it, replacing any prior snapshot.
func (s *GCSStore) Write(ctx context.Context, txs []domain.Transaction) error {
	data, err := EncodeCSV(txs)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	client, err := storage.NewClient(ctx, s.opts...)
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(s.bucket).Object(s.object).NewWriter(ctx)
	w.ContentType = "text/csv"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("copy snapshot to GCS writer: %w", err)
	}

	// Close to finalize the upload
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize snapshot upload: %w", err)
	}

	return nil
}
