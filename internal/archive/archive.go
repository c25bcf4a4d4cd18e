// Package archive keeps an audit trail of raw model responses in GCS.
// Archival is best-effort: failures are reported to the caller for logging
// but never fail a generation.
package archive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/spendlens/spendlens/internal/insight"
)

// GCSArchiver writes one object per prompt flow under
// generations/{generationID}/{flow}.json.
type GCSArchiver struct {
	client *storage.Client
	bucket string
}

// NewGCSArchiver creates an archiver for the given bucket. Credentials come
// from the environment.
func NewGCSArchiver(ctx context.Context, bucket string) (*GCSArchiver, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive: create storage client: %w", err)
	}
	return &GCSArchiver{client: client, bucket: bucket}, nil
}

// ArchiveGeneration stores the three raw responses of one generation.
func (a *GCSArchiver) ArchiveGeneration(ctx context.Context, generationID string, raw *insight.RawResponses) error {
	objects := map[string]string{
		"spending": raw.Spending,
		"budget":   raw.Budget,
		"savings":  raw.Savings,
	}
	for flow, body := range objects {
		name := fmt.Sprintf("generations/%s/%s.json", generationID, flow)
		if err := a.write(ctx, name, body); err != nil {
			return fmt.Errorf("archive: store %s response: %w", flow, err)
		}
	}
	return nil
}

func (a *GCSArchiver) write(ctx context.Context, name, body string) error {
	wc := a.client.Bucket(a.bucket).Object(name).NewWriter(ctx)
	wc.ContentType = "application/json"
	if _, err := io.Copy(wc, strings.NewReader(body)); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}

// ListGeneration returns the archived object names of one generation.
func (a *GCSArchiver) ListGeneration(ctx context.Context, generationID string) ([]string, error) {
	prefix := fmt.Sprintf("generations/%s/", generationID)
	it := a.client.Bucket(a.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("archive: list generation: %w", err)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

// Close releases the underlying storage client.
func (a *GCSArchiver) Close() error {
	return a.client.Close()
}
