package gridloader

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"golang.org/x/xerrors"
)

// Archiver persists raw source payloads before decoding, so a failed or
// mis-decoded task can be replayed from the original bytes.
type Archiver interface {
	Archive(ctx context.Context, t Task, payload []byte) error
}

type gcsArchiver struct {
	bucket *storage.BucketHandle
}

func newGCSArchiver(ctx context.Context, bucket string) (Archiver, error) {
	s, err := storage.NewClient(ctx)
	if err != nil {
		return nil, xerrors.Errorf("failed to build storage client: %w", err)
	}

	return &gcsArchiver{bucket: s.Bucket(bucket)}, nil
}

func (a *gcsArchiver) Archive(ctx context.Context, t Task, payload []byte) error {
	name := fmt.Sprintf("raw/%s/%s/%s_%s.xml",
		t.Document, t.Country,
		t.PeriodStart.UTC().Format("20060102"), t.PeriodEnd.UTC().Format("20060102"))

	w := a.bucket.Object(name).NewWriter(ctx)
	w.ContentType = "application/xml"

	if _, err := w.Write(payload); err != nil {
		w.Close()
		return xerrors.Errorf("failed to write gs://%s/%s: %w", a.bucket.BucketName(), name, err)
	}

	if err := w.Close(); err != nil {
		return xerrors.Errorf("failed to finalize gs://%s/%s: %w", a.bucket.BucketName(), name, err)
	}

	return nil
}
