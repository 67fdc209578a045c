package outputsink

import (
	"context"
	"fmt"
	"io"
)

// B2Uploader is the narrow slice of a Backblaze B2 bucket this package
// needs, mirroring Uploader's role for the S3 sink so tests don't have to
// construct a real *b2.Bucket.
type B2Uploader interface {
	Upload(ctx context.Context, name string, data io.Reader) error
}

// B2 flushes blobs to a Backblaze bucket, the third remote sink alongside
// S3 and AzureBlob (spec.md §4.13 SUPPLEMENTED "output sinks" list).
type B2 struct {
	Uploader B2Uploader
}

func (b B2) Put(ctx context.Context, name string, data io.Reader, _ int64) error {
	if b.Uploader == nil {
		return fmt.Errorf("outputsink: b2 sink has no uploader configured")
	}
	if err := b.Uploader.Upload(ctx, name, data); err != nil {
		return fmt.Errorf("outputsink: b2 upload %s: %w", name, err)
	}
	log.Info("flushed to b2", "name", name)
	return nil
}
