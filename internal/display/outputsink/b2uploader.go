package outputsink

import (
	"context"
	"fmt"
	"io"

	"github.com/Backblaze/blazer/b2"
)

// sdkB2Uploader adapts a real *b2.Bucket to B2Uploader.
type sdkB2Uploader struct {
	bucket *b2.Bucket
}

func (u sdkB2Uploader) Upload(ctx context.Context, name string, data io.Reader) error {
	w := u.bucket.Object(name).NewWriter(ctx)
	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// NewB2Uploader authenticates against the given account and opens bucket,
// returning a B2Uploader backed by the real SDK.
func NewB2Uploader(ctx context.Context, accountID, applicationKey, bucket string) (B2Uploader, error) {
	client, err := b2.NewClient(ctx, accountID, applicationKey)
	if err != nil {
		return nil, fmt.Errorf("outputsink: b2 client: %w", err)
	}
	bkt, err := client.Bucket(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("outputsink: b2 bucket %s: %w", bucket, err)
	}
	return sdkB2Uploader{bucket: bkt}, nil
}
