package outputsink

import (
	"context"
	"fmt"
	"io"
)

// AzureUploader is the narrow slice of an Azure Blob container this
// package needs, mirroring Uploader's role for the S3 sink so tests don't
// have to construct a real *azblob.Client.
type AzureUploader interface {
	Upload(ctx context.Context, blobName string, data io.Reader) error
}

// AzureBlob flushes blobs to a storage account container, the second
// remote sink alongside S3 (spec.md §4.13 SUPPLEMENTED "output sinks"
// list).
type AzureBlob struct {
	Uploader AzureUploader
}

func (a AzureBlob) Put(ctx context.Context, name string, data io.Reader, _ int64) error {
	if a.Uploader == nil {
		return fmt.Errorf("outputsink: azure blob sink has no uploader configured")
	}
	if err := a.Uploader.Upload(ctx, name, data); err != nil {
		return fmt.Errorf("outputsink: azure blob upload %s: %w", name, err)
	}
	log.Info("flushed to azure blob", "blob", name)
	return nil
}
