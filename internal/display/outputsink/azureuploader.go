package outputsink

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// sdkAzureUploader adapts a real *azblob.Client to AzureUploader.
type sdkAzureUploader struct {
	client    *azblob.Client
	container string
}

func (u sdkAzureUploader) Upload(ctx context.Context, blobName string, data io.Reader) error {
	_, err := u.client.UploadStream(ctx, u.container, blobName, data, nil)
	return err
}

// NewAzureUploader authenticates against accountURL with a shared key
// credential and returns an AzureUploader targeting container, backed by
// the real SDK.
func NewAzureUploader(accountURL, accountName, accountKey, container string) (AzureUploader, error) {
	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("outputsink: azure shared key credential: %w", err)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(accountURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("outputsink: azure client: %w", err)
	}
	return sdkAzureUploader{client: client, container: container}, nil
}
