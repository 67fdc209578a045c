package outputsink

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// sdkUploader adapts *manager.Uploader to the Uploader interface.
type sdkUploader struct {
	up *manager.Uploader
}

func (u sdkUploader) Upload(ctx context.Context, input *UploadInput) error {
	_, err := u.up.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(input.Bucket),
		Key:    aws.String(input.Key),
		Body:   input.Body,
	})
	return err
}

// NewS3Uploader loads the default AWS config (environment, shared config
// file, or an attached role) for the given region and returns an Uploader
// backed by the real SDK.
func NewS3Uploader(ctx context.Context, region string) (Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg)
	return sdkUploader{up: manager.NewUploader(client)}, nil
}
