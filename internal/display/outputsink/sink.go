// Package outputsink implements the pluggable flush targets
// save_recording_buffer and Screenshot's save step write to (spec.md
// §4.13's SUPPLEMENTED "output sinks" list): local disk always works, S3
// is wired as the default remote target so a replay buffer or screenshot
// can flush straight to object storage instead of only local disk.
// AzureBlob and B2 round out the remote targets for deployments that
// standardize on a different object store.
package outputsink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/anvilforge/rig/internal/logging"
)

var log = logging.L("outputsink")

// Sink persists a named blob of bytes somewhere durable. Put is given a
// context so a remote sink (S3) can enforce a deadline; a local sink
// ignores it beyond honoring cancellation.
type Sink interface {
	Put(ctx context.Context, name string, data io.Reader, size int64) error
}

// LocalDisk writes under Dir, creating parent directories as needed. This
// is the default sink: save_recording_buffer and Screenshot both target it
// unless a remote sink is configured.
type LocalDisk struct {
	Dir string
}

func (l LocalDisk) Put(_ context.Context, name string, data io.Reader, _ int64) error {
	path := filepath.Join(l.Dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("outputsink: mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("outputsink: create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, data); err != nil {
		return fmt.Errorf("outputsink: write %s: %w", path, err)
	}
	return nil
}

// Uploader is the narrow slice of *manager.Uploader (aws-sdk-go-v2's
// feature/s3/manager) this package needs, so tests don't have to spin up
// a real S3 client.
type Uploader interface {
	Upload(ctx context.Context, input *UploadInput) error
}

// UploadInput mirrors the s3.PutObjectInput fields manager.Uploader.Upload
// actually uses; kept narrow rather than importing the SDK's own input
// type into this file's signature.
type UploadInput struct {
	Bucket string
	Key    string
	Body   io.Reader
}

// S3 flushes blobs to a bucket via an Uploader (a thin adapter over
// manager.NewUploader(s3.NewFromConfig(cfg)), see NewS3Uploader).
type S3 struct {
	Bucket   string
	Uploader Uploader
}

func (s S3) Put(ctx context.Context, name string, data io.Reader, _ int64) error {
	if s.Uploader == nil {
		return fmt.Errorf("outputsink: S3 sink has no uploader configured")
	}
	err := s.Uploader.Upload(ctx, &UploadInput{Bucket: s.Bucket, Key: name, Body: data})
	if err != nil {
		return fmt.Errorf("outputsink: s3 upload %s/%s: %w", s.Bucket, name, err)
	}
	log.Info("flushed to s3", "bucket", s.Bucket, "key", name)
	return nil
}

// PutBytes is a convenience wrapper for callers (like Screenshot.SaveFunc)
// that already hold the full blob in memory.
func PutBytes(ctx context.Context, sink Sink, name string, data []byte) error {
	return sink.Put(ctx, name, bytes.NewReader(data), int64(len(data)))
}
