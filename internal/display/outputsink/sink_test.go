package outputsink

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalDiskPutCreatesParentDirsAndWritesContent(t *testing.T) {
	dir := t.TempDir()
	sink := LocalDisk{Dir: dir}

	if err := PutBytes(context.Background(), sink, "nested/shot.png", []byte("pixels")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "nested", "shot.png"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, []byte("pixels")) {
		t.Fatalf("content = %q, want %q", got, "pixels")
	}
}

type fakeUploader struct {
	calls []UploadInput
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, input *UploadInput) error {
	f.calls = append(f.calls, *input)
	return f.err
}

func TestS3PutUploadsThroughConfiguredUploader(t *testing.T) {
	up := &fakeUploader{}
	sink := S3{Bucket: "recordings", Uploader: up}

	if err := PutBytes(context.Background(), sink, "buffer/clip.mp4", []byte{1, 2, 3}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if len(up.calls) != 1 {
		t.Fatalf("len(up.calls) = %d, want 1", len(up.calls))
	}
	if up.calls[0].Bucket != "recordings" || up.calls[0].Key != "buffer/clip.mp4" {
		t.Fatalf("call = %+v, want bucket=recordings key=buffer/clip.mp4", up.calls[0])
	}
}

func TestS3PutWithoutUploaderReturnsError(t *testing.T) {
	sink := S3{Bucket: "recordings"}
	if err := PutBytes(context.Background(), sink, "x", []byte{1}); err == nil {
		t.Fatal("expected an error when Uploader is nil")
	}
}

type fakeAzureUploader struct {
	blobNames []string
	err       error
}

func (f *fakeAzureUploader) Upload(ctx context.Context, blobName string, data io.Reader) error {
	f.blobNames = append(f.blobNames, blobName)
	return f.err
}

func TestAzureBlobPutUploadsThroughConfiguredUploader(t *testing.T) {
	up := &fakeAzureUploader{}
	sink := AzureBlob{Uploader: up}

	if err := PutBytes(context.Background(), sink, "buffer/clip.mp4", []byte{1, 2, 3}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(up.blobNames) != 1 || up.blobNames[0] != "buffer/clip.mp4" {
		t.Fatalf("blobNames = %v, want [buffer/clip.mp4]", up.blobNames)
	}
}

func TestAzureBlobPutWithoutUploaderReturnsError(t *testing.T) {
	sink := AzureBlob{}
	if err := PutBytes(context.Background(), sink, "x", []byte{1}); err == nil {
		t.Fatal("expected an error when Uploader is nil")
	}
}

type fakeB2Uploader struct {
	names []string
	err   error
}

func (f *fakeB2Uploader) Upload(ctx context.Context, name string, data io.Reader) error {
	f.names = append(f.names, name)
	return f.err
}

func TestB2PutUploadsThroughConfiguredUploader(t *testing.T) {
	up := &fakeB2Uploader{}
	sink := B2{Uploader: up}

	if err := PutBytes(context.Background(), sink, "shot.png", []byte{1, 2, 3}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(up.names) != 1 || up.names[0] != "shot.png" {
		t.Fatalf("names = %v, want [shot.png]", up.names)
	}
}

func TestB2PutWithoutUploaderReturnsError(t *testing.T) {
	sink := B2{}
	if err := PutBytes(context.Background(), sink, "x", []byte{1}); err == nil {
		t.Fatal("expected an error when Uploader is nil")
	}
}
