package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"

	"vidlingo/internal/config"
	"vidlingo/internal/logging"
	"vidlingo/internal/services"
	"vidlingo/internal/storage"
)

type fakeClient struct {
	exists    bool
	made      []string
	makeErr   error
	putErrKey string
	puts      map[string]string
	types     map[string]string
}

func newFakeClient(exists bool) *fakeClient {
	return &fakeClient{exists: exists, puts: map[string]string{}, types: map[string]string{}}
}

func (f *fakeClient) BucketExists(context.Context, string) (bool, error) {
	return f.exists, nil
}

func (f *fakeClient) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	if f.makeErr != nil {
		return f.makeErr
	}
	f.made = append(f.made, bucket)
	f.exists = true
	return nil
}

func (f *fakeClient) FPutObject(_ context.Context, _, object, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if object == f.putErrKey {
		return minio.UploadInfo{}, errors.New("connection reset")
	}
	f.puts[object] = filePath
	f.types[object] = opts.ContentType
	return minio.UploadInfo{Key: object, Size: 42}, nil
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix, jobID, file, want string
	}{
		{"vidlingo", "job-1", "/data/processed/job-1/clip_translated.mp4", "vidlingo/job-1/clip_translated.mp4"},
		{"/nested/prefix/", "job-1", "clip.srt", "nested/prefix/job-1/clip.srt"},
		{"", "job-2", "/tmp/a.mp3", "job-2/a.mp3"},
		{"  ", "", "a.mp3", "a.mp3"},
	}
	for _, tc := range tests {
		if got := storage.ObjectKey(tc.prefix, tc.jobID, tc.file); got != tc.want {
			t.Errorf("ObjectKey(%q,%q,%q) = %q, want %q", tc.prefix, tc.jobID, tc.file, got, tc.want)
		}
	}
}

func TestContentType(t *testing.T) {
	for file, want := range map[string]string{
		"a.srt":  "application/x-subrip",
		"a.MP3":  "audio/mpeg",
		"a.mp4":  "video/mp4",
		"a.blob": "application/octet-stream",
	} {
		if got := storage.ContentType(file); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", file, got, want)
		}
	}
}

func TestUploadArtifactsCreatesBucketOnce(t *testing.T) {
	client := newFakeClient(false)
	up := storage.NewWithClient(client, "artifacts", "vidlingo", "us-east-1", logging.NewNop())

	keys, err := up.UploadArtifacts(context.Background(), "job-1", "/p/clip_translated.srt", "", "/p/clip_translated.mp3")
	if err != nil {
		t.Fatalf("UploadArtifacts: %v", err)
	}
	want := []string{"vidlingo/job-1/clip_translated.srt", "vidlingo/job-1/clip_translated.mp3"}
	if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
		t.Fatalf("unexpected keys %v", keys)
	}
	if client.types[want[1]] != "audio/mpeg" {
		t.Fatalf("unexpected content type %q", client.types[want[1]])
	}
	if _, err := up.UploadArtifacts(context.Background(), "job-2", "/p/b.mp4"); err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if len(client.made) != 1 || client.made[0] != "artifacts" {
		t.Fatalf("expected bucket created once, got %v", client.made)
	}
}

func TestUploadArtifactsReturnsPartialKeysOnFailure(t *testing.T) {
	client := newFakeClient(true)
	client.putErrKey = "job-1/b.mp3"
	up := storage.NewWithClient(client, "artifacts", "", "", logging.NewNop())

	keys, err := up.UploadArtifacts(context.Background(), "job-1", "a.srt", "b.mp3", "c.mp4")
	if err == nil {
		t.Fatal("expected upload error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if len(keys) != 1 || keys[0] != "job-1/a.srt" {
		t.Fatalf("expected partial keys, got %v", keys)
	}
	if _, ok := client.puts["job-1/c.mp4"]; ok {
		t.Fatal("expected upload to stop after failure")
	}
}

func TestUploadArtifactsBucketCreationFailure(t *testing.T) {
	client := newFakeClient(false)
	client.makeErr = errors.New("access denied")
	up := storage.NewWithClient(client, "artifacts", "", "", logging.NewNop())
	if _, err := up.UploadArtifacts(context.Background(), "job-1", "a.srt"); err == nil {
		t.Fatal("expected bucket error")
	}
	if len(client.puts) != 0 {
		t.Fatal("expected no uploads without a bucket")
	}
}

func TestNewDisabledReturnsNil(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Enabled = false
	up, err := storage.New(&cfg, logging.NewNop())
	if err != nil || up != nil {
		t.Fatalf("expected nil uploader, got %v, %v", up, err)
	}
	keys, err := up.UploadArtifacts(context.Background(), "job", "a.srt")
	if err != nil || keys != nil {
		t.Fatalf("nil uploader should be a no-op, got %v, %v", keys, err)
	}
}

func TestNewRequiresEndpointAndBucket(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Enabled = true
	cfg.Storage.Endpoint = ""
	cfg.Storage.Bucket = "b"
	if _, err := storage.New(&cfg, logging.NewNop()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	cfg.Storage.Endpoint = "localhost:9000"
	up, err := storage.New(&cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if up.Bucket() != "b" {
		t.Fatalf("unexpected bucket %q", up.Bucket())
	}
}
