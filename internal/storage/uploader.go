package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"vidlingo/internal/config"
	"vidlingo/internal/logging"
	"vidlingo/internal/services"
)

// ObjectClient is the subset of *minio.Client used by the uploader.
type ObjectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Uploader copies artifact files into a bucket.
type Uploader struct {
	client ObjectClient
	bucket string
	prefix string
	region string
	logger *slog.Logger

	bucketMu sync.Mutex
	bucketOK bool
}

// New builds an uploader from cfg. It returns nil, nil when storage is
// disabled.
func New(cfg *config.Config, logger *slog.Logger) (*Uploader, error) {
	if cfg == nil || !cfg.Storage.Enabled {
		return nil, nil
	}
	sc := cfg.Storage
	if strings.TrimSpace(sc.Endpoint) == "" || strings.TrimSpace(sc.Bucket) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "storage", "init", "storage endpoint and bucket are required", nil)
	}
	client, err := minio.New(sc.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(sc.AccessKey, sc.SecretKey, ""),
		Secure: sc.UseSSL,
		Region: sc.Region,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "storage", "init", "create object storage client", err)
	}
	return NewWithClient(client, sc.Bucket, sc.Prefix, sc.Region, logger), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client ObjectClient, bucket, prefix, region string, logger *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		bucket: bucket,
		prefix: prefix,
		region: region,
		logger: logging.NewComponentLogger(logger, "storage"),
	}
}

// Bucket returns the destination bucket name.
func (u *Uploader) Bucket() string {
	if u == nil {
		return ""
	}
	return u.bucket
}

// ObjectKey returns "<prefix>/<jobID>/<base name of file>".
func ObjectKey(prefix, jobID, file string) string {
	parts := make([]string, 0, 3)
	if p := strings.Trim(strings.TrimSpace(prefix), "/"); p != "" {
		parts = append(parts, p)
	}
	if id := strings.TrimSpace(jobID); id != "" {
		parts = append(parts, id)
	}
	parts = append(parts, filepath.Base(file))
	return path.Join(parts...)
}

// ContentType guesses a MIME type for file from its extension.
func ContentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".srt":
		return "application/x-subrip"
	case ".mp3":
		return "audio/mpeg"
	case ".mp4":
		return "video/mp4"
	}
	if t := mime.TypeByExtension(filepath.Ext(file)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// UploadArtifacts uploads each file and returns the object keys written, in
// input order. Empty paths are skipped. On error the keys uploaded so far are
// returned with it.
func (u *Uploader) UploadArtifacts(ctx context.Context, jobID string, files ...string) ([]string, error) {
	if u == nil || u.client == nil {
		return nil, nil
	}
	if err := u.ensureBucket(ctx); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(files))
	for _, file := range files {
		if strings.TrimSpace(file) == "" {
			continue
		}
		key := ObjectKey(u.prefix, jobID, file)
		info, err := u.client.FPutObject(ctx, u.bucket, key, file, minio.PutObjectOptions{ContentType: ContentType(file)})
		if err != nil {
			return keys, services.Wrap(services.ErrTransient, "storage", "upload", fmt.Sprintf("upload %s", key), err)
		}
		u.logger.Info("artifact uploaded",
			logging.String(logging.FieldEventType, "artifact_uploaded"),
			logging.String(logging.FieldJobID, jobID),
			logging.String("bucket", u.bucket),
			logging.String("key", key),
			logging.Int64("bytes", info.Size),
		)
		keys = append(keys, key)
	}
	return keys, nil
}

func (u *Uploader) ensureBucket(ctx context.Context) error {
	u.bucketMu.Lock()
	defer u.bucketMu.Unlock()
	if u.bucketOK {
		return nil
	}
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return services.Wrap(services.ErrTransient, "storage", "bucket", "check bucket", err)
	}
	if !exists {
		if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{Region: u.region}); err != nil {
			// Another writer may have created it in the meantime.
			if again, checkErr := u.client.BucketExists(ctx, u.bucket); checkErr != nil || !again {
				return services.Wrap(services.ErrTransient, "storage", "bucket", "create bucket", errors.Join(err, checkErr))
			}
		}
		u.logger.Info("bucket created",
			logging.String(logging.FieldEventType, "bucket_created"),
			logging.String("bucket", u.bucket),
		)
	}
	u.bucketOK = true
	return nil
}
