package cache

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/beacon-hq/setup-beacon/internal/messages"
)

// S3Backend stores entries in an S3-compatible bucket, one object per file
// under a key prefix. Self-hosted runners point it at a shared bucket so
// independent jobs reuse each other's installs.
type S3Backend struct {
	client *minio.Client
	bucket string
}

// S3Options configures an S3Backend.
type S3Options struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// NewS3Backend returns an S3Backend for the given endpoint and bucket.
func NewS3Backend(opts S3Options) (*S3Backend, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf(messages.CacheS3ClientFmt, opts.Endpoint, err)
	}
	return &S3Backend{client: client, bucket: opts.Bucket}, nil
}

// Fetch downloads every object under the key prefix into destDir.
func (b *S3Backend) Fetch(ctx context.Context, key string, destDir string) (bool, error) {
	prefix := key + "/"
	found := false
	for object := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if object.Err != nil {
			return false, object.Err
		}
		name := path.Base(object.Key)
		dest := filepath.Join(destDir, name)
		if err := b.client.FGetObject(ctx, b.bucket, object.Key, dest, minio.GetObjectOptions{}); err != nil {
			return false, err
		}
		if err := os.Chmod(dest, 0o755); err != nil {
			return false, err
		}
		found = true
	}
	return found, nil
}

// Store uploads srcPath as a single object named destName under the key
// prefix. The upload is all-or-nothing: a partial put never becomes visible to
// Fetch.
func (b *S3Backend) Store(ctx context.Context, key string, srcPath string, destName string) error {
	if destName == "" {
		destName = filepath.Base(srcPath)
	}
	object := key + "/" + destName
	_, err := b.client.FPutObject(ctx, b.bucket, object, srcPath, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	return err
}
