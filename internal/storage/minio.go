package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	_ "golang.org/x/image/webp"
)

// MinioStore implements Store using a MinIO (or any S3-compatible) backend.
// MinIO has no server-side image pipeline, so PutResult.Variants is always
// empty and callers fall back to the original metadata, which this store
// probes locally before uploading.
type MinioStore struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// NewMinioStore creates a MinIO client, ensures the bucket exists with a
// public-read policy, and returns a ready-to-use MinioStore.
func NewMinioStore(endpoint, accessKey, secretKey, bucket, publicBase string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx := context.Background()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", bucket, err)
		}
		log.Printf("storage: created bucket %q", bucket)
	}

	if err := client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
		return nil, fmt.Errorf("set bucket policy: %w", err)
	}

	return &MinioStore{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// PutPicture probes the local file's dimensions and format, uploads it under
// key, and returns the public URL plus original metadata.
func (s *MinioStore) PutPicture(ctx context.Context, key string, localPath string) (*PutResult, error) {
	meta, err := probeImage(localPath)
	if err != nil {
		return nil, fmt.Errorf("probe image %q: %w", localPath, err)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", localPath, err)
	}
	defer f.Close()

	_, err = s.client.PutObject(ctx, s.bucket, key, f, meta.SizeBytes, minio.PutObjectOptions{
		ContentType: contentTypeFor(meta.Format),
	})
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", key, err)
	}

	return &PutResult{
		URL:      s.PublicURL(key),
		Original: *meta,
	}, nil
}

// Delete removes the object at key from the bucket. A full public URL is
// accepted and reduced to its key first.
func (s *MinioStore) Delete(ctx context.Context, keyOrURL string) error {
	key := strings.TrimPrefix(strings.TrimPrefix(keyOrURL, s.publicBase), "/")
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// PublicURL returns the browser-accessible URL for the given key.
func (s *MinioStore) PublicURL(key string) string {
	return s.publicBase + "/" + strings.TrimPrefix(key, "/")
}

// probeImage decodes width, height, and format without loading pixel data.
func probeImage(path string) (*ImageMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		// Fall back to the extension so a non-decodable but accepted file
		// still gets size accounting.
		format = strings.TrimPrefix(filepath.Ext(path), ".")
		cfg = image.Config{}
	}

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return &ImageMeta{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Format:    format,
		SizeBytes: info.Size(),
	}, nil
}

func contentTypeFor(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET
// on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
