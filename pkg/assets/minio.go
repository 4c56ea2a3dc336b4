// Package assets stores product images in a MinIO bucket.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"shopcore/internal/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrUnsupportedMediaType is returned for images that are not jpeg, png or webp.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

const keyPrefix = "products/"

// Config holds the MinIO connection details.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the base under which objects are served. Defaults to the
	// endpoint.
	PublicURL string
}

// objectStore is the subset of *minio.Client the store uses.
type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

// ImageStore uploads and deletes product images.
type ImageStore struct {
	client  objectStore
	bucket  string
	baseURL string
}

// NewMinioClient connects to MinIO.
func NewMinioClient(cfg Config) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return client, nil
}

// NewImageStore creates an ImageStore on top of client.
func NewImageStore(client *minio.Client, cfg Config) *ImageStore {
	return newImageStore(client, cfg)
}

func newImageStore(client objectStore, cfg Config) *ImageStore {
	base := cfg.PublicURL
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.Endpoint
	}
	return &ImageStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(base, "/") + "/" + cfg.Bucket + "/",
	}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *ImageStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Upload stores the image under a fresh key and returns its public URL.
func (s *ImageStore) Upload(ctx context.Context, image models.ImageUpload) (string, error) {
	contentType := image.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(image.Data)
	}
	ext, err := extensionFromMIME(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", models.ErrValidation, contentType, err)
	}

	key := keyPrefix + uuid.NewString() + "." + ext
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(image.Data), int64(len(image.Data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.baseURL + key, nil
}

// Delete removes the object behind a URL returned by Upload.
func (s *ImageStore) Delete(ctx context.Context, url string) error {
	key, err := s.keyFromURL(url)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *ImageStore) keyFromURL(url string) (string, error) {
	key := strings.TrimPrefix(url, s.baseURL)
	if key == url || key == "" {
		return "", fmt.Errorf("image %q is not stored in bucket %s", url, s.bucket)
	}
	return key, nil
}

func extensionFromMIME(mime string) (string, error) {
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg":
		return "jpg", nil
	case "image/png":
		return "png", nil
	case "image/webp":
		return "webp", nil
	default:
		return "", ErrUnsupportedMediaType
	}
}
