// internal/adapters/out/gcs/product_image_store.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// =====================================================
// GCS-based object storage for product images
// =====================================================

var fileNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ProductImageStore uploads catalog images and returns the public URL
// stored in the product document's image field.
type ProductImageStore struct {
	Client *storage.Client
	Bucket string
}

func NewProductImageStore(client *storage.Client, bucket string) *ProductImageStore {
	return &ProductImageStore{Client: client, Bucket: strings.TrimSpace(bucket)}
}

func (s *ProductImageStore) bucketName() (string, error) {
	if s == nil || s.Client == nil {
		return "", errors.New("product_image_store: GCS client is nil")
	}
	b := strings.TrimSpace(s.Bucket)
	if b == "" {
		return "", errors.New("product_image_store: bucket is empty")
	}
	return b, nil
}

// Upload streams one image object to "products/<ts>_<name>" and makes
// it publicly readable (the catalog serves the URL without auth).
func (s *ProductImageStore) Upload(ctx context.Context, fileName, contentType string, body io.Reader) (string, error) {
	bucket, err := s.bucketName()
	if err != nil {
		return "", err
	}

	objectPath := fmt.Sprintf("products/%d_%s", time.Now().Unix(), sanitizeFileName(fileName))

	obj := s.Client.Bucket(bucket).Object(objectPath)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, body); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("product_image_store: upload failed: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("product_image_store: finalize failed: %w", err)
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		// 公開 ACL 失敗は致命ではない（バケットポリシーで公開済みの場合がある）
		return publicURL(bucket, objectPath), nil
	}
	return publicURL(bucket, objectPath), nil
}

// Delete removes an uploaded object by its path within the bucket.
func (s *ProductImageStore) Delete(ctx context.Context, objectPath string) error {
	bucket, err := s.bucketName()
	if err != nil {
		return err
	}
	p := strings.TrimSpace(objectPath)
	if p == "" {
		return errors.New("product_image_store: objectPath is empty")
	}

	if err := s.Client.Bucket(bucket).Object(p).Delete(ctx); err != nil {
		return fmt.Errorf("product_image_store: delete %s failed: %w", p, err)
	}
	return nil
}

func publicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}

func sanitizeFileName(name string) string {
	out := fileNameSanitizer.ReplaceAllString(name, "_")
	if len(out) > 100 {
		out = out[:100]
	}
	if out == "" || out == "." || out == ".." {
		out = "file"
	}
	return out
}
