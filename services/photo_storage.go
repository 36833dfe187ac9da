package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	aws_pkg "catalog-service/pkg/aws"

	"go.uber.org/zap"
)

// PhotoStorage removes the stored file behind a photo url. Implementations
// treat a missing file as success.
type PhotoStorage interface {
	Remove(ctx context.Context, photoURL string) error
}

// LocalPhotoStorage resolves urls against a root directory, so "/static/a.jpg"
// maps to "<root>/static/a.jpg".
type LocalPhotoStorage struct {
	root   string
	logger *zap.Logger
}

func NewLocalPhotoStorage(root string, logger *zap.Logger) *LocalPhotoStorage {
	return &LocalPhotoStorage{root: root, logger: logger}
}

func (s *LocalPhotoStorage) Remove(ctx context.Context, photoURL string) error {
	root, err := filepath.Abs(s.root)
	if err != nil {
		return fmt.Errorf("resolve photo root: %w", err)
	}
	path := filepath.Join(root, filepath.FromSlash(photoURL))
	if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
		s.logger.Warn("Refusing to remove photo outside storage root", zap.String("url", photoURL))
		return nil
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove photo file %s: %w", path, err)
	}
	return nil
}

// S3PhotoStorage deletes the object whose key is the url path. A leading
// bucket segment (path-style urls) is dropped.
type S3PhotoStorage struct {
	client aws_pkg.ObjectDeleter
	bucket string
}

func NewS3PhotoStorage(client aws_pkg.ObjectDeleter, bucket string) *S3PhotoStorage {
	return &S3PhotoStorage{client: client, bucket: bucket}
}

func (s *S3PhotoStorage) Remove(ctx context.Context, photoURL string) error {
	key := s.objectKey(photoURL)
	if key == "" {
		return nil
	}
	return s.client.DeleteObject(ctx, s.bucket, key)
}

func (s *S3PhotoStorage) objectKey(photoURL string) string {
	path := photoURL
	if u, err := url.Parse(photoURL); err == nil && u.Path != "" {
		path = u.Path
	}
	path = strings.TrimPrefix(path, "/")
	return strings.TrimPrefix(path, s.bucket+"/")
}
