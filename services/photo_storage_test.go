package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"catalog-service/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalPhotoStorage_RemovesFileUnderRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "static"), 0o755))
	path := filepath.Join(root, "static", "chair.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpg"), 0o644))

	storage := services.NewLocalPhotoStorage(root, zap.NewNop())
	require.NoError(t, storage.Remove(context.Background(), "/static/chair.jpg"))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalPhotoStorage_MissingFileIsIgnored(t *testing.T) {
	storage := services.NewLocalPhotoStorage(t.TempDir(), zap.NewNop())
	assert.NoError(t, storage.Remove(context.Background(), "/static/gone.jpg"))
}

func TestLocalPhotoStorage_RefusesPathsOutsideRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "photos")
	require.NoError(t, os.MkdirAll(root, 0o755))
	outside := filepath.Join(parent, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))

	storage := services.NewLocalPhotoStorage(root, zap.NewNop())
	assert.NoError(t, storage.Remove(context.Background(), "/../secret.txt"))

	_, err := os.Stat(outside)
	assert.NoError(t, err)
}

type fakeDeleter struct {
	bucket, key string
	err         error
}

func (f *fakeDeleter) DeleteObject(ctx context.Context, bucket, key string) error {
	f.bucket, f.key = bucket, key
	return f.err
}

func TestS3PhotoStorage_ObjectKeys(t *testing.T) {
	cases := map[string]string{
		"/static/chair.jpg": "static/chair.jpg",
		"https://photos.s3.amazonaws.com/static/chair.jpg": "static/chair.jpg",
		"http://localhost:4566/photos/static/chair.jpg":    "static/chair.jpg",
	}
	for url, want := range cases {
		deleter := &fakeDeleter{}
		storage := services.NewS3PhotoStorage(deleter, "photos")

		require.NoError(t, storage.Remove(context.Background(), url))
		assert.Equal(t, "photos", deleter.bucket, url)
		assert.Equal(t, want, deleter.key, url)
	}
}

func TestS3PhotoStorage_PropagatesErrors(t *testing.T) {
	deleter := &fakeDeleter{err: errors.New("access denied")}
	storage := services.NewS3PhotoStorage(deleter, "photos")

	assert.Error(t, storage.Remove(context.Background(), "/static/chair.jpg"))
}
