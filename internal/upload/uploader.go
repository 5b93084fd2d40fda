// Package upload turns locally captured image files into durable remote
// URLs.
//
// Only the network write is retried; reading the local file is not. A
// failure the storage or API service itself reported is surfaced
// immediately, while transport-level failures get up to three attempts
// with exponential backoff (1s, 2s, 4s).
package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"dermatrack/internal/api"
	"dermatrack/internal/retry"
	"dermatrack/pkg/storage"
)

const (
	maxAttempts = 3
	baseDelay   = 1000 * time.Millisecond
)

// UploadError reports which image of a batch failed and why.
type UploadError struct {
	Index int
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload image %d: %v", e.Index, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Backend pushes one image's bytes to remote storage and returns the
// durable URL.
type Backend interface {
	Put(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

// Uploader uploads local image files through a Backend with the bounded
// retry policy. Batch uploads are sequential to keep peak memory bounded
// and error attribution unambiguous.
type Uploader struct {
	backend Backend
	policy  retry.Policy

	// MaxBytes, when positive, rejects images larger than this before
	// any network call.
	MaxBytes int64
}

// New builds an Uploader. retryable classifies backend errors; only
// errors it accepts are retried.
func New(backend Backend, retryable func(error) bool) *Uploader {
	return &Uploader{
		backend: backend,
		policy: retry.Policy{
			MaxAttempts: maxAttempts,
			BaseDelay:   baseDelay,
			Retryable:   retryable,
		},
	}
}

// NewAPIUploader uploads through the service's image endpoint.
func NewAPIUploader(client *api.Client) *Uploader {
	return New(&apiBackend{client: client}, api.IsTransient)
}

// NewObjectStoreUploader uploads directly to S3-compatible storage.
func NewObjectStoreUploader(store storage.ObjectStore) *Uploader {
	return New(&objectStoreBackend{store: store}, func(err error) bool {
		return !storage.IsServerError(err)
	})
}

// Upload reads one local image and pushes it to remote storage. index is
// the image's position within its submission and is carried in the
// generated filename and in any failure. The returned count is how many
// attempts the network write took.
func (u *Uploader) Upload(ctx context.Context, index int, path string) (string, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, &UploadError{Index: index, Err: fmt.Errorf("read image: %w", err)}
	}
	if u.MaxBytes > 0 && int64(len(data)) > u.MaxBytes {
		return "", 0, &UploadError{Index: index, Err: fmt.Errorf("image is %d bytes, limit is %d", len(data), u.MaxBytes)}
	}
	filename := newFilename(index, filepath.Ext(path))
	contentType := contentTypeForExt(filepath.Ext(path))

	var url string
	attempts := 0
	err = u.policy.Do(ctx, func() error {
		attempts++
		var putErr error
		url, putErr = u.backend.Put(ctx, filename, contentType, data)
		return putErr
	})
	if err != nil {
		return "", attempts, &UploadError{Index: index, Err: err}
	}
	return url, attempts, nil
}

// UploadAll uploads images in order, aborting on the first failure. No
// compensating deletion of already uploaded images is attempted. each,
// when non-nil, observes every successful upload.
func (u *Uploader) UploadAll(ctx context.Context, paths []string, each func(index, attempts int, url string)) ([]string, error) {
	urls := make([]string, 0, len(paths))
	for i, path := range paths {
		url, attempts, err := u.Upload(ctx, i, path)
		if err != nil {
			return nil, err
		}
		if each != nil {
			each(i, attempts, url)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// newFilename combines a millisecond timestamp, the image's ordinal, and
// a random suffix so concurrent submissions never collide.
func newFilename(index int, ext string) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%d_%d_%s%s", time.Now().UnixMilli(), index, suffix, strings.ToLower(ext))
}

func contentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}

type apiBackend struct {
	client *api.Client
}

func (b *apiBackend) Put(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	return b.client.UploadImage(ctx, api.UploadImageRequest{
		Filename:    filename,
		ContentType: contentType,
		Data:        base64.StdEncoding.EncodeToString(data),
	})
}

type objectStoreBackend struct {
	store storage.ObjectStore
}

func (b *objectStoreBackend) Put(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	return b.store.Put(ctx, filename, bytes.NewReader(data), int64(len(data)), contentType)
}
