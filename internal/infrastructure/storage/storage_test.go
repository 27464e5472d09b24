package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/salesdesk/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method string
	path   string
	body   string
}

func fakeS3(t *testing.T) (*httptest.Server, func() []capturedRequest) {
	var mu sync.Mutex
	var got []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, capturedRequest{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), got...)
	}
}

func newTestS3(t *testing.T, endpoint string) *S3AttachmentStorage {
	s, err := NewS3AttachmentStorage(context.Background(), &config.StorageConfig{
		Endpoint:          endpoint,
		Region:            "us-east-1",
		Bucket:            "attachments",
		AccessKeyID:       "test-key",
		SecretAccessKey:   "test-secret",
		UsePathStyle:      true,
		PresignExpiration: 5 * time.Minute,
	})
	require.NoError(t, err)
	return s
}

func TestNewS3AttachmentStorage_Validation(t *testing.T) {
	_, err := NewS3AttachmentStorage(context.Background(), nil)
	assert.ErrorContains(t, err, "configuration is required")

	_, err = NewS3AttachmentStorage(context.Background(), &config.StorageConfig{Region: "us-east-1"})
	assert.ErrorContains(t, err, "bucket is required")
}

func TestS3AttachmentStorage_UploadAndDelete(t *testing.T) {
	srv, requests := fakeS3(t)
	s := newTestS3(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "inventory/abc/photo.png", strings.NewReader("png-bytes"), "image/png"))
	require.NoError(t, s.Delete(ctx, "inventory/abc/photo.png"))

	got := requests()
	require.Len(t, got, 2)
	assert.Equal(t, http.MethodPut, got[0].method)
	assert.Equal(t, "/attachments/inventory/abc/photo.png", got[0].path)
	assert.Contains(t, got[0].body, "png-bytes")
	assert.Equal(t, http.MethodDelete, got[1].method)
}

func TestS3AttachmentStorage_DownloadURL(t *testing.T) {
	s := newTestS3(t, "http://localhost:9000")

	url, expiresAt, err := s.DownloadURL(context.Background(), "inventory/abc/photo.png")
	require.NoError(t, err)
	assert.Contains(t, url, "/attachments/inventory/abc/photo.png")
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, time.Minute)

	_, _, err = s.DownloadURL(context.Background(), "")
	assert.Error(t, err)
}
