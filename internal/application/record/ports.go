package record

import (
	"context"
	"io"
	"time"

	"github.com/salesdesk/backend/internal/domain/record"
)

// AttachmentStorage stores files attached to records.
type AttachmentStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	// DownloadURL returns a time-limited URL for key and its expiry.
	DownloadURL(ctx context.Context, key string) (string, time.Time, error)
	Delete(ctx context.Context, key string) error
}

// Forwarder delivers a saved record to the secondary backend.
type Forwarder interface {
	Forward(ctx context.Context, rec *record.Record) error
}
