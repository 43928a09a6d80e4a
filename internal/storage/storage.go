package storage

import (
	"context"
	"io"
	"time"
)

// Archiver persists call recordings so scoring and review do not depend on
// the telephony provider retaining audio.
type Archiver interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}

// Signer mints short-lived download links for archived recordings.
type Signer interface {
	SignedGetURL(ctx context.Context, objectName string, ttl time.Duration) (string, error)
}
