// Package callcontext keeps the per-interview working memory of a live
// call: the question snapshot and the cursor. The store must outlive a
// single process for the duration of the call (minutes), but it is not an
// archive; contexts expire once the call is long over.
package callcontext

import (
	"context"
	"errors"
	"time"

	"github.com/hirevox/hirevox/internal/models"
)

var (
	ErrNotFound = errors.New("call context not found")
	// ErrConflict is returned when an atomic update lost the race too many
	// times in a row.
	ErrConflict = errors.New("call context update conflict")
)

// DefaultTTL covers the longest plausible call plus retries of late
// provider callbacks.
const DefaultTTL = 2 * time.Hour

// Store holds one CallContext per interview id. Update is the only way to
// mutate an existing context: the whole read-modify-write runs atomically
// per interview id, so concurrent webhook callbacks cannot both advance the
// cursor for one capture event.
type Store interface {
	Put(ctx context.Context, interviewID string, cc *models.CallContext) error
	Get(ctx context.Context, interviewID string) (*models.CallContext, error)
	Update(ctx context.Context, interviewID string, fn func(cc *models.CallContext) error) (*models.CallContext, error)
	// Expire shortens the context's remaining lifetime, used as the grace
	// period after an interview completes.
	Expire(ctx context.Context, interviewID string, ttl time.Duration) error
	Delete(ctx context.Context, interviewID string) error
}
