package callcontext

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hirevox/hirevox/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCtx(n int) *models.CallContext {
	qs := make([]models.ContextQuestion, n)
	for i := range qs {
		qs[i] = models.ContextQuestion{ID: "q" + string(rune('a'+i)), Text: "question", Index: i}
	}
	return &models.CallContext{
		InterviewID:   "iv-1",
		CampaignID:    "camp-1",
		CandidateName: "Dana",
		Questions:     qs,
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "iv-1", newCtx(3)))

	got, err := s.Get(ctx, "iv-1")
	require.NoError(t, err)
	assert.Equal(t, "Dana", got.CandidateName)
	assert.Len(t, got.Questions, 3)
	assert.Equal(t, 0, got.Cursor)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore(0)

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Update(context.Background(), "nope", func(cc *models.CallContext) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "iv-1", newCtx(2)))

	first, err := s.Get(ctx, "iv-1")
	require.NoError(t, err)
	first.Cursor = 99
	first.Questions[0].Text = "mutated"

	second, err := s.Get(ctx, "iv-1")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Cursor)
	assert.Equal(t, "question", second.Questions[0].Text)
}

func TestMemoryStoreUpdateAtomicUnderConcurrency(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "iv-1", newCtx(100)))

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, "iv-1", func(cc *models.CallContext) error {
				cc.Cursor++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "iv-1")
	require.NoError(t, err)
	assert.Equal(t, workers, got.Cursor)
}

func TestMemoryStoreAdvanceIfCurrent(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "iv-1", newCtx(3)))

	// many deliveries of the same capture event advance exactly once
	const deliveries = 20
	var advanced int
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(deliveries)
	for i := 0; i < deliveries; i++ {
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, "iv-1", func(cc *models.CallContext) error {
				if cc.Cursor == 0 {
					cc.Cursor++
					mu.Lock()
					advanced++
					mu.Unlock()
				}
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, advanced)
	got, err := s.Get(ctx, "iv-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Cursor)
}

func TestMemoryStoreUpdateErrorLeavesValue(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "iv-1", newCtx(2)))

	boom := assert.AnError
	_, err := s.Update(ctx, "iv-1", func(cc *models.CallContext) error {
		cc.Cursor = 7
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Get(ctx, "iv-1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Cursor)
}

func TestMemoryStoreExpire(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "iv-1", newCtx(1)))

	require.NoError(t, s.Expire(ctx, "iv-1", -time.Second))

	_, err := s.Get(ctx, "iv-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// expiring an unknown key is a no-op
	assert.NoError(t, s.Expire(ctx, "missing", time.Minute))
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "iv-1", newCtx(1)))
	require.NoError(t, s.Delete(ctx, "iv-1"))

	_, err := s.Get(ctx, "iv-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDone(t *testing.T) {
	cc := newCtx(2)
	assert.False(t, cc.Done())
	cc.Cursor = 1
	assert.False(t, cc.Done())
	cc.Cursor = 2
	assert.True(t, cc.Done())
}
