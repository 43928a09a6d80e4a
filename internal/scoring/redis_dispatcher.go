package scoring

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDispatcher appends jobs to the scoring stream. XAdd is a single
// round trip, so dispatching never meaningfully delays a webhook reply.
type RedisDispatcher struct {
	rdb *redis.Client
}

func NewRedisDispatcher(rdb *redis.Client) *RedisDispatcher {
	return &RedisDispatcher{rdb: rdb}
}

func (d *RedisDispatcher) DispatchScoreResponse(ctx context.Context, responseID string) error {
	return d.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: Stream,
		Values: map[string]any{
			"job":         JobScoreResponse,
			"response_id": responseID,
			"ts_unix":     strconv.FormatInt(time.Now().UTC().Unix(), 10),
		},
	}).Err()
}

func (d *RedisDispatcher) DispatchFinalize(ctx context.Context, interviewID string) error {
	return d.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: Stream,
		Values: map[string]any{
			"job":          JobFinalizeInterview,
			"interview_id": interviewID,
			"ts_unix":      strconv.FormatInt(time.Now().UTC().Unix(), 10),
		},
	}).Err()
}
