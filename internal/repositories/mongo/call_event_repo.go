package mongo

import (
	"context"
	"time"

	"github.com/hirevox/hirevox/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CallEventRepository interface {
	Insert(ctx context.Context, ev *models.CallEvent) error
	ListByInterview(ctx context.Context, interviewID string, limit int64) ([]models.CallEvent, error)
}

type callEventRepo struct {
	col *mongo.Collection
}

func NewCallEventRepo(db *mongo.Database) CallEventRepository {
	return &callEventRepo{col: db.Collection("call_events")}
}

func (r *callEventRepo) Insert(ctx context.Context, ev *models.CallEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, ev)
	return err
}

func (r *callEventRepo) ListByInterview(ctx context.Context, interviewID string, limit int64) ([]models.CallEvent, error) {
	if limit <= 0 {
		limit = 200
	}

	cur, err := r.col.Find(ctx,
		bson.M{"interview_id": interviewID},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: 1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CallEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
