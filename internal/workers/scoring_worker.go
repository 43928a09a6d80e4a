package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	pgrepo "github.com/hirevox/hirevox/internal/repositories/postgres"
	"github.com/hirevox/hirevox/internal/scoring"
	"github.com/hirevox/hirevox/internal/services"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ScoringWorkerPool drains the scoring stream. Workers run until the
// context is cancelled; a failed job is logged and acked, never retried in
// line — an unscored response is an observable state, not a crash.
type ScoringWorkerPool struct {
	Redis      *redis.Client
	Scoring    services.ScoringService
	Responses  pgrepo.ResponseRepository // optional: lets scored events carry interview ids
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *ScoringWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Scoring == nil {
		return errors.New("ScoringWorkerPool missing dependency: Redis/Scoring must be set")
	}
	if p.Stream == "" {
		p.Stream = scoring.Stream
	}
	if p.Group == "" {
		p.Group = scoring.Group
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "scorer"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 4
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *ScoringWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *ScoringWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	job := getStr("job")
	log := p.Logger.WithFields(logrus.Fields{
		"redis_id": msg.ID,
		"job":      job,
	})

	switch job {
	case scoring.JobScoreResponse:
		responseID := getStr("response_id")
		if responseID == "" {
			log.Warn("score_response job missing response_id")
			return
		}

		if err := p.Scoring.ScoreResponse(ctx, responseID); err != nil {
			log.WithError(err).WithField("response_id", responseID).Error("response scoring failed")
			return
		}
		log.WithField("response_id", responseID).Info("response scored")

		if p.Responses != nil {
			if resp, err := p.Responses.GetByID(ctx, responseID); err == nil {
				p.publish(ctx, resp.InterviewID, map[string]any{
					"type":         "response_scored",
					"response_id":  resp.ID,
					"interview_id": resp.InterviewID,
					"score":        resp.Score,
				})
			}
		}

	case scoring.JobFinalizeInterview:
		interviewID := getStr("interview_id")
		if interviewID == "" {
			log.Warn("finalize_interview job missing interview_id")
			return
		}

		if err := p.Scoring.FinalizeInterview(ctx, interviewID); err != nil {
			log.WithError(err).WithField("interview_id", interviewID).Error("interview finalization failed")
			p.publish(ctx, interviewID, map[string]any{
				"type":         "finalize_failed",
				"interview_id": interviewID,
			})
			return
		}
		log.WithField("interview_id", interviewID).Info("interview finalized")
		p.publish(ctx, interviewID, map[string]any{
			"type":         "interview_finalized",
			"interview_id": interviewID,
		})

	default:
		log.Warn("unknown scoring job")
	}
}

func (p *ScoringWorkerPool) publish(ctx context.Context, interviewID string, payload map[string]any) {
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = p.Redis.Publish(ctx, scoring.EventChannel(interviewID), string(b)).Err()
}
