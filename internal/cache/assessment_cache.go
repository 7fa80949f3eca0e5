package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"fs3m/internal/model"
)

// AssessmentCache keeps the rendered assessment view per submission. The
// orchestrator refreshes it after every recalculation, so a hit is always
// current.
type AssessmentCache interface {
	Set(ctx context.Context, submissionID string, view *model.AssessmentView) error
	// Get returns (nil, nil) on a cache miss.
	Get(ctx context.Context, submissionID string) (*model.AssessmentView, error)
	Invalidate(ctx context.Context, submissionID string) error
}

type assessmentCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAssessmentCache(client *redis.Client) AssessmentCache {
	return &assessmentCache{
		client: client,
		ttl:    time.Hour,
	}
}

func (c *assessmentCache) Set(ctx context.Context, submissionID string, view *model.AssessmentView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "assessment:"+submissionID, data, c.ttl).Err()
}

func (c *assessmentCache) Get(ctx context.Context, submissionID string) (*model.AssessmentView, error) {
	data, err := c.client.Get(ctx, "assessment:"+submissionID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var view model.AssessmentView
	if err := json.Unmarshal([]byte(data), &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *assessmentCache) Invalidate(ctx context.Context, submissionID string) error {
	return c.client.Del(ctx, "assessment:"+submissionID).Err()
}
