package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/config"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/redis/go-redis/v9"
)

// autosaveTTL bounds how long an abandoned session's autosave keys survive.
const autosaveTTL = 48 * time.Hour

// RedisAnswerCache keeps the autosave copy of a running session in Redis:
// a hash of question index to answer, the timer state captured on pause,
// resume or shutdown, and a marker once the submission has been queued.
type RedisAnswerCache struct {
	rdb redis.Cmdable
}

// NewRedisAnswerCache creates a new RedisAnswerCache.
func NewRedisAnswerCache(rdb redis.Cmdable) *RedisAnswerCache {
	return &RedisAnswerCache{rdb: rdb}
}

// SaveAnswer writes one answer. A blank value removes the field.
func (c *RedisAnswerCache) SaveAnswer(ctx context.Context, sessionID string, index int, value string) error {
	key := config.CacheKey.SessionAnswersKey(sessionID)
	field := strconv.Itoa(index)

	pipe := c.rdb.TxPipeline()
	if value == "" {
		pipe.HDel(ctx, key, field)
	} else {
		pipe.HSet(ctx, key, field, value)
	}
	pipe.Expire(ctx, key, autosaveTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// LoadAnswers returns every autosaved answer of a session.
func (c *RedisAnswerCache) LoadAnswers(ctx context.Context, sessionID string) (map[int]string, error) {
	raw, err := c.rdb.HGetAll(ctx, config.CacheKey.SessionAnswersKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}

	answers := make(map[int]string, len(raw))
	for field, v := range raw {
		idx, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		answers[idx] = v
	}
	return answers, nil
}

// SaveTimer records the countdown and paused flag of a session.
func (c *RedisAnswerCache) SaveTimer(ctx context.Context, sessionID string, state model.TimerState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, config.CacheKey.SessionTimerKey(sessionID), data, autosaveTTL).Err()
}

// LoadTimer returns the recorded countdown, if any.
func (c *RedisAnswerCache) LoadTimer(ctx context.Context, sessionID string) (model.TimerState, bool, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.SessionTimerKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.TimerState{}, false, nil
	}
	if err != nil {
		return model.TimerState{}, false, err
	}
	var state model.TimerState
	if err := json.Unmarshal(raw, &state); err != nil {
		return model.TimerState{}, false, fmt.Errorf("decode timer: %w", err)
	}
	return state, true, nil
}

// MarkSubmitted flags a session as finished so no instance restarts it.
func (c *RedisAnswerCache) MarkSubmitted(ctx context.Context, sessionID string) error {
	return c.rdb.Set(ctx, config.CacheKey.SessionSubmittedKey(sessionID), 1, autosaveTTL).Err()
}

// IsSubmitted reports whether the session's submission has already been queued.
func (c *RedisAnswerCache) IsSubmitted(ctx context.Context, sessionID string) (bool, error) {
	n, err := c.rdb.Exists(ctx, config.CacheKey.SessionSubmittedKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RedisJobQueue pushes persistence jobs onto the Redis lists drained by the workers.
type RedisJobQueue struct {
	rdb redis.Cmdable
}

// NewRedisJobQueue creates a new RedisJobQueue.
func NewRedisJobQueue(rdb redis.Cmdable) *RedisJobQueue {
	return &RedisJobQueue{rdb: rdb}
}

func (q *RedisJobQueue) push(ctx context.Context, queue string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s job: %w", queue, err)
	}
	return q.rdb.RPush(ctx, queue, payload).Err()
}

// EnqueueAnswer queues a durable autosave upsert.
func (q *RedisJobQueue) EnqueueAnswer(ctx context.Context, job model.AnswerJob) error {
	return q.push(ctx, config.WorkerKey.PersistAnswersQueue, job)
}

// EnqueueSubmission queues a graded submission.
func (q *RedisJobQueue) EnqueueSubmission(ctx context.Context, job model.SubmissionJob) error {
	return q.push(ctx, config.WorkerKey.PersistSubmissionsQueue, job)
}

// EnqueueViolation queues a proctoring event.
func (q *RedisJobQueue) EnqueueViolation(ctx context.Context, v model.SecurityViolation) error {
	return q.push(ctx, config.WorkerKey.PersistViolationsQueue, v)
}

// MonitorEvent is the payload published to the admin monitor channel.
type MonitorEvent struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Data      any       `json:"data,omitempty"`
	At        time.Time `json:"at"`
}

// RedisPublisher fans monitor events out over Redis Pub/Sub.
type RedisPublisher struct {
	rdb redis.Cmdable
}

// NewRedisPublisher creates a new RedisPublisher.
func NewRedisPublisher(rdb redis.Cmdable) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish sends ev to the global monitor channel and the session's own channel.
func (p *RedisPublisher) Publish(ctx context.Context, ev MonitorEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pipe := p.rdb.Pipeline()
	pipe.Publish(ctx, config.CacheKey.MonitorChannel(), payload)
	pipe.Publish(ctx, config.CacheKey.SessionMonitorChannel(ev.SessionID), payload)
	_, err = pipe.Exec(ctx)
	return err
}
