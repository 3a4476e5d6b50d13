// Package audit emits fire-and-forget "action occurred" events for
// user-management mutations. Events are queued and persisted out of band by
// the worker; the request path never blocks on them.
package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"tagtrack/internal/model"
)

// Queue is the abstraction over different backends.
type Queue interface {
	Publish(ctx context.Context, e model.AuditEvent) error
	Consume(ctx context.Context) (<-chan model.AuditEvent, error)
}

// InMemory is a minimal channel-backed queue for dev/testing.
type InMemory struct {
	ch chan model.AuditEvent
}

// NewInMemory creates a bounded in-memory queue.
func NewInMemory(size int) *InMemory {
	return &InMemory{ch: make(chan model.AuditEvent, size)}
}

// Publish enqueues an event.
func (q *InMemory) Publish(ctx context.Context, e model.AuditEvent) error {
	select {
	case q.ch <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume returns a channel for workers.
func (q *InMemory) Consume(ctx context.Context) (<-chan model.AuditEvent, error) {
	out := make(chan model.AuditEvent)
	go func() {
		defer close(out)
		for {
			select {
			case e := <-q.ch:
				out <- e
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// RedisQueue implements a simple Redis list-backed queue.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a queue using LPUSH/BRPOP semantics.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = "tagtrack:audit"
	}
	return &RedisQueue{client: client, key: key}
}

// Publish enqueues an event as JSON.
func (q *RedisQueue) Publish(ctx context.Context, e model.AuditEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, payload).Err()
}

// Consume streams events using BRPOP.
func (q *RedisQueue) Consume(ctx context.Context) (<-chan model.AuditEvent, error) {
	out := make(chan model.AuditEvent)
	go func() {
		defer close(out)
		for {
			res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				continue
			}
			if len(res) == 2 {
				var e model.AuditEvent
				if err := json.Unmarshal([]byte(res[1]), &e); err == nil {
					out <- e
				}
			}
		}
	}()
	return out, nil
}

// Recorder publishes audit events without letting failures reach the caller.
type Recorder struct {
	queue Queue
}

func NewRecorder(q Queue) *Recorder {
	return &Recorder{queue: q}
}

// Record emits an event; a publish failure is logged and dropped.
func (r *Recorder) Record(ctx context.Context, actorID, action, details string) {
	if r == nil || r.queue == nil {
		return
	}
	e := model.AuditEvent{
		ActorID:   actorID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}
	if err := r.queue.Publish(ctx, e); err != nil {
		log.Printf("audit publish failed: %v", err)
	}
}
