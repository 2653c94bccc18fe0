package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"internship-portal/backend/internal/session/domain"
)

// RedisRepository keeps session records as JSON strings with a TTL matching
// their expiry, and publishes change events on a single channel.
type RedisRepository struct {
	client  redis.UniversalClient
	prefix  string
	channel string
	log     *zap.Logger
}

// NewRedisRepository returns a Redis-backed session repository.
func NewRedisRepository(client redis.UniversalClient, prefix, channel string, log *zap.Logger) *RedisRepository {
	if log == nil {
		log = zap.L()
	}
	return &RedisRepository{client: client, prefix: prefix, channel: channel, log: log}
}

func (r *RedisRepository) key(id string) string {
	return r.prefix + id
}

func (r *RedisRepository) Create(ctx context.Context, rec *domain.Record) error {
	if rec == nil || rec.ID == "" || rec.UserID == "" {
		return errors.New("session: missing id or user_id")
	}
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session: expires_at must be in the future")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	return r.client.Set(ctx, r.key(rec.ID), data, ttl).Err()
}

// Get returns the record for id, or nil if it does not exist or has expired.
func (r *RedisRepository) Get(ctx context.Context, id string) (*domain.Record, error) {
	val, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec domain.Record
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", err)
	}
	return &rec, nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *RedisRepository) Publish(ctx context.Context, e domain.ChangeEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("session: marshal event: %w", err)
	}
	return r.client.Publish(ctx, r.channel, payload).Err()
}

// Subscribe confirms the subscription with Redis before returning, so events
// published after Subscribe returns are delivered. Malformed payloads are logged and skipped.
func (r *RedisRepository) Subscribe(ctx context.Context, fn func(domain.ChangeEvent)) (func() error, error) {
	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("session: subscribe %s: %w", r.channel, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var e domain.ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					r.log.Warn("session: dropping malformed change event", zap.Error(err))
					continue
				}
				fn(e)
			}
		}
	}()

	var once sync.Once
	var closeErr error
	return func() error {
		once.Do(func() {
			cancel()
			closeErr = pubsub.Close()
			wg.Wait()
		})
		return closeErr
	}, nil
}
