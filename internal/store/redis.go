package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis implements LiveStore on a Redis server.
//
// Layout: one hash per channel ("chan:<id>:messages", field = record id,
// value = JSON; empty string = tombstone) and one pub/sub topic per channel
// ("chan:<id>:events") that carries change notifications. Subscribers
// re-read the full hash on every notification — the snapshot model, not
// deltas.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis connects and pings before returning, so a bad URL or dead
// server fails at startup rather than on the first subscribe.
func NewRedis(redisURL string, logger *zap.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	logger.Info("redis live store connected", zap.String("addr", opts.Addr))
	return &Redis{client: client, logger: logger}, nil
}

func (s *Redis) Close() error {
	return s.client.Close()
}

func key(channel string) string   { return "chan:" + channel + ":messages" }
func topic(channel string) string { return "chan:" + channel + ":events" }

func (s *Redis) Subscribe(ctx context.Context, channel string, fn SnapshotFunc) (CancelFunc, error) {
	ps := s.client.Subscribe(ctx, topic(channel))

	// Confirm the SUBSCRIBE before reading the initial snapshot, so no
	// change can slip between the read and the subscription taking effect.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	var mu sync.Mutex
	closed := false
	deliver := func(snap Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		fn(snap)
	}

	go func() {
		snap, err := s.Read(context.Background(), channel)
		if err != nil {
			s.logger.Warn("initial snapshot read failed",
				zap.String("channel", channel), zap.Error(err))
		} else {
			deliver(snap)
		}

		for range ps.Channel() {
			snap, err := s.Read(context.Background(), channel)
			if err != nil {
				s.logger.Warn("snapshot read failed",
					zap.String("channel", channel), zap.Error(err))
				continue
			}
			deliver(snap)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			mu.Lock()
			closed = true
			mu.Unlock()
			ps.Close()
		})
	}, nil
}

func (s *Redis) Read(ctx context.Context, channel string) (Snapshot, error) {
	fields, err := s.client.HGetAll(ctx, key(channel)).Result()
	if err != nil {
		return nil, fmt.Errorf("read channel %s: %w", channel, err)
	}
	snap := make(Snapshot, 0, len(fields))
	for id, value := range fields {
		snap = append(snap, Record{ID: id, Value: []byte(value)})
	}
	return snap, nil
}

func (s *Redis) Push(ctx context.Context, channel string, value []byte) (string, error) {
	id := uuid.NewString()
	if err := s.client.HSet(ctx, key(channel), id, value).Err(); err != nil {
		return "", fmt.Errorf("push to %s: %w", channel, err)
	}
	s.notify(ctx, channel)
	return id, nil
}

// mergeAttempts bounds the optimistic WATCH retry loop. Conflicts only
// happen when another client writes the same hash between our read and
// our EXEC, so a handful of attempts is plenty.
const mergeAttempts = 5

func (s *Redis) Merge(ctx context.Context, channel, id string, apply MergeFunc) error {
	k := key(channel)

	txn := func(tx *redis.Tx) error {
		old, err := tx.HGet(ctx, k, id).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read record %s/%s: %w", channel, id, err)
		}
		if len(old) == 0 {
			return ErrNotFound
		}
		next, err := apply(old)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, k, id, next)
			return nil
		})
		return err
	}

	for i := 0; i < mergeAttempts; i++ {
		err := s.client.Watch(ctx, txn, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return err
		}
		s.notify(ctx, channel)
		return nil
	}
	return fmt.Errorf("merge %s/%s: too many concurrent writes", channel, id)
}

func (s *Redis) Tombstone(ctx context.Context, channel, id string) error {
	exists, err := s.client.HExists(ctx, key(channel), id).Result()
	if err != nil {
		return fmt.Errorf("tombstone %s/%s: %w", channel, id, err)
	}
	if !exists {
		return ErrNotFound
	}
	if err := s.client.HSet(ctx, key(channel), id, "").Err(); err != nil {
		return fmt.Errorf("tombstone %s/%s: %w", channel, id, err)
	}
	s.notify(ctx, channel)
	return nil
}

func (s *Redis) notify(ctx context.Context, channel string) {
	if err := s.client.Publish(ctx, topic(channel), "changed").Err(); err != nil {
		s.logger.Warn("publish change notification failed",
			zap.String("channel", channel), zap.Error(err))
	}
}
