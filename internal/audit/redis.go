package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	MaxLen   int64
}

// RedisSink appends every event to a Redis stream in one pipelined round trip,
// trimming the stream to roughly MaxLen entries.
type RedisSink struct {
	rdb    goredis.UniversalClient
	stream string
	maxLen int64
}

func NewRedisSink(ctx context.Context, cfg RedisConfig) (*RedisSink, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisSink(rdb, cfg.Stream, cfg.MaxLen), nil
}

func newRedisSink(rdb goredis.UniversalClient, stream string, maxLen int64) *RedisSink {
	if stream == "" {
		stream = "liflo:audit"
	}
	return &RedisSink{rdb: rdb, stream: stream, maxLen: maxLen}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) AppendBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	_, err := s.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for _, e := range events {
			raw, err := json.Marshal(e)
			if err != nil {
				return err
			}
			p.XAdd(ctx, &goredis.XAddArgs{
				Stream: s.stream,
				MaxLen: s.maxLen,
				Approx: s.maxLen > 0,
				Values: map[string]any{
					"event":  e.Event,
					"status": string(e.Status),
					"data":   raw,
				},
			})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis xadd: %w", err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.rdb.Close()
}
