package sinks

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeu5/tabular-rl/types"
)

// RedisSink appends every scalar to the stream "<prefix>:<name>"
type RedisSink struct {
	ctx    context.Context
	client *redis.Client
	prefix string
	// streams are trimmed to roughly this many entries, 0 keeps everything
	maxLen int64
}

var _ types.MetricsSink = &RedisSink{}

type RedisConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
	MaxLen int64  `yaml:"max_len"`
}

func NewRedisSink(ctx context.Context, config *RedisConfig) *RedisSink {
	prefix := config.Prefix
	if prefix == "" {
		prefix = "tabular-rl"
	}
	return &RedisSink{
		ctx: ctx,
		client: redis.NewClient(&redis.Options{
			Addr:        config.Addr,
			DialTimeout: 100 * time.Millisecond,
		}),
		prefix: prefix,
		maxLen: config.MaxLen,
	}
}

// Stream is the key of the stream storing name
func (r *RedisSink) Stream(name string) string {
	return r.prefix + ":" + name
}

func (r *RedisSink) RecordScalar(name string, value float64, step int) error {
	args := &redis.XAddArgs{
		Stream: r.Stream(name),
		Values: map[string]interface{}{
			"step":  strconv.Itoa(step),
			"value": strconv.FormatFloat(value, 'g', -1, 64),
		},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}
	if _, err := r.client.XAdd(r.ctx, args).Result(); err != nil {
		return fmt.Errorf("redis sink: %w", err)
	}
	return nil
}

// Ping checks that the server is reachable
func (r *RedisSink) Ping() error {
	return r.client.Ping(r.ctx).Err()
}

func (r *RedisSink) Close() error {
	return r.client.Close()
}
