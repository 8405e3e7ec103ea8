// Package redis holds the go-redis client shared by the redis docstore and
// local state backends.
package redis

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"webshop/internal/platform/config"
)

// Client embeds *redis.Client so stores can take it as a redis.UniversalClient.
type Client struct {
	*redis.Client
}

// New dials Redis and pings it once. An empty URL yields a nil client.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// RegisterPoolMetrics exports the connection pool counters, read at scrape
// time. A nil registerer uses the default one.
func (c *Client) RegisterPoolMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	stat := func(pick func(*redis.PoolStats) uint32) func() float64 {
		return func() float64 { return float64(pick(c.PoolStats())) }
	}

	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "webshop_redis_pool_hits_total",
		Help: "Connections found free in the pool",
	}, stat(func(s *redis.PoolStats) uint32 { return s.Hits }))
	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "webshop_redis_pool_misses_total",
		Help: "Connections that had to be dialed",
	}, stat(func(s *redis.PoolStats) uint32 { return s.Misses }))
	factory.NewCounterFunc(prometheus.CounterOpts{
		Name: "webshop_redis_pool_timeouts_total",
		Help: "Waits for a free connection that timed out",
	}, stat(func(s *redis.PoolStats) uint32 { return s.Timeouts }))
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "webshop_redis_pool_total_conns",
		Help: "Open connections in the pool",
	}, stat(func(s *redis.PoolStats) uint32 { return s.TotalConns }))
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "webshop_redis_pool_idle_conns",
		Help: "Idle connections in the pool",
	}, stat(func(s *redis.PoolStats) uint32 { return s.IdleConns }))
}
