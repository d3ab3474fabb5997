// Package redis keeps sign-in sessions in Redis so several API instances can
// share them.
package redis

import (
	"time"

	"github.com/gomodule/redigo/redis"
)

type PoolOption struct {
	f func(*redis.Pool)
}

func PoolDial(f func() (redis.Conn, error)) PoolOption {
	return PoolOption{func(p *redis.Pool) {
		p.Dial = f
	}}
}

func PoolIdleTimeout(timeout time.Duration) PoolOption {
	return PoolOption{func(p *redis.Pool) {
		p.IdleTimeout = timeout
	}}
}

func PoolMaxActive(i int) PoolOption {
	return PoolOption{func(p *redis.Pool) {
		p.MaxActive = i
	}}
}

func PoolMaxIdle(i int) PoolOption {
	return PoolOption{func(p *redis.Pool) {
		p.MaxIdle = i
	}}
}

func PoolTestOnBorrow(f func(c redis.Conn, t time.Time) error) PoolOption {
	return PoolOption{func(p *redis.Pool) {
		p.TestOnBorrow = f
	}}
}

// NewPool returns a pool dialling addr, adjusted by options.
func NewPool(addr string, options ...PoolOption) *redis.Pool {
	pool := &redis.Pool{
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", addr)
		},
		MaxIdle:     8,
		IdleTimeout: 4 * time.Minute,
	}

	for _, option := range options {
		option.f(pool)
	}

	return pool
}
