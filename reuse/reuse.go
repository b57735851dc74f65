// Package reuse implements httpcore.ReuseStrategy. Default follows plain
// HTTP/1.1 keep-alive semantics; Redis adds cross-instance load-shedding on
// top of it, the way the teacher's pkg/ratelimiter abstracts a swappable
// in-memory/networked backing store behind one interface.
package reuse

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/zhangdinet/httpcore"
)

// Default keeps a connection alive whenever the request/response headers
// allow it under standard HTTP/1.1 semantics. It simply delegates to
// httpcore's own default so callers have a named type to pass through
// Option wiring explicitly.
type Default struct{}

// KeepAlive implements httpcore.ReuseStrategy.
func (Default) KeepAlive(ctx context.Context, resp *httpcore.Response) bool {
	return httpcore.DefaultReuseStrategy{}.KeepAlive(ctx, resp)
}

// Redis wraps another ReuseStrategy and additionally closes every
// connection once a shared counter reaches maxActive — letting several
// reactor instances behind a load balancer shed load in a coordinated way
// rather than each independently guessing a local limit. Redis only reads
// the counter (GET); it never increments or decrements it.
type Redis struct {
	client    *redis.Client
	inner     httpcore.ReuseStrategy
	counterKey string
	maxActive int64
}

// NewRedis returns a Redis-backed ReuseStrategy. inner decides keep-alive
// for the common case; once the shared counter under key is at or above
// maxActive, every connection is closed regardless of what inner says.
func NewRedis(client *redis.Client, key string, maxActive int64, inner httpcore.ReuseStrategy) *Redis {
	if inner == nil {
		inner = Default{}
	}
	return &Redis{client: client, inner: inner, counterKey: key, maxActive: maxActive}
}

// KeepAlive implements httpcore.ReuseStrategy.
func (r *Redis) KeepAlive(ctx context.Context, resp *httpcore.Response) bool {
	if !r.inner.KeepAlive(ctx, resp) {
		return false
	}
	count, err := r.client.Get(ctx, r.counterKey).Int64()
	if err != nil && err != redis.Nil {
		// Can't read the shared counter: fail open and defer to inner,
		// rather than closing every connection on a transient Redis hiccup.
		return true
	}
	return count < r.maxActive
}
