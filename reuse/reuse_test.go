package reuse

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/zhangdinet/httpcore"
)

func TestDefault_KeepAliveHTTP11(t *testing.T) {
	resp := httpcore.NewResponse(200, httpcore.HTTP11)
	assert.True(t, Default{}.KeepAlive(context.Background(), resp))
}

func TestDefault_ConnectionCloseWins(t *testing.T) {
	resp := httpcore.NewResponse(200, httpcore.HTTP11)
	resp.Header.Set("Connection", "close")
	assert.False(t, Default{}.KeepAlive(context.Background(), resp))
}

func TestRedis_FailsOpenOnRedisError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	strategy := NewRedis(client, "active-connections", 100, Default{})

	resp := httpcore.NewResponse(200, httpcore.HTTP11)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	assert.True(t, strategy.KeepAlive(ctx, resp), "a Redis error should fail open rather than closing every connection")
}
