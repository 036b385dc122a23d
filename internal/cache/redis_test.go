package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	InitRedis(mr.Addr())
	t.Cleanup(func() { SetClient(nil) })
	require.NotNil(t, GetClient())
	assert.NoError(t, Ping(context.Background()))

	InitRedis("redis://" + mr.Addr() + "/0")
	require.NotNil(t, GetClient())
}

func TestInitRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	InitRedis(addr)
	assert.Nil(t, GetClient())
	assert.Error(t, Ping(context.Background()))
}

func TestNewClientInvalidURL(t *testing.T) {
	_, err := NewClient("http://localhost:6379")
	assert.Error(t, err)
}
