package cache

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/instructor-directory-api/pkg/config"
)

func TestNewRedisConnects(t *testing.T) {
	srv := miniredis.RunT(t)
	host, rawPort, _ := strings.Cut(srv.Addr(), ":")
	port, err := strconv.Atoi(rawPort)
	require.NoError(t, err)

	client, err := NewRedis(context.Background(), config.RedisConfig{Host: host, Port: port})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := srv.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisFailsWhenUnreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	host, rawPort, _ := strings.Cut(srv.Addr(), ":")
	port, _ := strconv.Atoi(rawPort)
	srv.Close()

	_, err := NewRedis(context.Background(), config.RedisConfig{Host: host, Port: port})
	assert.Error(t, err)
}
