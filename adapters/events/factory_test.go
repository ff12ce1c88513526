package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/layer-3/polywallet/adapters/events"
	"github.com/layer-3/polywallet/core"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRedisStreamPublisher_LeavesSharedClientOpen(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	pub, err := events.NewRedisStreamPublisher(client, events.NewZerologAdapter(zerolog.Nop()))
	require.NoError(t, err)

	session := &core.Session{ID: "token-1", Address: "0xabc", ChainID: 80002, IssuedAt: time.Now()}
	require.NoError(t, pub.PublishLogin(ctx, session))

	n, err := client.XLen(ctx, events.TopicLogin).Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	require.NoError(t, pub.Close())

	require.NoError(t, client.Ping(ctx).Err())
	require.NoError(t, client.Close())
}
