package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

// NewRedisStreamPublisher publishes events to the Redis server behind client.
// The publisher closes its client on Close, so it dials its own connection
// pool from client's options and leaves client open.
func NewRedisStreamPublisher(client *redis.Client, logger watermill.LoggerAdapter) (*WatermillPublisher, error) {
	own := redis.NewClient(client.Options())
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: own,
		},
		logger,
	)
	if err != nil {
		_ = own.Close()
		return nil, fmt.Errorf("failed to create redis stream publisher: %w", err)
	}
	return NewWatermillPublisher(publisher), nil
}

// NewInProcessPublisher publishes events to an in-process channel. The
// returned GoChannel can be used to subscribe to the same topics.
func NewInProcessPublisher(logger watermill.LoggerAdapter) (*WatermillPublisher, *gochannel.GoChannel) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)
	return NewWatermillPublisher(pubSub), pubSub
}
