package realtime

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const notificationChannelPrefix = "notifications:"

// NotificationChannel is the per-user redis channel a socket gateway subscribes to.
func NotificationChannel(userID int64) string {
	return notificationChannelPrefix + strconv.FormatInt(userID, 10)
}

// NewRedis returns nil when redisURL is empty; realtime push is optional.
func NewRedis(redisURL string, logger *zap.Logger) (*redis.Client, error) {
	if redisURL == "" {
		logger.Warn("REDIS_URL not set; realtime push disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("connected to redis")
	return client, nil
}

// Pusher delivers a payload to everyone listening on a user's channel.
type Pusher interface {
	Push(ctx context.Context, userID int64, payload any) error
}

type redisPusher struct {
	publishFn func(ctx context.Context, channel string, payload []byte) error
}

// NewPusher wraps client; a nil client yields a pusher that drops everything.
func NewPusher(client *redis.Client) Pusher {
	p := &redisPusher{}
	if client != nil {
		p.publishFn = func(ctx context.Context, channel string, payload []byte) error {
			return client.Publish(ctx, channel, payload).Err()
		}
	}
	return p
}

func (p *redisPusher) Push(ctx context.Context, userID int64, payload any) error {
	if p.publishFn == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.publishFn(ctx, NotificationChannel(userID), data)
}
