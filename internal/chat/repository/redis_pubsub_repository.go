package repository

import (
	"context"
	"encoding/json"

	"realtime_chat_service/internal/chat/domain"
	"realtime_chat_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// PresenceChannel 全站 online-users 廣播用 channel
const PresenceChannel = "chat:presence"

// UserChannel 個人 channel，跨房通知(new-message 等)走這裡
func UserChannel(userID string) string {
	return "chat:user:" + userID
}

// RoomChannel 房間 channel，typing/status/reaction 走這裡
func RoomChannel(roomID string) string {
	return "chat:room:" + roomID
}

// PubSub definition fanout publish/subscribe
type PubSub interface {
	Publish(channel string, evt domain.ServerEvent) error
	Subscribe(ctx context.Context, channel string, handler func(evt domain.ServerEvent)) error
}

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		ctx:    context.Background(),
	}
}

// Publish 將 event 序列化後，發布到指定 channel
func (r *RedisPubSub) Publish(channel string, evt domain.ServerEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, channel, data).Err()
}

// Subscribe 訂閱 channel，收到 event 後呼叫 handler 處理
// ctx 取消時關閉訂閱並結束 goroutine
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(evt domain.ServerEvent)) error {
	sub := r.client.Subscribe(r.ctx, channel)
	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				var evt domain.ServerEvent
				if err := json.Unmarshal([]byte(m.Payload), &evt); err != nil {
					logger.Log.Error("pubsub unmarshal err",
						zap.String("channel", channel),
						zap.Error(err),
					)
					continue
				}
				handler(evt)
			case <-ctx.Done():
				logger.Log.Info(channel + " , sub close")
				sub.Close()
				return
			}
		}
	}()
	return nil
}
