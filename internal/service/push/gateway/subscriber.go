package gateway

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"bazaar/internal/pkg/metrics"
	"bazaar/internal/pkg/redis"
)

// inboundMessage 是上游通过 Redis channel 路由过来的投递单元，
// 字段与通知侧发布的消息对应。
type inboundMessage struct {
	Event   string `json:"event"`
	UserID  string `json:"userId"`
	Token   string `json:"token,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// Subscriber 订阅本节点专属的 Redis channel，把路由过来的
// 消息交给 Hub 投递到用户的连接上。
type Subscriber struct {
	redisClient *redis.Client
	hub         *Hub
	channel     string
}

func NewSubscriber(redisClient *redis.Client, hub *Hub, nodeID string) *Subscriber {
	return &Subscriber{
		redisClient: redisClient,
		hub:         hub,
		channel:     "push:gateway:" + nodeID,
	}
}

// Run 持续消费订阅消息，直到 ctx 取消。
func (s *Subscriber) Run(ctx context.Context) {
	pubsub := s.redisClient.Subscribe(ctx, s.channel)
	defer pubsub.Close()
	log.Info().Str("channel", s.channel).Msg("节点订阅已建立")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var inbound inboundMessage
			if err := json.Unmarshal([]byte(msg.Payload), &inbound); err != nil {
				log.Error().Err(err).Msg("无法解析的路由消息，跳过")
				continue
			}
			if delivered := s.hub.Deliver(inbound.UserID, []byte(msg.Payload)); delivered == 0 {
				// 会话路由指向本节点但连接已不在，多半是刚断开还没清理
				metrics.PushFailures.Inc()
				log.Warn().Str("user_id", inbound.UserID).Str("event", inbound.Event).
					Msg("用户已不在本节点，投递失败")
			}
		}
	}
}
