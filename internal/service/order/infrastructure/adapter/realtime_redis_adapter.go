package adapter

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"bazaar/internal/pkg/redis"
	"bazaar/internal/pkg/session"
)

// RealtimeRedisAdapter 实现 port.RealtimeBus。
// 先查会话路由找到用户所在的推送网关节点，再向该节点的 channel 发布；
// 用户不在线就静默跳过。
type RealtimeRedisAdapter struct {
	redisClient *redis.Client
	sessions    *session.Manager
}

func NewRealtimeRedisAdapter(redisClient *redis.Client, sessions *session.Manager) *RealtimeRedisAdapter {
	return &RealtimeRedisAdapter{redisClient: redisClient, sessions: sessions}
}

// GatewayChannel 推送网关节点订阅的 channel 名。
func GatewayChannel(nodeID string) string {
	return "push:gateway:" + nodeID
}

// RealtimeMessage 是网关节点收到的投递单元。
type RealtimeMessage struct {
	Event   string `json:"event"`
	UserID  string `json:"userId"`
	Payload any    `json:"payload,omitempty"`
}

func (a *RealtimeRedisAdapter) Emit(ctx context.Context, event string, recipients []int64, payload any) error {
	var firstErr error
	for _, userID := range recipients {
		uid := strconv.FormatInt(userID, 10)
		nodeID, err := a.sessions.GetUserGateway(ctx, uid)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if nodeID == "" {
			continue // 不在线
		}

		msg, err := json.Marshal(RealtimeMessage{Event: event, UserID: uid, Payload: payload})
		if err != nil {
			return errors.Wrap(err, "marshal realtime message")
		}
		if err := a.redisClient.Publish(ctx, GatewayChannel(nodeID), msg); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "publish to gateway %s", nodeID)
		}
	}
	return firstErr
}
