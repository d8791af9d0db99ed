package adapter

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"

	"bazaar/internal/pkg/redis"
	"bazaar/internal/pkg/session"
	"bazaar/internal/service/notification/domain"
)

// PushRedisAdapter 实现 domain.PushSender。
// 与订单侧的实时总线共用同一套会话路由和网关 channel 约定：
// 查到用户所在的网关节点后向 "push:gateway:{node}" 发布，
// 由该节点的 WebSocket 集线器投递到具体设备。
type PushRedisAdapter struct {
	redisClient *redis.Client
	sessions    *session.Manager
}

func NewPushRedisAdapter(redisClient *redis.Client, sessions *session.Manager) *PushRedisAdapter {
	return &PushRedisAdapter{redisClient: redisClient, sessions: sessions}
}

func gatewayChannel(nodeID string) string {
	return "push:gateway:" + nodeID
}

// pushMessage 是网关节点收到的投递单元，token 让网关只推给
// 对应的那台设备。
type pushMessage struct {
	Event   string `json:"event"`
	UserID  string `json:"userId"`
	Token   string `json:"token,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

func (a *PushRedisAdapter) Push(ctx context.Context, userID int64, token string, n *domain.Notification) error {
	uid := strconv.FormatInt(userID, 10)
	nodeID, err := a.sessions.GetUserGateway(ctx, uid)
	if err != nil {
		return errors.Wrap(err, "session lookup")
	}
	if nodeID == "" {
		return nil // 不在线，等用户下次拉取收件箱
	}

	msg, err := json.Marshal(pushMessage{
		Event:  n.Event,
		UserID: uid,
		Token:  token,
		Payload: map[string]any{
			"id":      n.ID,
			"orderId": n.OrderID,
			"title":   n.Title,
			"message": n.Message,
			"payload": n.Payload,
		},
	})
	if err != nil {
		return errors.Wrap(err, "marshal push message")
	}
	if err := a.redisClient.Publish(ctx, gatewayChannel(nodeID), msg); err != nil {
		return errors.Wrapf(err, "publish to gateway %s", nodeID)
	}
	return nil
}

var _ domain.PushSender = (*PushRedisAdapter)(nil)
