package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"bazaar/internal/pkg/redis"
)

const (
	sessionKeyPrefix = "session:user_gateway:"
	sessionTTL       = 12 * time.Hour
)

// Manager 维护 userID -> 推送网关节点 的路由表。
// 用户的 WebSocket 连到哪个 push-gateway 节点，消息就路由到哪个节点。
type Manager struct {
	redisClient *redis.Client
}

func NewManager(redisClient *redis.Client) *Manager {
	return &Manager{redisClient: redisClient}
}

// SetUserGateway 记录用户当前连接的网关节点。
func (m *Manager) SetUserGateway(ctx context.Context, userID, nodeID string) error {
	key := sessionKeyPrefix + userID
	return m.redisClient.GetClient().Set(ctx, key, nodeID, sessionTTL).Err()
}

// GetUserGateway 查询用户连接的网关节点，未在线返回 ("", nil)。
func (m *Manager) GetUserGateway(ctx context.Context, userID string) (string, error) {
	key := sessionKeyPrefix + userID
	nodeID, err := m.redisClient.GetClient().Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("session lookup for user %s: %w", userID, err)
	}
	return nodeID, nil
}

// RemoveUserGateway 用户断连时清理路由。
func (m *Manager) RemoveUserGateway(ctx context.Context, userID string) error {
	key := sessionKeyPrefix + userID
	return m.redisClient.GetClient().Del(ctx, key).Err()
}
