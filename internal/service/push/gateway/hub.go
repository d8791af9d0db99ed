package gateway

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Hub 维护本节点上所有活跃的 WebSocket 连接。
// 同一个用户可能有多台设备在线，按 userID 聚合成连接组。
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	lock       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run 处理连接的注册与注销。在独立的 goroutine 中运行。
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.lock.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]struct{})
			}
			h.clients[client.userID][client] = struct{}{}
			h.lock.Unlock()
			log.Info().Str("user_id", client.userID).Msg("客户端已连接")
		case client := <-h.unregister:
			h.lock.Lock()
			if set, ok := h.clients[client.userID]; ok {
				if _, ok := set[client]; ok {
					delete(set, client)
					close(client.send)
					if len(set) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}
			h.lock.Unlock()
			log.Info().Str("user_id", client.userID).Msg("客户端已断开")
		}
	}
}

// Deliver 把一条消息投递给某个用户在本节点的所有连接。
// 返回成功写入的连接数；用户不在本节点时返回 0。
func (h *Hub) Deliver(userID string, message []byte) int {
	h.lock.RLock()
	defer h.lock.RUnlock()

	delivered := 0
	for client := range h.clients[userID] {
		select {
		case client.send <- message:
			delivered++
		default:
			// 发送缓冲已满，说明这个连接已经跟不上了，放弃本条
			log.Warn().Str("user_id", userID).Msg("连接发送缓冲已满，丢弃消息")
		}
	}
	return delivered
}

// HasUser 该用户当前是否还有连接留在本节点。
func (h *Hub) HasUser(userID string) bool {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.clients[userID]) > 0
}
