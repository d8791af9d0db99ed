package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"bazaar/internal/pkg/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 网关前面有统一的接入层做来源校验，这里放开跨域
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client 代表一条 WebSocket 连接。
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// readPump 读取客户端消息。业务上客户端不上行数据，
// 这个循环只负责心跳和感知断连。
func (c *Client) readPump(sessions *session.Manager) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
		// 本节点上该用户最后一条连接断开时清理会话路由
		if !c.hub.HasUser(c.userID) {
			if err := sessions.RemoveUserGateway(context.Background(), c.userID); err != nil {
				log.Error().Err(err).Str("user_id", c.userID).Msg("清理会话路由失败")
			}
		}
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("user_id", c.userID).Msg("连接异常关闭")
			}
			return
		}
	}
}

// writePump 把 send channel 中的消息写入连接，并定期发心跳。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs 处理 /ws 请求：升级连接、登记会话路由、启动读写泵。
func ServeWs(hub *Hub, sessions *session.Manager, nodeID string, w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("升级 WebSocket 失败")
		return
	}

	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256), userID: userID}
	client.hub.register <- client

	if err := sessions.SetUserGateway(r.Context(), userID, nodeID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("登记会话路由失败")
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(sessions)
}
