package domain

// NotificationRequested 是从通知队列里消费到的事件，字段与
// 订单侧生产的消息一一对应。
type NotificationRequested struct {
	Event      string         `json:"event"`
	OrderID    string         `json:"orderId"`
	Recipients []int64        `json:"recipients"`
	ActorRole  string         `json:"actorRole,omitempty"`
	Terminal   bool           `json:"terminal,omitempty"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Payload    map[string]any `json:"payload,omitempty"`
}
