package domain

// 通知事件名，作为 Kafka 消息和路由规则中的 event 字段。
const (
	EventOrderPlaced   = "order.placed"
	EventStatusChanged = "order.status_changed"
	EventReminder      = "order.reminder"
	EventInvoiceReady  = "invoice.ready"
)

// NotificationRequested 是订单生命周期事件投递到通知队列的载体。
// Recipients 是已知的具体收件人；角色受众（例如全体管理员）由
// 消费端的路由策略根据 Event/ActorRole/Terminal 决定后追加。
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

// OrderDetailPayload 是通知里携带的跳转元数据。
func OrderDetailPayload(orderID string) map[string]any {
	return map[string]any{"redirect": "order-detail", "id": orderID}
}
