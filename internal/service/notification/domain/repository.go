package domain

import "context"

// NotificationRepository 通知的持久化出站端口。
type NotificationRepository interface {
	SaveBatch(ctx context.Context, notifications []*Notification) error
	ListByRecipient(ctx context.Context, recipientID int64, limit int) ([]*Notification, error)
	// UpdateStatus 只允许收件人本人修改自己的通知状态。
	UpdateStatus(ctx context.Context, id string, recipientID int64, status NotificationStatus) error
}

// UserDirectory 根据角色受众解析出具体的用户集合。
type UserDirectory interface {
	FindByRole(ctx context.Context, role string) ([]int64, error)
}

// DeviceTokenRegistry 查询某个用户当前注册的推送令牌。
type DeviceTokenRegistry interface {
	TokensFor(ctx context.Context, userID int64) ([]string, error)
}

// PushSender 把一条通知实时推送到某个用户的某台设备。
// 单台设备推送失败不应影响其他设备和其他收件人。
type PushSender interface {
	Push(ctx context.Context, userID int64, token string, n *Notification) error
}

// RoutingPolicy 根据事件内容决定额外的受众，返回形如
// "role:admin" 的受众标识列表。
type RoutingPolicy interface {
	Audiences(event *NotificationRequested) ([]string, error)
}
