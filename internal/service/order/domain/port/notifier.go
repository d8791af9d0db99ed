package port

import (
	"context"

	"bazaar/internal/service/order/domain"
)

// NotificationProducer 把生命周期事件投递到通知队列。
// 投递失败只记日志，绝不回滚触发它的业务变更。
type NotificationProducer interface {
	Produce(ctx context.Context, event *domain.NotificationRequested) error
}
