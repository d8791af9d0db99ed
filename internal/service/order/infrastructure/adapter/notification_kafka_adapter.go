package adapter

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"bazaar/internal/pkg/mq"
	"bazaar/internal/service/order/domain"
)

// NotificationKafkaAdapter 实现 port.NotificationProducer。
// 订单服务只负责把事件投递进通知 topic，真正的扇出在 worker 端。
type NotificationKafkaAdapter struct {
	writer *kafka.Writer
}

func NewNotificationKafkaAdapter(writer *kafka.Writer) *NotificationKafkaAdapter {
	return &NotificationKafkaAdapter{writer: writer}
}

func (a *NotificationKafkaAdapter) Produce(ctx context.Context, event *domain.NotificationRequested) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal notification event")
	}

	// mq.ProduceMessage 会把追踪上下文注入消息头
	if err := mq.ProduceMessage(ctx, a.writer, []byte(event.OrderID), eventBytes); err != nil {
		return errors.Wrapf(err, "produce notification for order %s", event.OrderID)
	}
	return nil
}

func (a *NotificationKafkaAdapter) Close() error {
	return a.writer.Close()
}
