package infrastructure

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/pkg/mq"
	"bazaar/internal/service/notification/application"
	"bazaar/internal/service/notification/domain"
)

// NotificationConsumerAdapter 是驱动适配器：监听通知主题，
// 还原追踪上下文后把事件交给调度器。
type NotificationConsumerAdapter struct {
	reader     *kafka.Reader
	dispatcher *application.Dispatcher
	wg         sync.WaitGroup
	stopped    bool
}

func NewNotificationConsumerAdapter(reader *kafka.Reader, dispatcher *application.Dispatcher) *NotificationConsumerAdapter {
	return &NotificationConsumerAdapter{
		reader:     reader,
		dispatcher: dispatcher,
	}
}

// Start 开始消费。长期运行，直到 ctx 取消或 Stop 被调用。
func (a *NotificationConsumerAdapter) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		logger.Ctx(ctx).Info().Str("topic", a.reader.Config().Topic).Msg("通知消费者已启动")
		for {
			if a.stopped {
				return
			}
			// 用 FetchMessage 而不是 ReadMessage，处理成功后再手动提交
			msg, err := a.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Msg("通知消费者退出")
					return
				}
				logger.Ctx(ctx).Error().Err(err).Msg("拉取消息失败，重试")
				time.Sleep(time.Second)
				continue
			}

			a.processMessage(ctx, msg)

			if err := a.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("提交 offset 失败")
			}
		}
	}()
}

// Stop 优雅停止消费者。
func (a *NotificationConsumerAdapter) Stop() {
	a.stopped = true
	a.reader.Close()
	a.wg.Wait()
}

func (a *NotificationConsumerAdapter) processMessage(parentCtx context.Context, msg kafka.Message) {
	var event domain.NotificationRequested
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// 反序列化失败属于脏消息，跳过并提交，避免阻塞分区
		logger.Ctx(parentCtx).Error().Err(err).Msg("无法解析的通知事件，跳过")
		return
	}

	ctx := mq.ExtractTraceContext(parentCtx, msg.Headers)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := a.dispatcher.Dispatch(ctx, &event); err != nil {
		// 落库失败不提交也没有意义（下一轮依旧会失败），记日志后继续。
		// TODO: 接入死信主题，落库持续失败的事件转投 notifications.dlq
		logger.Ctx(ctx).Error().Err(err).
			Str("event", event.Event).Str("order_id", event.OrderID).
			Msg("通知事件处理失败")
	}
}
