package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/pkg/metrics"
	"bazaar/internal/service/notification/domain"
)

// Dispatcher 把一条通知事件扇出成每个收件人一条落库记录，
// 并尽力向在线设备实时推送。推送是 best-effort：任何一台
// 设备失败都只记日志和指标，不影响其他收件人。
type Dispatcher struct {
	repo      domain.NotificationRepository
	directory domain.UserDirectory
	tokens    domain.DeviceTokenRegistry
	push      domain.PushSender
	policy    domain.RoutingPolicy
	tracer    trace.Tracer
}

func NewDispatcher(
	repo domain.NotificationRepository,
	directory domain.UserDirectory,
	tokens domain.DeviceTokenRegistry,
	push domain.PushSender,
	policy domain.RoutingPolicy,
	tracer trace.Tracer,
) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		directory: directory,
		tokens:    tokens,
		push:      push,
		policy:    policy,
		tracer:    tracer,
	}
}

// Dispatch 处理一条事件。返回错误仅代表落库失败，调用方
// 可据此决定是否重试；推送失败不会让整条消息失败。
func (d *Dispatcher) Dispatch(ctx context.Context, event *domain.NotificationRequested) error {
	ctx, span := d.tracer.Start(ctx, "notification.Dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("notification.event", event.Event),
		attribute.String("order.id", event.OrderID),
	)

	recipients, err := d.resolveRecipients(ctx, event)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		logger.Ctx(ctx).Warn().Str("event", event.Event).Str("order_id", event.OrderID).
			Msg("通知事件没有任何收件人，丢弃")
		return nil
	}

	payload := ""
	if event.Payload != nil {
		raw, err := json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		payload = string(raw)
	}

	notifications := make([]*domain.Notification, 0, len(recipients))
	for _, recipientID := range recipients {
		notifications = append(notifications, domain.NewNotification(
			recipientID, event.Event, event.OrderID, event.Title, event.Message, payload))
	}

	if err := d.repo.SaveBatch(ctx, notifications); err != nil {
		return fmt.Errorf("repo.SaveBatch: %w", err)
	}
	metrics.NotificationsDispatched.Add(float64(len(notifications)))

	d.pushAll(ctx, notifications)
	return nil
}

// resolveRecipients 合并事件自带的收件人和路由策略追加的角色受众，去重。
func (d *Dispatcher) resolveRecipients(ctx context.Context, event *domain.NotificationRequested) ([]int64, error) {
	seen := make(map[int64]struct{})
	var out []int64
	add := func(id int64) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	for _, id := range event.Recipients {
		add(id)
	}

	audiences, err := d.policy.Audiences(event)
	if err != nil {
		return nil, fmt.Errorf("policy.Audiences: %w", err)
	}
	for _, audience := range audiences {
		role, ok := strings.CutPrefix(audience, "role:")
		if !ok {
			logger.Ctx(ctx).Warn().Str("audience", audience).Msg("未知的受众格式，跳过")
			continue
		}
		ids, err := d.directory.FindByRole(ctx, role)
		if err != nil {
			return nil, fmt.Errorf("directory.FindByRole(%s): %w", role, err)
		}
		for _, id := range ids {
			add(id)
		}
	}
	return out, nil
}

// pushAll 并发地向每个收件人的每台设备推送，失败只记账。
func (d *Dispatcher) pushAll(ctx context.Context, notifications []*domain.Notification) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for _, n := range notifications {
		n := n
		g.Go(func() error {
			tokens, err := d.tokens.TokensFor(gctx, n.RecipientID)
			if err != nil {
				metrics.PushFailures.Inc()
				logger.Ctx(gctx).Error().Err(err).Int64("recipient_id", n.RecipientID).
					Msg("查询设备令牌失败")
				return nil
			}
			for _, token := range tokens {
				if err := d.push.Push(gctx, n.RecipientID, token, n); err != nil {
					metrics.PushFailures.Inc()
					logger.Ctx(gctx).Error().Err(err).
						Int64("recipient_id", n.RecipientID).Str("token", token).
						Msg("实时推送失败")
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

// ListInbox 返回某个收件人最近的通知。
func (d *Dispatcher) ListInbox(ctx context.Context, recipientID int64, limit int) ([]*domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return d.repo.ListByRecipient(ctx, recipientID, limit)
}

// MarkStatus 由收件人本人修改一条通知的状态。
func (d *Dispatcher) MarkStatus(ctx context.Context, id string, recipientID int64, status string) error {
	target, err := domain.ToNotificationStatus(status)
	if err != nil {
		return err
	}
	return d.repo.UpdateStatus(ctx, id, recipientID, target)
}
