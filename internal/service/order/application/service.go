package application

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/pkg/metrics"
	"bazaar/internal/pkg/task"
	"bazaar/internal/service/order/domain"
	"bazaar/internal/service/order/domain/port"
)

// OrderApplicationService 负责订单生命周期的业务编排。
// 准入是同步事务（校验 → 预占 → 定价 → 落库），之后的一切
// （通知、发票、实时事件）都是提交到 executor 的后台工作。
type OrderApplicationService struct {
	orderRepo domain.OrderRepository
	catalog   port.ProductCatalog
	pricing   port.PricingService
	notifier  port.NotificationProducer
	renderer  port.InvoiceRenderer
	bus       port.RealtimeBus
	executor  *task.Executor
	tracer    trace.Tracer
}

func NewOrderApplicationService(
	orderRepo domain.OrderRepository,
	catalog port.ProductCatalog,
	pricing port.PricingService,
	notifier port.NotificationProducer,
	renderer port.InvoiceRenderer,
	bus port.RealtimeBus,
	executor *task.Executor,
	tracer trace.Tracer,
) *OrderApplicationService {
	return &OrderApplicationService{
		orderRepo: orderRepo,
		catalog:   catalog,
		pricing:   pricing,
		notifier:  notifier,
		renderer:  renderer,
		bus:       bus,
		executor:  executor,
		tracer:    tracer,
	}
}

// PlaceOrder 是订单准入入口。
// 返回时库存已预占、订单已落库；买家无需等待任何通知或发票。
func (s *OrderApplicationService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	ctx, span := s.tracer.Start(ctx, "order.PlaceOrder")
	defer span.End()

	paymentType, err := domain.ToPaymentType(req.PaymentType)
	if err != nil {
		metrics.OrdersRejected.WithLabelValues("invalid_payment_type").Inc()
		return nil, err
	}

	productIDs := make([]int64, 0, len(req.Lines))
	for _, line := range req.Lines {
		productIDs = append(productIDs, line.ProductID)
	}

	products, err := s.catalog.GetPricingMetadata(ctx, productIDs)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("catalog.GetPricingMetadata: %w", err)
	}

	// 1. 跨行不变量校验，任何写入之前
	if err := domain.ValidateCart(req.Lines, paymentType, req.PayslipReference, products); err != nil {
		metrics.OrdersRejected.WithLabelValues("validation").Inc()
		span.RecordError(err)
		return nil, err
	}

	// 2. 逐行解析折扣并快照单价
	lines := make([]domain.PricedLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		meta := products[line.ProductID]
		outcome, err := s.pricing.Resolve(ctx, port.PricingQuery{
			ShopID:     meta.ShopID,
			ProductID:  meta.ProductID,
			BrandID:    meta.BrandID,
			CategoryID: meta.CategoryID,
			BasePrice:  meta.BasePrice,
		})
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("pricing.Resolve product %d: %w", line.ProductID, err)
		}
		lines = append(lines, domain.PricedLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: outcome.DiscountedPrice,
		})
	}

	first := products[req.Lines[0].ProductID]
	order := domain.NewOrder(req.Buyer.UserID, first.ShopID, first.CurrencyID,
		paymentType, req.PayslipReference, req.ShippingAddress, lines)

	// 3. 同一事务内整批预占库存并落库
	if err := s.orderRepo.Admit(ctx, order); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			metrics.StockConflicts.Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "order admission failed")
		return nil, err
	}

	metrics.OrdersAdmitted.Inc()
	span.SetAttributes(attribute.String("order.id", order.ID))
	logger.Ctx(ctx).Info().Str("order_id", order.ID).Int64("buyer_id", order.BuyerID).
		Float64("total", order.OrderTotal).Msg("order admitted")

	alreadyReviewed, err := s.orderRepo.HasCompletedOrder(ctx, order.BuyerID, order.ShopID)
	if err != nil {
		// 评价提示拿不到不影响准入结果
		logger.Ctx(ctx).Warn().Err(err).Str("order_id", order.ID).Msg("review lookup failed")
		alreadyReviewed = false
	}

	// 4. 解耦的后台副作用，准入响应不等待它们
	s.fireOrderPlacedNotification(ctx, order)
	s.fireInvoiceGeneration(order)

	return &PlaceOrderResponse{OrderID: order.ID, IsAlreadyReviewed: alreadyReviewed}, nil
}

// UpdateStatus 是状态流转入口：先授权，再流转，最后异步通知。
func (s *OrderApplicationService) UpdateStatus(ctx context.Context, req *UpdateStatusRequest) error {
	ctx, span := s.tracer.Start(ctx, "order.UpdateStatus")
	defer span.End()

	target, err := domain.ToStatus(req.NewStatus)
	if err != nil {
		return err
	}

	// 授权先于任何读写
	if err := domain.AuthorizeTransition(req.Principal, target); err != nil {
		span.SetStatus(codes.Error, "transition not authorized")
		return err
	}

	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return err
	}

	if err := order.TransitionTo(target); err != nil {
		return err
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, order.Status); err != nil {
		span.RecordError(err)
		return fmt.Errorf("orderRepo.UpdateStatus: %w", err)
	}

	metrics.StatusTransitions.WithLabelValues(string(target)).Inc()
	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.String("order.status", string(target)),
	)

	s.fireStatusChangedNotification(ctx, order, req.Principal)
	return nil
}

// RemindSeller 买家催单：通知卖家和管理员，已结束的订单直接拒绝。
func (s *OrderApplicationService) RemindSeller(ctx context.Context, principal domain.Principal, orderID string) error {
	ctx, span := s.tracer.Start(ctx, "order.RemindSeller")
	defer span.End()

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	switch order.Status {
	case domain.StatusCompleted, domain.StatusRefunded, domain.StatusCancelled:
		return domain.ErrAlreadyTerminal
	}

	sellerID, err := s.catalog.GetProductCreator(ctx, order.Items[0].ProductID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("catalog.GetProductCreator: %w", err)
	}

	event := &domain.NotificationRequested{
		Event:      domain.EventReminder,
		OrderID:    order.ID,
		Recipients: []int64{sellerID},
		ActorRole:  principal.Role,
		Title:      "Urgent order reminder",
		Message:    fmt.Sprintf("Buyer is waiting for order %s (currently %s).", order.ID, order.Status),
		Payload:    domain.OrderDetailPayload(order.ID),
	}
	s.submitNotification(ctx, event)
	return nil
}

// GetOrder 订单详情。
func (s *OrderApplicationService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, orderID)
}

func (s *OrderApplicationService) fireOrderPlacedNotification(ctx context.Context, order *domain.Order) {
	// 卖家在后台任务里再查，失败不影响准入
	items := order.Items
	event := &domain.NotificationRequested{
		Event:   domain.EventOrderPlaced,
		OrderID: order.ID,
		Title:   "New order placed",
		Message: fmt.Sprintf("Order %s: %d item(s) from shop %d, payment %s.",
			order.ID, len(items), order.ShopID, order.PaymentType),
		Payload: domain.OrderDetailPayload(order.ID),
	}

	spanCtx := trace.SpanContextFromContext(ctx)
	s.executor.Submit("order-placed-notification", func(taskCtx context.Context) error {
		taskCtx = trace.ContextWithRemoteSpanContext(taskCtx, spanCtx)
		sellerID, err := s.catalog.GetProductCreator(taskCtx, items[0].ProductID)
		if err != nil {
			return fmt.Errorf("catalog.GetProductCreator: %w", err)
		}
		event.Recipients = []int64{sellerID}
		return s.notifier.Produce(taskCtx, event)
	})
}

func (s *OrderApplicationService) fireStatusChangedNotification(ctx context.Context, order *domain.Order, actor domain.Principal) {
	event := &domain.NotificationRequested{
		Event:      domain.EventStatusChanged,
		OrderID:    order.ID,
		Recipients: []int64{order.BuyerID},
		ActorRole:  actor.Role,
		Terminal:   order.Status.IsTerminal(),
		Title:      "Order status updated",
		Message:    statusMessage(order),
		Payload:    domain.OrderDetailPayload(order.ID),
	}
	s.submitNotification(ctx, event)
}

// submitNotification 把事件投递转交后台 executor，调用方立即返回。
func (s *OrderApplicationService) submitNotification(ctx context.Context, event *domain.NotificationRequested) {
	// 请求 ctx 很快会结束，只带走它的链路信息
	spanCtx := trace.SpanContextFromContext(ctx)
	s.executor.Submit("notification-produce", func(taskCtx context.Context) error {
		taskCtx = trace.ContextWithRemoteSpanContext(taskCtx, spanCtx)
		return s.notifier.Produce(taskCtx, event)
	})
}

// statusMessage 按目标状态生成发给买家的文案。
func statusMessage(order *domain.Order) string {
	switch order.Status {
	case domain.StatusProcessing:
		return fmt.Sprintf("Your order %s is being prepared.", order.ID)
	case domain.StatusShipped:
		return fmt.Sprintf("Your order %s is on the way.", order.ID)
	case domain.StatusDelivered:
		return fmt.Sprintf("Your order %s has been delivered.", order.ID)
	case domain.StatusCompleted:
		return fmt.Sprintf("Your order %s is complete. Thank you!", order.ID)
	case domain.StatusCancelled:
		return fmt.Sprintf("Your order %s has been cancelled.", order.ID)
	case domain.StatusReturned:
		return fmt.Sprintf("Return registered for order %s.", order.ID)
	case domain.StatusRefunded:
		return fmt.Sprintf("Refund issued for order %s.", order.ID)
	case domain.StatusOnHold:
		return fmt.Sprintf("Your order %s is on hold.", order.ID)
	case domain.StatusBackordered:
		return fmt.Sprintf("Your order %s is waiting for restock.", order.ID)
	default:
		return fmt.Sprintf("Your order %s is now %s.", order.ID, order.Status)
	}
}
