package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"bazaar/internal/pkg/task"
	"bazaar/internal/service/order/application"
	"bazaar/internal/service/order/domain"
	"bazaar/internal/service/order/domain/port"
)

// --- 测试替身 ---

type fakeOrderRepo struct {
	mu         sync.Mutex
	orders     map[string]*domain.Order
	admitErr   error
	reviewed   bool
	admitDelay time.Duration
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *fakeOrderRepo) Admit(ctx context.Context, order *domain.Order) error {
	if r.admitDelay > 0 {
		time.Sleep(r.admitDelay)
	}
	if r.admitErr != nil {
		return r.admitErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (r *fakeOrderRepo) SetInvoiceURL(ctx context.Context, id, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.orders[id]; ok {
		order.InvoiceURL = url
	}
	return nil
}

func (r *fakeOrderRepo) HasCompletedOrder(ctx context.Context, buyerID, shopID int64) (bool, error) {
	return r.reviewed, nil
}

type fakeCatalog struct {
	products map[int64]domain.ProductPricing
	creator  int64
}

func (c *fakeCatalog) GetPricingMetadata(ctx context.Context, ids []int64) (map[int64]domain.ProductPricing, error) {
	out := make(map[int64]domain.ProductPricing)
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (c *fakeCatalog) GetProductCreator(ctx context.Context, productID int64) (int64, error) {
	return c.creator, nil
}

type fakePricing struct {
	discountPercent float64
}

func (p *fakePricing) Resolve(ctx context.Context, q port.PricingQuery) (port.PricingOutcome, error) {
	return port.PricingOutcome{
		Percent:         p.discountPercent,
		DiscountedPrice: q.BasePrice * (1 - p.discountPercent/100),
		Reason:          "test",
		DiscountType:    "PERCENT",
	}, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []*domain.NotificationRequested
}

func (n *fakeNotifier) Produce(ctx context.Context, event *domain.NotificationRequested) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *fakeNotifier) byEvent(name string) []*domain.NotificationRequested {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []*domain.NotificationRequested
	for _, e := range n.events {
		if e.Event == name {
			out = append(out, e)
		}
	}
	return out
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	url   string
}

func (r *fakeRenderer) RenderPDF(ctx context.Context, html string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.url, nil
}

type fakeBus struct {
	mu     sync.Mutex
	events []string
}

func (b *fakeBus) Emit(ctx context.Context, event string, recipients []int64, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

type fixture struct {
	svc      *application.OrderApplicationService
	repo     *fakeOrderRepo
	catalog  *fakeCatalog
	notifier *fakeNotifier
	renderer *fakeRenderer
	bus      *fakeBus
	executor *task.Executor
}

func newFixture() *fixture {
	f := &fixture{
		repo: newFakeOrderRepo(),
		catalog: &fakeCatalog{
			creator: 77,
			products: map[int64]domain.ProductPricing{
				1: {ProductID: 1, ShopID: 10, CurrencyID: 100, BrandID: 5, CategoryID: 7, BasePrice: 100},
				2: {ProductID: 2, ShopID: 10, CurrencyID: 100, BrandID: 5, CategoryID: 7, BasePrice: 50},
			},
		},
		notifier: &fakeNotifier{},
		renderer: &fakeRenderer{url: "https://cdn.example.com/invoice.pdf"},
		bus:      &fakeBus{},
		executor: task.NewExecutor(4),
	}
	f.svc = application.NewOrderApplicationService(
		f.repo, f.catalog, &fakePricing{discountPercent: 10},
		f.notifier, f.renderer, f.bus, f.executor,
		otel.Tracer("test"),
	)
	return f
}

func placeRequest() *application.PlaceOrderRequest {
	return &application.PlaceOrderRequest{
		Buyer:            domain.Principal{UserID: 1, Role: domain.RoleUser},
		Lines:            []domain.CartLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
		PaymentType:      string(domain.PaymentFullPrepaid),
		PayslipReference: "slip-1",
		ShippingAddress:  "12 Main St",
	}
}

// --- 用例 ---

func TestPlaceOrderHappyPath(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.PlaceOrder(ctx, placeRequest())
	require.NoError(t, err)
	require.NotEmpty(t, resp.OrderID)
	assert.False(t, resp.IsAlreadyReviewed)

	order, err := f.repo.FindByID(ctx, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, order.Status)
	// 单价是折扣后的快照：100*0.9 与 50*0.9
	assert.InDelta(t, 2*90.0+45.0, order.OrderTotal, 1e-9)

	// 等后台工作排空后再断言副作用
	f.executor.Shutdown()

	placed := f.notifier.byEvent(domain.EventOrderPlaced)
	require.Len(t, placed, 1)
	assert.Equal(t, []int64{77}, placed[0].Recipients)
	assert.Equal(t, resp.OrderID, placed[0].OrderID)

	assert.Equal(t, 1, f.renderer.calls)
	order, err = f.repo.FindByID(ctx, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/invoice.pdf", order.InvoiceURL)
	assert.Contains(t, f.bus.events, domain.EventInvoiceReady)
}

func TestPlaceOrderAlreadyReviewed(t *testing.T) {
	f := newFixture()
	f.repo.reviewed = true

	resp, err := f.svc.PlaceOrder(context.Background(), placeRequest())
	require.NoError(t, err)
	assert.True(t, resp.IsAlreadyReviewed)
	f.executor.Shutdown()
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	f := newFixture()
	f.repo.admitErr = &domain.InsufficientStockError{ProductID: 2}

	_, err := f.svc.PlaceOrder(context.Background(), placeRequest())
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	// 失败的准入不能触发任何后台副作用
	f.executor.Shutdown()
	assert.Empty(t, f.notifier.events)
	assert.Zero(t, f.renderer.calls)
}

func TestPlaceOrderValidationFailures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req := placeRequest()
	req.PaymentType = "BARTER"
	_, err := f.svc.PlaceOrder(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentType)

	req = placeRequest()
	req.PayslipReference = ""
	_, err = f.svc.PlaceOrder(ctx, req)
	assert.ErrorIs(t, err, domain.ErrMissingPaymentProof)

	req = placeRequest()
	req.Lines = nil
	_, err = f.svc.PlaceOrder(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidCartComposition)

	f.executor.Shutdown()
	assert.Empty(t, f.notifier.events)
}

func TestUpdateStatusFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.PlaceOrder(ctx, placeRequest())
	require.NoError(t, err)

	admin := domain.Principal{UserID: 9, Role: domain.RoleAdmin}
	err = f.svc.UpdateStatus(ctx, &application.UpdateStatusRequest{
		Principal: admin, OrderID: resp.OrderID, NewStatus: "PROCESSING",
	})
	require.NoError(t, err)

	order, err := f.repo.FindByID(ctx, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, order.Status)

	f.executor.Shutdown()
	changed := f.notifier.byEvent(domain.EventStatusChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, []int64{1}, changed[0].Recipients, "buyer gets the status notification")
	assert.False(t, changed[0].Terminal)
}

func TestUpdateStatusUnauthorized(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.PlaceOrder(ctx, placeRequest())
	require.NoError(t, err)

	buyer := domain.Principal{UserID: 1, Role: domain.RoleUser}
	err = f.svc.UpdateStatus(ctx, &application.UpdateStatusRequest{
		Principal: buyer, OrderID: resp.OrderID, NewStatus: "SHIPPED",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	order, _ := f.repo.FindByID(ctx, resp.OrderID)
	assert.Equal(t, domain.StatusPending, order.Status, "denied transition must not touch the order")
	f.executor.Shutdown()
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.PlaceOrder(ctx, placeRequest())
	require.NoError(t, err)

	admin := domain.Principal{UserID: 9, Role: domain.RoleAdmin}
	require.NoError(t, f.svc.UpdateStatus(ctx, &application.UpdateStatusRequest{
		Principal: admin, OrderID: resp.OrderID, NewStatus: "CANCELLED",
	}))

	err = f.svc.UpdateStatus(ctx, &application.UpdateStatusRequest{
		Principal: admin, OrderID: resp.OrderID, NewStatus: "PROCESSING",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus, "terminal orders stay put even for admins")
	f.executor.Shutdown()
}

func TestRemindSeller(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.PlaceOrder(ctx, placeRequest())
	require.NoError(t, err)

	buyer := domain.Principal{UserID: 1, Role: domain.RoleUser}
	require.NoError(t, f.svc.RemindSeller(ctx, buyer, resp.OrderID))

	f.executor.Shutdown()
	reminders := f.notifier.byEvent(domain.EventReminder)
	require.Len(t, reminders, 1)
	assert.Equal(t, []int64{77}, reminders[0].Recipients, "reminder goes to the seller")
}

func TestRemindSellerClosedOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.PlaceOrder(ctx, placeRequest())
	require.NoError(t, err)

	admin := domain.Principal{UserID: 9, Role: domain.RoleAdmin}
	require.NoError(t, f.svc.UpdateStatus(ctx, &application.UpdateStatusRequest{
		Principal: admin, OrderID: resp.OrderID, NewStatus: "CANCELLED",
	}))

	buyer := domain.Principal{UserID: 1, Role: domain.RoleUser}
	err = f.svc.RemindSeller(ctx, buyer, resp.OrderID)
	assert.ErrorIs(t, err, domain.ErrAlreadyTerminal)
	f.executor.Shutdown()
}

func TestRemindSellerUnknownOrder(t *testing.T) {
	f := newFixture()
	err := f.svc.RemindSeller(context.Background(), domain.Principal{UserID: 1, Role: domain.RoleUser}, "nope")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	f.executor.Shutdown()
}
