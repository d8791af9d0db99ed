package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentType 是下单时声明的付款方式。只做记录，不对接支付网关。
type PaymentType string

const (
	PaymentFullPrepaid    PaymentType = "FULL_PREPAID"
	PaymentHalfPrepaid    PaymentType = "HALF_PREPAID"
	PaymentCashOnDelivery PaymentType = "CASH_ON_DELIVERY"
)

var validPaymentTypes = map[PaymentType]struct{}{
	PaymentFullPrepaid:    {},
	PaymentHalfPrepaid:    {},
	PaymentCashOnDelivery: {},
}

func ToPaymentType(s string) (PaymentType, error) {
	pt := PaymentType(s)
	if _, ok := validPaymentTypes[pt]; ok {
		return pt, nil
	}
	return "", ErrInvalidPaymentType
}

// Order 是订单聚合的根实体。
// 创建之后只能通过状态机流转，不允许物理删除。
type Order struct {
	ID               string
	BuyerID          int64
	ShopID           int64
	CurrencyID       int64
	PaymentType      PaymentType
	PayslipReference string
	Status           Status
	OrderTotal       float64
	ShippingAddress  string // 下单时的快照，不引用用户当前地址
	InvoiceURL       string // 发票异步生成，可能为空
	Items            []OrderItem
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderItem 创建后不可变。UnitPrice 是下单时刻折扣后的快照价，
// 目录价格或折扣规则后续变动不会影响它。
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID int64
	Quantity  int
	UnitPrice float64
}

func (i OrderItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// ProductPricing 是目录协作方暴露的定价元数据。
type ProductPricing struct {
	ProductID  int64
	ShopID     int64
	CurrencyID int64
	BrandID    int64
	CategoryID int64
	BasePrice  float64
}

// PricedLine 是一条已经完成折扣解析的订单行。
type PricedLine struct {
	ProductID int64
	Quantity  int
	UnitPrice float64
}

// NewOrder 工厂函数。调用方保证 lines 已通过准入校验并完成定价。
func NewOrder(buyerID, shopID, currencyID int64, paymentType PaymentType, payslipRef, shippingAddress string, lines []PricedLine) *Order {
	orderID := uuid.New().String()
	now := time.Now()

	o := &Order{
		ID:               orderID,
		BuyerID:          buyerID,
		ShopID:           shopID,
		CurrencyID:       currencyID,
		PaymentType:      paymentType,
		PayslipReference: payslipRef,
		ShippingAddress:  shippingAddress,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	for _, line := range lines {
		item := OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
		o.Items = append(o.Items, item)
		o.OrderTotal += item.LineTotal()
	}

	return o
}

// TransitionTo 校验并执行一次状态流转。只负责状态，不触发任何外部副作用。
func (o *Order) TransitionTo(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return ErrInvalidStatus
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}
