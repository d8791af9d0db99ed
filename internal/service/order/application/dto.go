package application

import "bazaar/internal/service/order/domain"

// PlaceOrderRequest 是订单准入用例的输入。
type PlaceOrderRequest struct {
	Buyer            domain.Principal
	Lines            []domain.CartLine
	PaymentType      string
	PayslipReference string
	ShippingAddress  string
}

// PlaceOrderResponse 准入成功后立即返回，不等待任何后台副作用。
type PlaceOrderResponse struct {
	OrderID           string `json:"orderId"`
	IsAlreadyReviewed bool   `json:"isAlreadyReviewed"`
}

// UpdateStatusRequest 是状态流转用例的输入。
type UpdateStatusRequest struct {
	Principal domain.Principal
	OrderID   string
	NewStatus string
}
