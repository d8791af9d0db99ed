package port

import "context"

// PricingQuery 描述一条待定价的订单行。
type PricingQuery struct {
	ShopID     int64
	ProductID  int64
	BrandID    int64
	CategoryID int64
	BasePrice  float64
}

// PricingOutcome 是折扣解析的结果，直接快照进 OrderItem。
type PricingOutcome struct {
	Percent         float64
	DiscountedPrice float64
	Reason          string
	DiscountType    string
}

// PricingService 对每条订单行解析一次最适用的折扣。
type PricingService interface {
	Resolve(ctx context.Context, q PricingQuery) (PricingOutcome, error)
}
