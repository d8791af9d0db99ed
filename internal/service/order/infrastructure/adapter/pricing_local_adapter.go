package adapter

import (
	"context"

	"bazaar/internal/service/order/domain/port"
	pricingapp "bazaar/internal/service/pricing/application"
)

// PricingLocalAdapter 把进程内的定价服务适配到订单侧的出站端口。
type PricingLocalAdapter struct {
	svc *pricingapp.PricingService
}

func NewPricingLocalAdapter(svc *pricingapp.PricingService) *PricingLocalAdapter {
	return &PricingLocalAdapter{svc: svc}
}

func (a *PricingLocalAdapter) Resolve(ctx context.Context, q port.PricingQuery) (port.PricingOutcome, error) {
	outcome, err := a.svc.Resolve(ctx, q.ShopID, q.ProductID, q.BrandID, q.CategoryID, q.BasePrice)
	if err != nil {
		return port.PricingOutcome{}, err
	}
	return port.PricingOutcome{
		Percent:         outcome.Percent,
		DiscountedPrice: outcome.DiscountedPrice,
		Reason:          outcome.Reason,
		DiscountType:    outcome.DiscountType,
	}, nil
}
