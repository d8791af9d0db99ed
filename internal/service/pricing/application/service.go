package application

import (
	"context"
	"fmt"

	"bazaar/internal/service/pricing/domain"
)

// PricingService 对一条订单行解析最适用的折扣。
// 结果由调用方快照进订单行，之后规则怎么改都不影响已下的订单。
type PricingService struct {
	rules domain.RuleRepository
}

func NewPricingService(rules domain.RuleRepository) *PricingService {
	return &PricingService{rules: rules}
}

func (s *PricingService) Resolve(ctx context.Context, shopID, productID, brandID, categoryID int64, basePrice float64) (domain.Outcome, error) {
	rule, err := s.rules.FindBestRule(ctx, shopID, productID, brandID, categoryID)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("rules.FindBestRule: %w", err)
	}
	if rule == nil {
		return domain.NeutralOutcome(basePrice), nil
	}

	return domain.Outcome{
		Percent:         rule.DiscountPercent,
		DiscountedPrice: rule.Apply(basePrice),
		Reason:          reasonFor(rule.DiscountFor),
		DiscountType:    string(rule.DiscountType),
	}, nil
}

func reasonFor(scope domain.DiscountFor) string {
	switch scope {
	case domain.ForProduct:
		return "Product discount"
	case domain.ForBrand:
		return "Brand discount"
	case domain.ForCategory:
		return "Category discount"
	case domain.ForAll:
		return "Shop-wide discount"
	default:
		return "No Discount"
	}
}
