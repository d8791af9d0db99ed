package domain

import "context"

// RuleRepository 查找一条最适用的有效规则。
// 实现必须按 PRODUCT > BRAND > CATEGORY > ALL 的优先级返回第一条命中，
// 没有命中时返回 (nil, nil)。
type RuleRepository interface {
	FindBestRule(ctx context.Context, shopID, productID, brandID, categoryID int64) (*DiscountRule, error)
}
