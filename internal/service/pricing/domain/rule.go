package domain

import "time"

// DiscountFor 规则的作用范围。范围越具体优先级越高：
// PRODUCT > BRAND > CATEGORY > ALL（店铺全场）。
type DiscountFor string

const (
	ForAll      DiscountFor = "ALL"
	ForProduct  DiscountFor = "PRODUCT"
	ForBrand    DiscountFor = "BRAND"
	ForCategory DiscountFor = "CATEGORY"
)

type DiscountType string

const (
	TypePercent     DiscountType = "PERCENT"
	TypeFixedAmount DiscountType = "FIXED_AMOUNT"
	TypeNone        DiscountType = "NONE"
)

// DiscountRule 由定价后台维护，订单核心只读。
type DiscountRule struct {
	ID              int64
	ShopID          int64
	DiscountFor     DiscountFor
	DiscountForID   int64 // DiscountFor 为 ALL 时无意义
	DiscountType    DiscountType
	DiscountPercent float64
	DiscountedPrice float64 // FIXED_AMOUNT 时直接使用的绝对价
	Expiration      *time.Time
}

// IsEffective 过期日为空或不早于今天的规则才可用。
func (r DiscountRule) IsEffective(now time.Time) bool {
	if r.Expiration == nil {
		return true
	}
	today := now.Truncate(24 * time.Hour)
	return !r.Expiration.Before(today)
}

// Apply 对基础价应用这条规则。
// PERCENT 按比例折价；FIXED_AMOUNT 返回规则里存的绝对价，
// 与输入的基础价无关；其他类型原价返回。
func (r DiscountRule) Apply(basePrice float64) float64 {
	switch r.DiscountType {
	case TypePercent:
		return basePrice * (1 - r.DiscountPercent/100)
	case TypeFixedAmount:
		return r.DiscountedPrice
	default:
		return basePrice
	}
}

// Outcome 是一次折扣解析的结果。
type Outcome struct {
	Percent         float64
	DiscountedPrice float64
	Reason          string
	DiscountType    string
}

// NeutralOutcome 没有任何规则命中时的中性结果，价格原样返回。
func NeutralOutcome(basePrice float64) Outcome {
	return Outcome{
		Percent:         0,
		DiscountedPrice: basePrice,
		Reason:          "No Discount",
		DiscountType:    string(TypeNone),
	}
}
