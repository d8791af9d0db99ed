package domain

import "fmt"

// CartLine 是买家提交的一行购物车。
type CartLine struct {
	ProductID int64
	Quantity  int
}

// ValidateCart 在任何写入发生之前执行跨行不变量校验。
// 纯函数：商品元数据由调用方预先取好，这里不做任何 IO。
func ValidateCart(lines []CartLine, paymentType PaymentType, payslipRef string, products map[int64]ProductPricing) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: cart is empty", ErrInvalidCartComposition)
	}

	var shopID, currencyID int64
	for i, line := range lines {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: quantity must be positive for product %d", ErrInvalidCartComposition, line.ProductID)
		}

		meta, ok := products[line.ProductID]
		if !ok {
			return fmt.Errorf("%w: unknown product %d", ErrInvalidCartComposition, line.ProductID)
		}

		if i == 0 {
			shopID, currencyID = meta.ShopID, meta.CurrencyID
			continue
		}
		if meta.ShopID != shopID {
			return fmt.Errorf("%w: items from more than one shop", ErrInvalidCartComposition)
		}
		if meta.CurrencyID != currencyID {
			return fmt.Errorf("%w: mixed currencies", ErrInvalidCartComposition)
		}
	}

	if _, ok := validPaymentTypes[paymentType]; !ok {
		return ErrInvalidPaymentType
	}

	// 货到付款以外的方式必须带付款凭证
	if paymentType != PaymentCashOnDelivery && payslipRef == "" {
		return ErrMissingPaymentProof
	}

	return nil
}
