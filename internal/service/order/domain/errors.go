package domain

import (
	"errors"
	"fmt"
)

// 同步失败的错误分类。任何威胁数据完整性的问题都在这里大声失败，
// 纯通知性的失败（推送、发票、实时事件）只记日志，不会出现在这组错误里。
var (
	ErrInvalidCartComposition = errors.New("invalid cart composition")
	ErrInvalidPaymentType     = errors.New("invalid payment type")
	ErrMissingPaymentProof    = errors.New("payment proof is required for prepaid orders")
	ErrInvalidStatus          = errors.New("invalid order status")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrOrderNotFound          = errors.New("order not found")
	ErrAlreadyTerminal        = errors.New("order is already in a terminal status")
	ErrInsufficientStock      = errors.New("insufficient stock")
)

// InsufficientStockError 指明是哪个商品库存不足，整批预占已回滚。
type InsufficientStockError struct {
	ProductID int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
