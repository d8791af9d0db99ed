package infrastructure

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"bazaar/internal/service/order/domain"
)

// InventoryLedger 负责库存计数器的原子预占。
// 正确性依赖数据库的行锁：每个商品一条条件 UPDATE，
// 只有 stock_quantity 仍然足够时才会命中；任何一条没命中，整批回滚。
// 并发准入同一商品时不可能超卖，也不依赖任何进程内互斥。
type InventoryLedger struct {
	db *gorm.DB
}

func NewInventoryLedger(db *gorm.DB) *InventoryLedger {
	return &InventoryLedger{db: db}
}

// Reserve 以独立事务整批预占。要么全部扣减，要么一个都不扣。
func (l *InventoryLedger) Reserve(ctx context.Context, items []domain.CartLine) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return l.ReserveTx(tx, items)
	})
}

// ReserveTx 在调用方提供的事务内执行预占，订单准入用它和落库共享一个事务。
func (l *InventoryLedger) ReserveTx(tx *gorm.DB, items []domain.CartLine) error {
	for _, item := range items {
		res := tx.Model(&ProductModel{}).
			Where("id = ? AND stock_quantity >= ?", item.ProductID, item.Quantity).
			UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
		if res.Error != nil {
			return fmt.Errorf("decrement stock for product %d: %w", item.ProductID, res.Error)
		}
		// 没有命中任何行说明库存不足，返回错误让整个事务回滚
		if res.RowsAffected == 0 {
			return &domain.InsufficientStockError{ProductID: item.ProductID}
		}
	}
	return nil
}
