package domain

import "context"

// OrderRepository 是订单聚合的持久化端口。
// Admit 在同一个数据库事务里完成整批库存预占和订单落库：
// 任何一个商品库存不足，整个事务回滚，返回 InsufficientStockError。
type OrderRepository interface {
	Admit(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, orderID string) (*Order, error)
	UpdateStatus(ctx context.Context, orderID string, status Status) error
	SetInvoiceURL(ctx context.Context, orderID, url string) error
	HasCompletedOrder(ctx context.Context, buyerID, shopID int64) (bool, error)
}
