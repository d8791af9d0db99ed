package port

import (
	"context"

	"bazaar/internal/service/order/domain"
)

// ProductCatalog 是商品目录协作方的出站端口。
// 订单核心只读它的定价元数据和卖家归属，库存扣减走 Inventory Ledger。
type ProductCatalog interface {
	// GetPricingMetadata 批量取购物车里每个商品的定价元数据。
	GetPricingMetadata(ctx context.Context, productIDs []int64) (map[int64]domain.ProductPricing, error)

	// GetProductCreator 返回商品创建者（卖家）的用户 ID。
	GetProductCreator(ctx context.Context, productID int64) (int64, error)
}
