package adapter

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"bazaar/internal/service/order/domain"
	"bazaar/internal/service/order/infrastructure"
)

// CatalogGormAdapter 实现 port.ProductCatalog。
// 目录归商品侧所有，这里只读定价元数据和卖家归属。
type CatalogGormAdapter struct {
	db *gorm.DB
}

func NewCatalogGormAdapter(db *gorm.DB) *CatalogGormAdapter {
	return &CatalogGormAdapter{db: db}
}

func (a *CatalogGormAdapter) GetPricingMetadata(ctx context.Context, productIDs []int64) (map[int64]domain.ProductPricing, error) {
	var models []infrastructure.ProductModel
	if err := a.db.WithContext(ctx).Where("id IN ?", productIDs).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	result := make(map[int64]domain.ProductPricing, len(models))
	for _, m := range models {
		result[m.ID] = domain.ProductPricing{
			ProductID:  m.ID,
			ShopID:     m.ShopID,
			CurrencyID: m.CurrencyID,
			BrandID:    m.BrandID,
			CategoryID: m.CategoryID,
			BasePrice:  m.Price,
		}
	}
	return result, nil
}

func (a *CatalogGormAdapter) GetProductCreator(ctx context.Context, productID int64) (int64, error) {
	var model infrastructure.ProductModel
	err := a.db.WithContext(ctx).Select("id", "created_by").Where("id = ?", productID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("product %d not found", productID)
		}
		return 0, fmt.Errorf("load product %d: %w", productID, err)
	}
	return model.CreatedBy, nil
}
