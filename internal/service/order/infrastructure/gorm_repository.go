package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"bazaar/internal/service/order/domain"
)

// GormOrderRepository 是 domain.OrderRepository 的 GORM 实现。
type GormOrderRepository struct {
	db     *gorm.DB
	ledger *InventoryLedger
}

func NewGormOrderRepository(db *gorm.DB, ledger *InventoryLedger) *GormOrderRepository {
	return &GormOrderRepository{db: db, ledger: ledger}
}

// Admit 在一个事务里完成：整批库存预占 → 订单 + 订单行落库。
// 预占失败或落库失败都会让库存扣减一并回滚，不存在半个订单。
func (r *GormOrderRepository) Admit(ctx context.Context, order *domain.Order) error {
	if len(order.Items) == 0 {
		return fmt.Errorf("%w: no items in order", domain.ErrInvalidCartComposition)
	}

	reservations := make([]domain.CartLine, 0, len(order.Items))
	for _, item := range order.Items {
		reservations = append(reservations, domain.CartLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.ledger.ReserveTx(tx, reservations); err != nil {
			return err
		}

		model := toOrderModel(order)
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return nil
	})
}

func (r *GormOrderRepository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", orderID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order %s: %w", orderID, err)
	}
	return toDomainOrder(model)
}

func (r *GormOrderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.Status) error {
	res := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("update status for order %s: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *GormOrderRepository) SetInvoiceURL(ctx context.Context, orderID, url string) error {
	res := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("id = ?", orderID).
		Update("invoice_url", url)
	if res.Error != nil {
		return fmt.Errorf("set invoice url for order %s: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// HasCompletedOrder 买家是否已经在该店铺有完成过的订单，用于评价提示。
func (r *GormOrderRepository) HasCompletedOrder(ctx context.Context, buyerID, shopID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("buyer_id = ? AND shop_id = ? AND status = ?", buyerID, shopID, string(domain.StatusCompleted)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count completed orders: %w", err)
	}
	return count > 0, nil
}

var _ domain.OrderRepository = (*GormOrderRepository)(nil)
