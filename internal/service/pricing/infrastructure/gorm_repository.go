package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"bazaar/internal/service/pricing/domain"
)

// DiscountRuleModel 对应数据库中的 discount_rules 表。
type DiscountRuleModel struct {
	ID              int64   `gorm:"primaryKey;autoIncrement"`
	ShopID          int64   `gorm:"not null;index"`
	DiscountFor     string  `gorm:"type:varchar(20);not null;index"`
	DiscountForID   int64   `gorm:"index"`
	DiscountType    string  `gorm:"type:varchar(20);not null"`
	DiscountPercent float64 `gorm:"type:decimal(5,2)"`
	DiscountedPrice float64 `gorm:"type:decimal(12,2)"`
	Expiration      *time.Time
}

func (DiscountRuleModel) TableName() string {
	return "discount_rules"
}

// GormRuleRepository 是 domain.RuleRepository 的 GORM 实现。
// 规则文本来自后台录入，所有查询条件一律走参数绑定。
type GormRuleRepository struct {
	db *gorm.DB
}

func NewGormRuleRepository(db *gorm.DB) *GormRuleRepository {
	return &GormRuleRepository{db: db}
}

// FindBestRule 严格按 PRODUCT > BRAND > CATEGORY > ALL 的顺序查找，
// 第一条未过期的命中即返回。
func (r *GormRuleRepository) FindBestRule(ctx context.Context, shopID, productID, brandID, categoryID int64) (*domain.DiscountRule, error) {
	type probe struct {
		scope    domain.DiscountFor
		targetID int64
	}
	probes := []probe{
		{domain.ForProduct, productID},
		{domain.ForBrand, brandID},
		{domain.ForCategory, categoryID},
		{domain.ForAll, 0},
	}

	today := time.Now().Truncate(24 * time.Hour)

	for _, p := range probes {
		query := r.db.WithContext(ctx).
			Where("shop_id = ? AND discount_for = ?", shopID, string(p.scope)).
			Where("expiration IS NULL OR expiration >= ?", today)
		if p.scope != domain.ForAll {
			if p.targetID == 0 {
				continue
			}
			query = query.Where("discount_for_id = ?", p.targetID)
		}

		var model DiscountRuleModel
		err := query.Order("id DESC").First(&model).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("lookup %s rule: %w", p.scope, err)
		}
		return toDomainRule(model), nil
	}

	return nil, nil
}

func toDomainRule(m DiscountRuleModel) *domain.DiscountRule {
	return &domain.DiscountRule{
		ID:              m.ID,
		ShopID:          m.ShopID,
		DiscountFor:     domain.DiscountFor(m.DiscountFor),
		DiscountForID:   m.DiscountForID,
		DiscountType:    domain.DiscountType(m.DiscountType),
		DiscountPercent: m.DiscountPercent,
		DiscountedPrice: m.DiscountedPrice,
		Expiration:      m.Expiration,
	}
}

var _ domain.RuleRepository = (*GormRuleRepository)(nil)
