package infrastructure_test

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bazaar/internal/service/pricing/domain"
	"bazaar/internal/service/pricing/infrastructure"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&infrastructure.DiscountRuleModel{}))
	return db
}

func seedRule(t *testing.T, db *gorm.DB, rule infrastructure.DiscountRuleModel) {
	t.Helper()
	require.NoError(t, db.Create(&rule).Error)
}

func TestFindBestRulePriority(t *testing.T) {
	db := newTestDB(t)
	repo := infrastructure.NewGormRuleRepository(db)
	ctx := context.Background()

	// 同店铺四个层级的规则同时生效，商品级必须胜出
	seedRule(t, db, infrastructure.DiscountRuleModel{ShopID: 10, DiscountFor: "ALL", DiscountType: "PERCENT", DiscountPercent: 5})
	seedRule(t, db, infrastructure.DiscountRuleModel{ShopID: 10, DiscountFor: "CATEGORY", DiscountForID: 7, DiscountType: "PERCENT", DiscountPercent: 10})
	seedRule(t, db, infrastructure.DiscountRuleModel{ShopID: 10, DiscountFor: "BRAND", DiscountForID: 5, DiscountType: "PERCENT", DiscountPercent: 15})
	seedRule(t, db, infrastructure.DiscountRuleModel{ShopID: 10, DiscountFor: "PRODUCT", DiscountForID: 1, DiscountType: "PERCENT", DiscountPercent: 20})

	rule, err := repo.FindBestRule(ctx, 10, 1, 5, 7)
	require.NoError(t, err)
	require.NotNil(t, rule)
	require.Equal(t, domain.ForProduct, rule.DiscountFor)
	require.Equal(t, 20.0, rule.DiscountPercent)

	// 另一个商品没有商品级规则，落到品牌级
	rule, err = repo.FindBestRule(ctx, 10, 2, 5, 7)
	require.NoError(t, err)
	require.NotNil(t, rule)
	require.Equal(t, domain.ForBrand, rule.DiscountFor)
}

func TestFindBestRuleSkipsExpired(t *testing.T) {
	db := newTestDB(t)
	repo := infrastructure.NewGormRuleRepository(db)
	ctx := context.Background()

	expired := time.Now().AddDate(0, 0, -2)
	seedRule(t, db, infrastructure.DiscountRuleModel{ShopID: 10, DiscountFor: "PRODUCT", DiscountForID: 1, DiscountType: "PERCENT", DiscountPercent: 50, Expiration: &expired})
	seedRule(t, db, infrastructure.DiscountRuleModel{ShopID: 10, DiscountFor: "ALL", DiscountType: "PERCENT", DiscountPercent: 5})

	rule, err := repo.FindBestRule(ctx, 10, 1, 0, 0)
	require.NoError(t, err)
	require.NotNil(t, rule)
	require.Equal(t, domain.ForAll, rule.DiscountFor, "expired product rule must not shadow the shop-wide one")
}

func TestFindBestRuleNoMatch(t *testing.T) {
	db := newTestDB(t)
	repo := infrastructure.NewGormRuleRepository(db)

	seedRule(t, db, infrastructure.DiscountRuleModel{ShopID: 99, DiscountFor: "ALL", DiscountType: "PERCENT", DiscountPercent: 5})

	rule, err := repo.FindBestRule(context.Background(), 10, 1, 5, 7)
	require.NoError(t, err)
	require.Nil(t, rule)
}

func TestFindBestRuleIgnoresOtherShops(t *testing.T) {
	db := newTestDB(t)
	repo := newRepoWithCrossShopRules(t, db)

	rule, err := repo.FindBestRule(context.Background(), 10, 1, 0, 0)
	require.NoError(t, err)
	require.NotNil(t, rule)
	require.Equal(t, int64(10), rule.ShopID)
	require.Equal(t, 20.0, rule.DiscountPercent)
}

func newRepoWithCrossShopRules(t *testing.T, db *gorm.DB) *infrastructure.GormRuleRepository {
	t.Helper()
	seedRule(t, db, infrastructure.DiscountRuleModel{ShopID: 20, DiscountFor: "PRODUCT", DiscountForID: 1, DiscountType: "PERCENT", DiscountPercent: 80})
	seedRule(t, db, infrastructure.DiscountRuleModel{ShopID: 10, DiscountFor: "PRODUCT", DiscountForID: 1, DiscountType: "PERCENT", DiscountPercent: 20})
	return infrastructure.NewGormRuleRepository(db)
}
