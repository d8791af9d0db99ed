package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bazaar/internal/service/pricing/application"
	"bazaar/internal/service/pricing/domain"
)

type fakeRuleRepo struct {
	rule *domain.DiscountRule
	err  error
}

func (r *fakeRuleRepo) FindBestRule(ctx context.Context, shopID, productID, brandID, categoryID int64) (*domain.DiscountRule, error) {
	return r.rule, r.err
}

func TestResolveWithRule(t *testing.T) {
	svc := application.NewPricingService(&fakeRuleRepo{rule: &domain.DiscountRule{
		DiscountFor:     domain.ForProduct,
		DiscountType:    domain.TypePercent,
		DiscountPercent: 25,
	}})

	outcome, err := svc.Resolve(context.Background(), 10, 1, 5, 7, 200)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, outcome.DiscountedPrice, 1e-9)
	assert.Equal(t, 25.0, outcome.Percent)
	assert.Equal(t, "Product discount", outcome.Reason)
	assert.Equal(t, string(domain.TypePercent), outcome.DiscountType)
}

func TestResolveFixedAmount(t *testing.T) {
	svc := application.NewPricingService(&fakeRuleRepo{rule: &domain.DiscountRule{
		DiscountFor:     domain.ForBrand,
		DiscountType:    domain.TypeFixedAmount,
		DiscountedPrice: 99,
	}})

	outcome, err := svc.Resolve(context.Background(), 10, 1, 5, 7, 200)
	require.NoError(t, err)
	assert.Equal(t, 99.0, outcome.DiscountedPrice, "fixed amount ignores the base price")
	assert.Equal(t, "Brand discount", outcome.Reason)
}

func TestResolveNoRule(t *testing.T) {
	svc := application.NewPricingService(&fakeRuleRepo{})

	outcome, err := svc.Resolve(context.Background(), 10, 1, 5, 7, 200)
	require.NoError(t, err)
	assert.Equal(t, 200.0, outcome.DiscountedPrice)
	assert.Equal(t, "No Discount", outcome.Reason)
	assert.Equal(t, string(domain.TypeNone), outcome.DiscountType)
}

func TestResolveRepoError(t *testing.T) {
	svc := application.NewPricingService(&fakeRuleRepo{err: errors.New("db down")})

	_, err := svc.Resolve(context.Background(), 10, 1, 5, 7, 200)
	require.Error(t, err)
}
