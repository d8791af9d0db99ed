package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bazaar/internal/service/order/domain"
)

func catalogFixture() map[int64]domain.ProductPricing {
	return map[int64]domain.ProductPricing{
		1: {ProductID: 1, ShopID: 10, CurrencyID: 100, BrandID: 5, CategoryID: 7, BasePrice: 50},
		2: {ProductID: 2, ShopID: 10, CurrencyID: 100, BrandID: 5, CategoryID: 7, BasePrice: 30},
		3: {ProductID: 3, ShopID: 20, CurrencyID: 100, BrandID: 6, CategoryID: 8, BasePrice: 80},
		4: {ProductID: 4, ShopID: 10, CurrencyID: 200, BrandID: 5, CategoryID: 7, BasePrice: 40},
	}
}

func TestValidateCart(t *testing.T) {
	products := catalogFixture()

	tests := []struct {
		name        string
		lines       []domain.CartLine
		paymentType domain.PaymentType
		payslipRef  string
		wantErr     error
	}{
		{
			name:        "single shop single currency with payslip",
			lines:       []domain.CartLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
			paymentType: domain.PaymentFullPrepaid,
			payslipRef:  "slip-1",
		},
		{
			name:        "cash on delivery needs no payslip",
			lines:       []domain.CartLine{{ProductID: 1, Quantity: 1}},
			paymentType: domain.PaymentCashOnDelivery,
		},
		{
			name:        "empty cart",
			lines:       nil,
			paymentType: domain.PaymentFullPrepaid,
			payslipRef:  "slip-1",
			wantErr:     domain.ErrInvalidCartComposition,
		},
		{
			name:        "zero quantity",
			lines:       []domain.CartLine{{ProductID: 1, Quantity: 0}},
			paymentType: domain.PaymentFullPrepaid,
			payslipRef:  "slip-1",
			wantErr:     domain.ErrInvalidCartComposition,
		},
		{
			name:        "unknown product",
			lines:       []domain.CartLine{{ProductID: 99, Quantity: 1}},
			paymentType: domain.PaymentFullPrepaid,
			payslipRef:  "slip-1",
			wantErr:     domain.ErrInvalidCartComposition,
		},
		{
			name:        "items from two shops",
			lines:       []domain.CartLine{{ProductID: 1, Quantity: 1}, {ProductID: 3, Quantity: 1}},
			paymentType: domain.PaymentFullPrepaid,
			payslipRef:  "slip-1",
			wantErr:     domain.ErrInvalidCartComposition,
		},
		{
			name:        "mixed currencies within one shop",
			lines:       []domain.CartLine{{ProductID: 1, Quantity: 1}, {ProductID: 4, Quantity: 1}},
			paymentType: domain.PaymentFullPrepaid,
			payslipRef:  "slip-1",
			wantErr:     domain.ErrInvalidCartComposition,
		},
		{
			name:        "unknown payment type",
			lines:       []domain.CartLine{{ProductID: 1, Quantity: 1}},
			paymentType: domain.PaymentType("BARTER"),
			payslipRef:  "slip-1",
			wantErr:     domain.ErrInvalidPaymentType,
		},
		{
			name:        "prepaid without payslip",
			lines:       []domain.CartLine{{ProductID: 1, Quantity: 1}},
			paymentType: domain.PaymentHalfPrepaid,
			wantErr:     domain.ErrMissingPaymentProof,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidateCart(tt.lines, tt.paymentType, tt.payslipRef, products)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewOrderSnapshotsPrices(t *testing.T) {
	lines := []domain.PricedLine{
		{ProductID: 1, Quantity: 2, UnitPrice: 45},
		{ProductID: 2, Quantity: 1, UnitPrice: 30},
	}
	order := domain.NewOrder(7, 10, 100, domain.PaymentFullPrepaid, "slip-1", "12 Main St", lines)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Len(t, order.Items, 2)
	assert.InDelta(t, 120.0, order.OrderTotal, 1e-9)
	for _, item := range order.Items {
		assert.Equal(t, order.ID, item.OrderID)
		assert.NotEmpty(t, item.ID)
	}
}
