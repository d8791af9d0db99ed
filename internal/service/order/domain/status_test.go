package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bazaar/internal/service/order/domain"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name   string
		from   domain.Status
		to     domain.Status
		wantOK bool
	}{
		{"main flow one step", domain.StatusPending, domain.StatusProcessing, true},
		{"main flow skip ahead", domain.StatusPending, domain.StatusDelivered, true},
		{"main flow backwards", domain.StatusShipped, domain.StatusProcessing, false},
		{"same status", domain.StatusProcessing, domain.StatusProcessing, false},
		{"cancel from pending", domain.StatusPending, domain.StatusCancelled, true},
		{"hold from shipped", domain.StatusShipped, domain.StatusOnHold, true},
		{"backorder from delivered", domain.StatusDelivered, domain.StatusBackordered, true},
		{"resume from hold", domain.StatusOnHold, domain.StatusProcessing, true},
		{"hold cannot jump to shipped", domain.StatusOnHold, domain.StatusShipped, false},
		{"hold can still be cancelled", domain.StatusOnHold, domain.StatusCancelled, true},
		{"resume from backorder", domain.StatusBackordered, domain.StatusProcessing, true},
		{"completed is terminal", domain.StatusCompleted, domain.StatusRefunded, false},
		{"cancelled is terminal", domain.StatusCancelled, domain.StatusProcessing, false},
		{"refunded is terminal", domain.StatusRefunded, domain.StatusReturned, false},
		{"failed is terminal", domain.StatusFailed, domain.StatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantOK, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTransitionTo(t *testing.T) {
	order := domain.NewOrder(1, 10, 100, domain.PaymentCashOnDelivery, "", "addr",
		[]domain.PricedLine{{ProductID: 1, Quantity: 1, UnitPrice: 10}})

	assert.NoError(t, order.TransitionTo(domain.StatusProcessing))
	assert.Equal(t, domain.StatusProcessing, order.Status)

	err := order.TransitionTo(domain.StatusPending)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.Equal(t, domain.StatusProcessing, order.Status, "failed transition must not change state")
}

func TestToStatus(t *testing.T) {
	status, err := domain.ToStatus("SHIPPED")
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, status)

	_, err = domain.ToStatus("shipped")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = domain.ToStatus("TELEPORTED")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestAuthorizeTransition(t *testing.T) {
	buyer := domain.Principal{UserID: 1, Role: domain.RoleUser}
	agent := domain.Principal{UserID: 2, Role: domain.RoleAgent}
	trustedAgent := domain.Principal{UserID: 3, Role: domain.RoleAgent, CanModifyOrderStatus: true}
	admin := domain.Principal{UserID: 4, Role: domain.RoleAdmin}

	tests := []struct {
		name      string
		principal domain.Principal
		target    domain.Status
		wantErr   error
	}{
		{"buyer cancels", buyer, domain.StatusCancelled, nil},
		{"buyer returns", buyer, domain.StatusReturned, nil},
		{"buyer completes", buyer, domain.StatusCompleted, nil},
		{"buyer cannot ship", buyer, domain.StatusShipped, domain.ErrUnauthorized},
		{"buyer cannot refund", buyer, domain.StatusRefunded, domain.ErrUnauthorized},
		{"plain agent denied", agent, domain.StatusProcessing, domain.ErrUnauthorized},
		{"trusted agent ships", trustedAgent, domain.StatusShipped, nil},
		{"admin refunds", admin, domain.StatusRefunded, nil},
		{"unknown role denied", domain.Principal{UserID: 5, Role: "ghost"}, domain.StatusCancelled, domain.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.AuthorizeTransition(tt.principal, tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
