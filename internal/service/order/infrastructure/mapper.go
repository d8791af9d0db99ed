package infrastructure

import (
	"database/sql"
	"fmt"

	"bazaar/internal/service/order/domain"
)

func toOrderModel(o *domain.Order) OrderModel {
	model := OrderModel{
		ID:               o.ID,
		BuyerID:          o.BuyerID,
		ShopID:           o.ShopID,
		CurrencyID:       o.CurrencyID,
		PaymentType:      string(o.PaymentType),
		PayslipReference: o.PayslipReference,
		Status:           string(o.Status),
		OrderTotal:       o.OrderTotal,
		ShippingAddress:  o.ShippingAddress,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
	if o.InvoiceURL != "" {
		model.InvoiceURL = sql.NullString{String: o.InvoiceURL, Valid: true}
	}
	for _, item := range o.Items {
		model.Items = append(model.Items, OrderItemModel{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal(),
		})
	}
	return model
}

func toDomainOrder(model OrderModel) (*domain.Order, error) {
	status, err := domain.ToStatus(model.Status)
	if err != nil {
		return nil, fmt.Errorf("order %s has unknown status %q", model.ID, model.Status)
	}
	paymentType, err := domain.ToPaymentType(model.PaymentType)
	if err != nil {
		return nil, fmt.Errorf("order %s has unknown payment type %q", model.ID, model.PaymentType)
	}

	o := &domain.Order{
		ID:               model.ID,
		BuyerID:          model.BuyerID,
		ShopID:           model.ShopID,
		CurrencyID:       model.CurrencyID,
		PaymentType:      paymentType,
		PayslipReference: model.PayslipReference,
		Status:           status,
		OrderTotal:       model.OrderTotal,
		ShippingAddress:  model.ShippingAddress,
		InvoiceURL:       model.InvoiceURL.String,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
	for _, item := range model.Items {
		o.Items = append(o.Items, domain.OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return o, nil
}
