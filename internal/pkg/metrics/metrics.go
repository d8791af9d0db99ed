package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersAdmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_orders_admitted_total",
		Help: "Orders that passed validation, stock reservation and persistence.",
	})

	OrdersRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bazaar_orders_rejected_total",
		Help: "Order admissions rejected, by reason.",
	}, []string{"reason"})

	StockConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_stock_conflicts_total",
		Help: "Reservations rolled back because some item ran out of stock.",
	})

	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bazaar_order_status_transitions_total",
		Help: "Successful order status transitions, by target status.",
	}, []string{"status"})

	NotificationsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_notifications_dispatched_total",
		Help: "Notification rows persisted by the fan-out worker.",
	})

	PushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_push_failures_total",
		Help: "Per-token push deliveries that failed (best effort, logged only).",
	})

	InvoiceFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_invoice_render_failures_total",
		Help: "Invoice renders that failed; orders stay valid regardless.",
	})
)
