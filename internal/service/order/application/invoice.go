package application

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/pkg/metrics"
	"bazaar/internal/service/order/domain"
)

// 发票模板渲染成 HTML 后交给外部渲染协作方转成文档。
var invoiceTmpl = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Invoice {{.Order.ID}}</title></head>
<body>
<h1>Invoice</h1>
<p>Order: {{.Order.ID}}</p>
<p>Buyer: #{{.Order.BuyerID}}</p>
<p>Seller (shop): #{{.Order.ShopID}}</p>
<p>Payment: {{.Order.PaymentType}}</p>
<p>Ship to: {{.Order.ShippingAddress}}</p>
<table border="1" cellspacing="0" cellpadding="4">
<tr><th>Product</th><th>Qty</th><th>Unit price</th><th>Line total</th></tr>
{{range .Order.Items}}<tr><td>#{{.ProductID}}</td><td>{{.Quantity}}</td><td>{{printf "%.2f" .UnitPrice}}</td><td>{{printf "%.2f" .LineTotal}}</td></tr>
{{end}}</table>
<p><strong>Total: {{printf "%.2f" .Order.OrderTotal}}</strong></p>
</body>
</html>`))

// fireInvoiceGeneration 在准入成功后提交一次发票渲染。
// 渲染失败只记日志，订单照常有效，也不会自动重试。
func (s *OrderApplicationService) fireInvoiceGeneration(order *domain.Order) {
	s.executor.Submit("invoice-render", func(ctx context.Context) error {
		if err := s.generateInvoice(ctx, order); err != nil {
			metrics.InvoiceFailures.Inc()
			return err
		}
		return nil
	})
}

func (s *OrderApplicationService) generateInvoice(ctx context.Context, order *domain.Order) error {
	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, struct{ Order *domain.Order }{order}); err != nil {
		return fmt.Errorf("invoiceTmpl.Execute: %w", err)
	}

	url, err := s.renderer.RenderPDF(ctx, buf.String())
	if err != nil {
		return fmt.Errorf("renderer.RenderPDF: %w", err)
	}

	if err := s.orderRepo.SetInvoiceURL(ctx, order.ID, url); err != nil {
		return fmt.Errorf("orderRepo.SetInvoiceURL: %w", err)
	}

	// 买家在线的话实时收到发票链接，失败同样只记日志
	payload := map[string]any{"orderId": order.ID, "invoiceUrl": url}
	if err := s.bus.Emit(ctx, domain.EventInvoiceReady, []int64{order.BuyerID}, payload); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("order_id", order.ID).Msg("realtime emit failed")
	}

	logger.Ctx(ctx).Info().Str("order_id", order.ID).Str("invoice_url", url).Msg("invoice attached")
	return nil
}
