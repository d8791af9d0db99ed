package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/pkg/tracing"
	"bazaar/internal/service/order/application"
	"bazaar/internal/service/order/domain"
)

// OrderHandler 封装了订单服务的 HTTP 处理器。
// 身份协作方在网关侧完成认证，这里只从请求头还原主体。
type OrderHandler struct {
	service *application.OrderApplicationService
}

func NewOrderHandler(service *application.OrderApplicationService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/orders", h.withTrace(h.ordersHandler))
	mux.HandleFunc("/orders/status", h.withTrace(h.updateStatusHandler))
	mux.HandleFunc("/orders/remind", h.withTrace(h.remindHandler))
}

// withTrace 提取上游追踪上下文并注入带 trace_id 的 logger。
func (h *OrderHandler) withTrace(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx = logger.WithTraceID(ctx, tracing.GetTraceIDFromContext(ctx))
		next(w, r.WithContext(ctx))
	}
}

// principalFromHeaders 从网关注入的请求头还原调用主体。
func principalFromHeaders(r *http.Request) (domain.Principal, bool) {
	userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || userID <= 0 {
		return domain.Principal{}, false
	}
	role := r.Header.Get("X-User-Role")
	if role == "" {
		return domain.Principal{}, false
	}
	return domain.Principal{
		UserID:               userID,
		Role:                 role,
		CanModifyOrderStatus: r.Header.Get("X-Can-Modify-Status") == "true",
	}, true
}

type cartLineDTO struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type createOrderDTO struct {
	Items            []cartLineDTO `json:"items"`
	PaymentType      string        `json:"paymentType"`
	PayslipReference string        `json:"payslipReference"`
	ShippingAddress  string        `json:"shippingAddress"`
}

func (h *OrderHandler) ordersHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createOrderHandler(w, r)
	case http.MethodGet:
		h.getOrderHandler(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *OrderHandler) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromHeaders(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	var dto createOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	lines := make([]domain.CartLine, 0, len(dto.Items))
	for _, item := range dto.Items {
		lines = append(lines, domain.CartLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	resp, err := h.service.PlaceOrder(r.Context(), &application.PlaceOrderRequest{
		Buyer:            principal,
		Lines:            lines,
		PaymentType:      dto.PaymentType,
		PayslipReference: dto.PayslipReference,
		ShippingAddress:  dto.ShippingAddress,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *OrderHandler) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("id")
	if orderID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}

type updateStatusDTO struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

func (h *OrderHandler) updateStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	principal, ok := principalFromHeaders(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	var dto updateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	err := h.service.UpdateStatus(r.Context(), &application.UpdateStatusRequest{
		Principal: principal,
		OrderID:   dto.OrderID,
		NewStatus: dto.Status,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type remindDTO struct {
	OrderID string `json:"orderId"`
}

func (h *OrderHandler) remindHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	principal, ok := principalFromHeaders(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	var dto remindDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.RemindSeller(r.Context(), principal, dto.OrderID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// writeDomainError 把领域错误映射成 HTTP 状态码。
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCartComposition),
		errors.Is(err, domain.ErrInvalidPaymentType),
		errors.Is(err, domain.ErrMissingPaymentProof),
		errors.Is(err, domain.ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrOrderNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrAlreadyTerminal):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
