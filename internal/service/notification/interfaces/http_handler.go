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
	"bazaar/internal/service/notification/application"
	"bazaar/internal/service/notification/domain"
)

// NotificationHandler 暴露收件箱查询和状态变更接口。
// 认证在网关完成，这里只认 X-User-ID。
type NotificationHandler struct {
	dispatcher *application.Dispatcher
}

func NewNotificationHandler(dispatcher *application.Dispatcher) *NotificationHandler {
	return &NotificationHandler{dispatcher: dispatcher}
}

func (h *NotificationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/notifications", h.withTrace(h.listHandler))
	mux.HandleFunc("/notifications/status", h.withTrace(h.updateStatusHandler))
}

func (h *NotificationHandler) withTrace(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx = logger.WithTraceID(ctx, tracing.GetTraceIDFromContext(ctx))
		next(w, r.WithContext(ctx))
	}
}

func recipientFromHeaders(r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

type notificationDTO struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	OrderID   string `json:"orderId,omitempty"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Payload   string `json:"payload,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

func (h *NotificationHandler) listHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	recipientID, ok := recipientFromHeaders(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	notifications, err := h.dispatcher.ListInbox(r.Context(), recipientID, limit)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	out := make([]notificationDTO, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationDTO{
			ID:        n.ID,
			Event:     n.Event,
			OrderID:   n.OrderID,
			Title:     n.Title,
			Message:   n.Message,
			Payload:   n.Payload,
			Status:    string(n.Status),
			CreatedAt: n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

type updateStatusDTO struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (h *NotificationHandler) updateStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	recipientID, ok := recipientFromHeaders(r)
	if !ok {
		http.Error(w, "missing principal", http.StatusUnauthorized)
		return
	}

	var dto updateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	err := h.dispatcher.MarkStatus(r.Context(), dto.ID, recipientID, dto.Status)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, domain.ErrInvalidStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotificationNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		logger.Ctx(r.Context()).Error().Err(err).Msg("更新通知状态失败")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
