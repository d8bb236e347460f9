package order

import (
	"context"
	"net/http"
	"strconv"

	"goloja/internal/api/respond"
	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/logger"
)

// OrderService define o contrato que o Handler espera da camada de Serviço.
type OrderService interface {
	GetOrders(ctx context.Context, sessionID string) ([]domain.Order, error)
	GetOrderByID(ctx context.Context, sessionID string, id int64) (domain.Order, error)
	FilterByStatus(ctx context.Context, sessionID string, status domain.OrderStatus) ([]domain.Order, error)
	SearchOrders(ctx context.Context, sessionID string, query string) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, sessionID string, id int64, status domain.OrderStatus) (domain.Order, error)
	Login(ctx context.Context, sessionID, username, password string) error
	Logout(ctx context.Context, sessionID string) error
	IsAuthenticated(ctx context.Context, sessionID string) bool
}

// Handler agrupa os métodos de Handler de pedidos e autenticação upstream.
type Handler struct {
	Service OrderService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc OrderService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// LoginHandler lida com POST /v1/auth/login.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := respond.DecodeJSON(r, &payload); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	err := h.Service.Login(r.Context(), respond.SessionID(r), payload.Username, payload.Password)
	respond.ServiceResponse(w, r, h.Logger, map[string]bool{"authenticated": err == nil}, err, http.StatusOK)
}

// LogoutHandler lida com POST /v1/auth/logout.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Logout(r.Context(), respond.SessionID(r))
	respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusNoContent)
}

// StatusHandler lida com GET /v1/auth/status.
func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	authenticated := h.Service.IsAuthenticated(r.Context(), respond.SessionID(r))
	respond.ServiceResponse(w, r, h.Logger, map[string]bool{"authenticated": authenticated}, nil, http.StatusOK)
}

// ListOrdersHandler lida com GET /v1/orders. Aceita o filtro opcional
// ?status= e a busca opcional ?q=.
func (h *Handler) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := respond.SessionID(r)

	if query := r.URL.Query().Get("q"); query != "" {
		orders, err := h.Service.SearchOrders(ctx, sessionID, query)
		respond.ServiceResponse(w, r, h.Logger, orders, err, http.StatusOK)
		return
	}

	if status := r.URL.Query().Get("status"); status != "" {
		orders, err := h.Service.FilterByStatus(ctx, sessionID, domain.OrderStatus(status))
		respond.ServiceResponse(w, r, h.Logger, orders, err, http.StatusOK)
		return
	}

	orders, err := h.Service.GetOrders(ctx, sessionID)
	respond.ServiceResponse(w, r, h.Logger, orders, err, http.StatusOK)
}

// GetOrderHandler lida com GET /v1/orders/{id}.
func (h *Handler) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	order, err := h.Service.GetOrderByID(r.Context(), respond.SessionID(r), id)
	respond.ServiceResponse(w, r, h.Logger, order, err, http.StatusOK)
}

// UpdateStatusHandler lida com PATCH /v1/orders/{id}/status.
func (h *Handler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := respond.DecodeJSON(r, &payload); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	order, err := h.Service.UpdateStatus(r.Context(), respond.SessionID(r), id, domain.OrderStatus(payload.Status))
	respond.ServiceResponse(w, r, h.Logger, order, err, http.StatusOK)
}

// pathID extrai o {id} numérico da rota.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, apperror.NewValidationError("Identificador de pedido inválido na rota.")
	}
	return id, nil
}
