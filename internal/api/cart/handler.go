package cart

import (
	"context"
	"net/http"
	"strconv"

	"goloja/internal/api/respond"
	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/logger"
	"goloja/internal/pkg/moeda"
)

// CartService define o contrato que o Handler espera da camada de Serviço.
type CartService interface {
	Items(ctx context.Context, sessionID string) ([]domain.CartItem, error)
	Add(ctx context.Context, sessionID string, product domain.CartItem, quantity int) ([]domain.CartItem, error)
	Remove(ctx context.Context, sessionID string, productID int64) ([]domain.CartItem, error)
	UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) ([]domain.CartItem, error)
	Increment(ctx context.Context, sessionID string, productID int64) ([]domain.CartItem, error)
	Decrement(ctx context.Context, sessionID string, productID int64) ([]domain.CartItem, error)
	Clear(ctx context.Context, sessionID string) error
	Subtotal(ctx context.Context, sessionID string) (float64, error)
	ItemCount(ctx context.Context, sessionID string) (int, error)
	UniqueCount(ctx context.Context, sessionID string) (int, error)
}

// Handler agrupa os métodos de Handler do carrinho.
type Handler struct {
	Service CartService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CartService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// GetCartHandler lida com GET /v1/cart.
func (h *Handler) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Items(r.Context(), respond.SessionID(r))
	respond.ServiceResponse(w, r, h.Logger, items, err, http.StatusOK)
}

// AddItemHandler lida com POST /v1/cart/items.
func (h *Handler) AddItemHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Product  domain.CartItem `json:"product"`
		Quantity int             `json:"quantity"`
	}
	if err := respond.DecodeJSON(r, &payload); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	items, err := h.Service.Add(r.Context(), respond.SessionID(r), payload.Product, payload.Quantity)
	respond.ServiceResponse(w, r, h.Logger, items, err, http.StatusCreated)
}

// UpdateItemHandler lida com PUT /v1/cart/items/{id}.
func (h *Handler) UpdateItemHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	var payload struct {
		Quantity int `json:"quantity"`
	}
	if err := respond.DecodeJSON(r, &payload); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	items, err := h.Service.UpdateQuantity(r.Context(), respond.SessionID(r), productID, payload.Quantity)
	respond.ServiceResponse(w, r, h.Logger, items, err, http.StatusOK)
}

// RemoveItemHandler lida com DELETE /v1/cart/items/{id}.
func (h *Handler) RemoveItemHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	items, err := h.Service.Remove(r.Context(), respond.SessionID(r), productID)
	respond.ServiceResponse(w, r, h.Logger, items, err, http.StatusOK)
}

// IncrementHandler lida com POST /v1/cart/items/{id}/increment.
func (h *Handler) IncrementHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	items, err := h.Service.Increment(r.Context(), respond.SessionID(r), productID)
	respond.ServiceResponse(w, r, h.Logger, items, err, http.StatusOK)
}

// DecrementHandler lida com POST /v1/cart/items/{id}/decrement.
func (h *Handler) DecrementHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	items, err := h.Service.Decrement(r.Context(), respond.SessionID(r), productID)
	respond.ServiceResponse(w, r, h.Logger, items, err, http.StatusOK)
}

// ClearCartHandler lida com DELETE /v1/cart.
func (h *Handler) ClearCartHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Clear(r.Context(), respond.SessionID(r))
	respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusNoContent)
}

// SummaryHandler lida com GET /v1/cart/summary: subtotal e contagens em uma
// só resposta, para o cabeçalho do storefront.
func (h *Handler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := respond.SessionID(r)

	subtotal, err := h.Service.Subtotal(ctx, sessionID)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}
	itemCount, err := h.Service.ItemCount(ctx, sessionID)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}
	uniqueCount, err := h.Service.UniqueCount(ctx, sessionID)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	summary := map[string]interface{}{
		"subtotal":         subtotal,
		"subtotal_display": moeda.FormatPreco(subtotal),
		"item_count":       itemCount,
		"unique_count":     uniqueCount,
	}
	respond.ServiceResponse(w, r, h.Logger, summary, nil, http.StatusOK)
}

// pathID extrai o {id} numérico da rota.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, apperror.NewValidationError("Identificador de produto inválido na rota.")
	}
	return id, nil
}
