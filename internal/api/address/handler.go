package address

import (
	"context"
	"net/http"

	"goloja/internal/api/respond"
	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/logger"
	"goloja/internal/pkg/moeda"
)

// AddressService define o contrato que o Handler espera da camada de Serviço.
type AddressService interface {
	Save(ctx context.Context, userID string, address domain.Address) error
	Load(ctx context.Context, userID string) (domain.Address, bool, error)
	Remove(ctx context.Context, userID string) error
	FormatCEP(raw string) string
	CalculateShipping(cep string, subtotal float64) float64
	FormatDisplay(address domain.Address) string
}

// Handler agrupa os métodos de Handler de endereço e frete.
type Handler struct {
	Service AddressService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc AddressService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// GetAddressHandler lida com GET /v1/address.
func (h *Handler) GetAddressHandler(w http.ResponseWriter, r *http.Request) {
	addr, found, err := h.Service.Load(r.Context(), respond.SessionID(r))
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}
	if !found {
		respond.ServiceResponse(w, r, h.Logger, nil, apperror.NewNotFoundError("Nenhum endereço salvo."), 0)
		return
	}

	payload := map[string]interface{}{
		"address": addr,
		"display": h.Service.FormatDisplay(addr),
	}
	respond.ServiceResponse(w, r, h.Logger, payload, nil, http.StatusOK)
}

// SaveAddressHandler lida com PUT /v1/address. O CEP é normalizado antes da
// validação e o endereço anterior é substituído por inteiro.
func (h *Handler) SaveAddressHandler(w http.ResponseWriter, r *http.Request) {
	var addr domain.Address
	if err := respond.DecodeJSON(r, &addr); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	addr.CEP = h.Service.FormatCEP(addr.CEP)

	err := h.Service.Save(r.Context(), respond.SessionID(r), addr)
	respond.ServiceResponse(w, r, h.Logger, addr, err, http.StatusOK)
}

// RemoveAddressHandler lida com DELETE /v1/address.
func (h *Handler) RemoveAddressHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Remove(r.Context(), respond.SessionID(r))
	respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusNoContent)
}

// QuoteShippingHandler lida com POST /v1/shipping/quote: calcula o frete a
// partir do CEP e do subtotal informados.
func (h *Handler) QuoteShippingHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CEP      string  `json:"cep"`
		Subtotal float64 `json:"subtotal"`
	}
	if err := respond.DecodeJSON(r, &payload); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	cep := h.Service.FormatCEP(payload.CEP)
	cost := h.Service.CalculateShipping(cep, payload.Subtotal)

	quote := map[string]interface{}{
		"cep":                   cep,
		"shipping_cost":         cost,
		"shipping_cost_display": moeda.FormatPreco(cost),
	}
	respond.ServiceResponse(w, r, h.Logger, quote, nil, http.StatusOK)
}
