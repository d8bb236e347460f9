package checkout

import (
	"context"
	"net/http"

	"goloja/internal/api/respond"
	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/logger"
	"goloja/internal/pkg/middleware"
	"goloja/internal/service/checkoutservice"
)

// CheckoutService define o contrato que o Handler espera do orquestrador.
type CheckoutService interface {
	Checkout(ctx context.Context, sessionID string, shipping domain.ShippingData, user domain.CheckoutUser) (checkoutservice.Result, error)
	LoadDraft(ctx context.Context, sessionID string) (domain.CheckoutDraft, bool, error)
	Abandon(ctx context.Context, sessionID string) error
	AttemptsByEmail(ctx context.Context, email string) ([]domain.CheckoutAttempt, error)
}

// UserProvider entrega o comprador logado da sessão (login Google).
type UserProvider interface {
	CurrentUser(ctx context.Context, sessionID string) (domain.UserProfile, bool, error)
}

// Handler agrupa os métodos de Handler do checkout.
type Handler struct {
	Service CheckoutService
	Users   UserProvider
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando as dependências.
func NewHandler(svc CheckoutService, users UserProvider, log logger.Logger) *Handler {
	return &Handler{Service: svc, Users: users, Logger: log}
}

// CheckoutHandler lida com POST /v1/checkout: roda o pipeline e responde com
// 303 See Other apontando para o checkout hospedado, com o resultado no corpo
// para clientes que preferem seguir o redirecionamento por conta própria.
func (h *Handler) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := respond.SessionID(r)

	var payload struct {
		Shipping domain.ShippingData `json:"shipping"`
	}
	if err := respond.DecodeJSON(r, &payload); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	profile, found, err := h.Users.CurrentUser(ctx, sessionID)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}
	if !found {
		respond.ServiceResponse(w, r, h.Logger, nil, apperror.NewValidationError("Faça login para concluir a compra."), 0)
		return
	}

	user := domain.CheckoutUser{Name: profile.Name, Email: profile.Email}
	result, err := h.Service.Checkout(ctx, sessionID, payload.Shipping, user)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	w.Header().Set("Location", result.RedirectURL)
	respond.ServiceResponse(w, r, h.Logger, result, nil, http.StatusSeeOther)
}

// GetDraftHandler lida com GET /v1/checkout/draft.
func (h *Handler) GetDraftHandler(w http.ResponseWriter, r *http.Request) {
	draft, found, err := h.Service.LoadDraft(r.Context(), respond.SessionID(r))
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}
	if !found {
		respond.ServiceResponse(w, r, h.Logger, nil, apperror.NewNotFoundError("Nenhum checkout em recuperação."), 0)
		return
	}
	respond.ServiceResponse(w, r, h.Logger, draft, nil, http.StatusOK)
}

// ListAttemptsHandler lida com GET /v1/checkout/attempts: o histórico de
// tentativas do comprador logado, extraído das claims do JWT de sessão.
func (h *Handler) ListAttemptsHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		respond.ServiceResponse(w, r, h.Logger, nil, apperror.NewUnauthorizedError("Faça login para consultar o histórico."), 0)
		return
	}

	attempts, err := h.Service.AttemptsByEmail(r.Context(), claims.Email)
	respond.ServiceResponse(w, r, h.Logger, attempts, err, http.StatusOK)
}

// AbandonDraftHandler lida com DELETE /v1/checkout/draft.
func (h *Handler) AbandonDraftHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Abandon(r.Context(), respond.SessionID(r))
	respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusNoContent)
}
