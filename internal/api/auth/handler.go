package auth

import (
	"context"
	"net/http"

	"goloja/internal/api/respond"
	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/logger"
)

// GoogleAuthService define o contrato que o Handler espera do adaptador de
// login com Google.
type GoogleAuthService interface {
	Login(ctx context.Context, sessionID, googleAccessToken string) (domain.UserProfile, string, error)
	CurrentUser(ctx context.Context, sessionID string) (domain.UserProfile, bool, error)
	Logout(ctx context.Context, sessionID string) error
}

// Handler agrupa os métodos de Handler do login com Google.
type Handler struct {
	Service GoogleAuthService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc GoogleAuthService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// GoogleLoginHandler lida com POST /v1/auth/google: recebe o token de acesso
// do Google, retorna o perfil e o token de sessão local.
func (h *Handler) GoogleLoginHandler(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := respond.DecodeJSON(r, &payload); err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	profile, sessionToken, err := h.Service.Login(r.Context(), respond.SessionID(r), payload.AccessToken)
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}

	response := map[string]interface{}{
		"user":          profile,
		"session_token": sessionToken,
	}
	respond.ServiceResponse(w, r, h.Logger, response, nil, http.StatusOK)
}

// MeHandler lida com GET /v1/auth/me.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	profile, found, err := h.Service.CurrentUser(r.Context(), respond.SessionID(r))
	if err != nil {
		respond.ServiceResponse(w, r, h.Logger, nil, err, 0)
		return
	}
	if !found {
		respond.ServiceResponse(w, r, h.Logger, nil, apperror.NewUnauthorizedError("Nenhum usuário logado."), 0)
		return
	}
	respond.ServiceResponse(w, r, h.Logger, profile, nil, http.StatusOK)
}

// GoogleLogoutHandler lida com POST /v1/auth/google/logout.
func (h *Handler) GoogleLogoutHandler(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Logout(r.Context(), respond.SessionID(r))
	respond.ServiceResponse(w, r, h.Logger, nil, err, http.StatusNoContent)
}
