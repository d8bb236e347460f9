package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/kvstore"
	"goloja/internal/pkg/logger"
	"goloja/internal/pkg/token"
)

// Endpoint fixo de userinfo do Google OAuth2.
const userinfoEndpoint = "https://www.googleapis.com/oauth2/v3/userinfo"

// Chaves de persistência do login Google por sessão.
const (
	profileKeyFmt = "googleUser_%s"
	gtokenKeyFmt  = "googleToken_%s"
)

// Service troca o token de acesso do Google pelo perfil do usuário, persiste
// perfil e token por sessão e emite o JWT de sessão local usado pelas rotas
// protegidas do storefront.
type Service struct {
	http        *http.Client
	store       kvstore.Client
	tokens      token.TokenService
	adminEmails map[string]bool
	logger      logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Login Google.
// adminEmails lista os e-mails que recebem o papel de administrador.
func NewService(store kvstore.Client, tokens token.TokenService, adminEmails []string, timeout time.Duration, log logger.Logger) *Service {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = true
		}
	}

	return &Service{
		http:        &http.Client{Timeout: timeout},
		store:       store,
		tokens:      tokens,
		adminEmails: admins,
		logger:      log,
	}
}

// Login troca o token de acesso do Google pelo perfil do usuário, persiste os
// dois por sessão e retorna o perfil junto com o JWT de sessão local.
func (s *Service) Login(ctx context.Context, sessionID, googleAccessToken string) (domain.UserProfile, string, error) {
	if sessionID == "" {
		return domain.UserProfile{}, "", apperror.NewValidationError("Identificador de sessão é obrigatório.")
	}
	if googleAccessToken == "" {
		return domain.UserProfile{}, "", apperror.NewValidationError("Token de acesso do Google é obrigatório.")
	}

	profile, err := s.fetchProfile(ctx, googleAccessToken)
	if err != nil {
		s.logger.Error("Falha ao obter perfil do Google.", err)
		return domain.UserProfile{}, "", err
	}

	profile.Role = domain.RoleCustomer
	if s.adminEmails[strings.ToLower(profile.Email)] {
		profile.Role = domain.RoleAdmin
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		return domain.UserProfile{}, "", apperror.NewInternalError("Falha ao serializar o perfil do usuário.", err)
	}
	if err := s.store.Set(ctx, fmt.Sprintf(profileKeyFmt, sessionID), string(raw), 0); err != nil {
		return domain.UserProfile{}, "", apperror.NewInternalError("Falha ao persistir o perfil do usuário.", err)
	}
	if err := s.store.Set(ctx, fmt.Sprintf(gtokenKeyFmt, sessionID), googleAccessToken, 0); err != nil {
		s.logger.Warn("Falha ao persistir o token do Google.", map[string]interface{}{"session_id": sessionID})
	}

	sessionJWT, err := s.tokens.GenerateToken(profile.Sub, profile.Email, string(profile.Role))
	if err != nil {
		return domain.UserProfile{}, "", apperror.NewInternalError("Falha ao emitir o token de sessão.", err)
	}

	s.logger.Info("Login com Google realizado.", map[string]interface{}{"session_id": sessionID, "email": profile.Email, "role": string(profile.Role)})
	return profile, sessionJWT, nil
}

// CurrentUser retorna o perfil persistido da sessão. O booleano indica se há
// usuário logado.
func (s *Service) CurrentUser(ctx context.Context, sessionID string) (domain.UserProfile, bool, error) {
	if sessionID == "" {
		return domain.UserProfile{}, false, nil
	}

	raw, err := s.store.Get(ctx, fmt.Sprintf(profileKeyFmt, sessionID))
	if err == kvstore.ErrNotFound {
		return domain.UserProfile{}, false, nil
	}
	if err != nil {
		s.logger.Warn("Falha ao ler o perfil persistido. Tratando como deslogado.", map[string]interface{}{"session_id": sessionID})
		return domain.UserProfile{}, false, nil
	}

	var profile domain.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		// Perfil corrompido não é recuperável: descartar.
		s.store.Delete(ctx, fmt.Sprintf(profileKeyFmt, sessionID))
		return domain.UserProfile{}, false, nil
	}

	return profile, true, nil
}

// Logout descarta o perfil e o token do Google da sessão.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.store.Delete(ctx, fmt.Sprintf(profileKeyFmt, sessionID)); err != nil {
		return apperror.NewInternalError("Falha ao encerrar a sessão do Google.", err)
	}
	s.store.Delete(ctx, fmt.Sprintf(gtokenKeyFmt, sessionID))
	return nil
}

// fetchProfile consulta o endpoint de userinfo do Google com o token de acesso.
func (s *Service) fetchProfile(ctx context.Context, accessToken string) (domain.UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userinfoEndpoint, nil)
	if err != nil {
		return domain.UserProfile{}, apperror.NewInternalError("Falha ao montar a requisição ao Google.", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.http.Do(req)
	if err != nil {
		return domain.UserProfile{}, apperror.NewNetworkError("Falha ao consultar o userinfo do Google.", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return domain.UserProfile{}, apperror.NewUnauthorizedError("Token do Google inválido ou expirado.")
	}
	if resp.StatusCode >= 400 {
		return domain.UserProfile{}, apperror.NewNetworkError(fmt.Sprintf("O Google respondeu com status %d.", resp.StatusCode), nil)
	}

	var profile domain.UserProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return domain.UserProfile{}, apperror.NewNetworkError("Resposta de userinfo inválida.", err)
	}
	if profile.Email == "" {
		return domain.UserProfile{}, apperror.NewNetworkError("Perfil do Google sem e-mail.", nil)
	}

	return profile, nil
}
