package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/logger"
)

// Client é o cliente HTTP da API upstream (pedidos, catálogo, conteúdo).
// Ele centraliza dois comportamentos transversais, equivalentes a
// interceptors de requisição/resposta:
//
//  1. Anexa o token de acesso da sessão como credencial Bearer, quando existe.
//  2. Em uma resposta 401, tenta exatamente UM refresh do token e repete a
//     requisição original uma única vez. Se o refresh falhar, a sessão inteira
//     é limpa e o chamador recebe um erro de autorização (logout forçado).
//
// A repetição é limitada a uma por requisição original; nunca há loop.
type Client struct {
	baseURL  string // raiz dos recursos (e.g. "https://api.loja.com/api")
	authURL  string // raiz dos endpoints /token/ e /token/refresh/
	http     *http.Client
	sessions domain.SessionRepository
	logger   logger.Logger
}

// New cria o cliente da API upstream.
func New(baseURL, authURL string, timeout time.Duration, sessions domain.SessionRepository, log logger.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		authURL:  authURL,
		http:     &http.Client{Timeout: timeout},
		sessions: sessions,
		logger:   log,
	}
}

// Do executa uma requisição JSON contra a API de recursos e decodifica a
// resposta em out (que pode ser nil para respostas ignoradas).
func (c *Client) Do(ctx context.Context, sessionID, method, path string, body interface{}, out interface{}) error {
	payload, err := marshalBody(body)
	if err != nil {
		return apperror.NewInternalError("Falha ao serializar o corpo da requisição.", err)
	}

	status, data, err := c.execute(ctx, sessionID, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}

	if err := statusToError(status, path); err != nil {
		return err
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return apperror.NewNetworkError(fmt.Sprintf("Resposta inválida da API em %s.", path), err)
		}
	}
	return nil
}

// GetRaw executa um GET e retorna o corpo bruto. Usado pelos serviços de
// catálogo e conteúdo, que gravam a cópia de cache byte a byte.
func (c *Client) GetRaw(ctx context.Context, sessionID, path string) ([]byte, error) {
	status, data, err := c.execute(ctx, sessionID, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if err := statusToError(status, path); err != nil {
		return nil, err
	}
	return data, nil
}

// PostAuth executa um POST contra a raiz de autenticação (/token/,
// /token/refresh/), sem credencial Bearer e sem retry.
func (c *Client) PostAuth(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := marshalBody(body)
	if err != nil {
		return apperror.NewInternalError("Falha ao serializar o corpo da requisição.", err)
	}

	status, data, err := c.doOnce(ctx, c.authURL+path, http.MethodPost, payload, "")
	if err != nil {
		return apperror.NewNetworkError(fmt.Sprintf("Falha ao chamar %s.", path), err)
	}
	if status == http.StatusUnauthorized {
		return apperror.NewUnauthorizedError("Credenciais inválidas.")
	}
	if status >= 400 {
		return apperror.NewNetworkError(fmt.Sprintf("A API de autenticação respondeu com status %d.", status), nil)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return apperror.NewNetworkError("Resposta inválida da API de autenticação.", err)
		}
	}
	return nil
}

// execute roda a requisição com o interceptor de autorização: anexa o Bearer
// da sessão e, em 401, faz um único refresh-and-retry.
func (c *Client) execute(ctx context.Context, sessionID, method, url string, payload []byte) (int, []byte, error) {
	access := c.currentAccessToken(ctx, sessionID)

	status, data, err := c.doOnce(ctx, url, method, payload, access)
	if err != nil {
		return 0, nil, apperror.NewNetworkError(fmt.Sprintf("Falha na requisição %s %s.", method, url), err)
	}

	// 401: tentar exatamente um refresh e repetir a requisição original.
	if status == http.StatusUnauthorized && sessionID != "" {
		newAccess, refreshErr := c.refreshSession(ctx, sessionID)
		if refreshErr != nil {
			// Refresh falhou: sessão limpa, logout forçado.
			return 0, nil, refreshErr
		}

		status, data, err = c.doOnce(ctx, url, method, payload, newAccess)
		if err != nil {
			return 0, nil, apperror.NewNetworkError(fmt.Sprintf("Falha na repetição de %s %s.", method, url), err)
		}
	}

	return status, data, nil
}

// doOnce executa uma única requisição HTTP, sem retry.
func (c *Client) doOnce(ctx context.Context, url, method string, payload []byte, accessToken string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, data, nil
}

// currentAccessToken carrega o token da sessão, se houver. Falha de
// armazenamento degrada para requisição anônima.
func (c *Client) currentAccessToken(ctx context.Context, sessionID string) string {
	if sessionID == "" {
		return ""
	}
	session, found, err := c.sessions.Load(ctx, sessionID)
	if err != nil || !found {
		return ""
	}
	return session.AccessToken
}

// refreshSession troca o refresh token por um novo token de acesso e o
// persiste mantendo o restante da sessão. Se não houver refresh token ou a
// troca falhar, a sessão é limpa por inteiro.
func (c *Client) refreshSession(ctx context.Context, sessionID string) (string, error) {
	session, found, err := c.sessions.Load(ctx, sessionID)
	if err != nil || !found || session.RefreshToken == "" {
		c.sessions.Clear(ctx, sessionID)
		return "", apperror.NewUnauthorizedError("Sessão expirada. Faça login para continuar.")
	}

	var refreshResp struct {
		Access string `json:"access"`
	}
	err = c.PostAuth(ctx, "/token/refresh/", map[string]string{"refresh": session.RefreshToken}, &refreshResp)
	if err != nil || refreshResp.Access == "" {
		c.logger.Warn("Refresh de token falhou. Limpando sessão.", map[string]interface{}{"session_id": sessionID})
		c.sessions.Clear(ctx, sessionID)
		return "", apperror.NewUnauthorizedError("Sessão expirada. Faça login para continuar.")
	}

	session.AccessToken = refreshResp.Access
	if saveErr := c.sessions.Save(ctx, sessionID, session); saveErr != nil {
		c.logger.Warn("Falha ao persistir token renovado.", map[string]interface{}{"session_id": sessionID})
	}

	c.logger.Debug("Token de acesso renovado com sucesso.", map[string]interface{}{"session_id": sessionID})
	return refreshResp.Access, nil
}

func marshalBody(body interface{}) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	return json.Marshal(body)
}

// statusToError traduz o status HTTP upstream para o erro tipado da aplicação.
func statusToError(status int, path string) error {
	switch {
	case status == http.StatusUnauthorized:
		return apperror.NewUnauthorizedError("Não autorizado pela API. Faça login para continuar.")
	case status == http.StatusNotFound:
		return apperror.NewNotFoundError(fmt.Sprintf("Recurso %s não encontrado na API.", path))
	case status >= 400:
		return apperror.NewNetworkError(fmt.Sprintf("A API respondeu com status %d em %s.", status, path), nil)
	}
	return nil
}
