package orderservice

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/logger"
)

// Tempo máximo da requisição de login. Estourado o prazo, o login é tratado
// como falha de rede.
const loginTimeout = 10 * time.Second

// Validade fixa do token de acesso emitido no login.
const accessTokenTTL = time.Hour

// APIClient define o contrato que o Serviço de Pedidos espera do cliente da
// API upstream. O cliente concreto anexa o Bearer da sessão e faz o único
// refresh-and-retry em 401.
type APIClient interface {
	Do(ctx context.Context, sessionID, method, path string, body interface{}, out interface{}) error
	PostAuth(ctx context.Context, path string, body interface{}, out interface{}) error
}

// Service implementa as operações autenticadas contra a API de pedidos.
// Toda operação exige um token de acesso presente; a ausência falha
// imediatamente, antes de qualquer chamada de rede.
type Service struct {
	api      APIClient
	sessions domain.SessionRepository
	logger   logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Pedidos.
func NewService(api APIClient, sessions domain.SessionRepository, log logger.Logger) *Service {
	return &Service{
		api:      api,
		sessions: sessions,
		logger:   log,
	}
}

// checkAuth verifica a PRESENÇA do token de acesso, sem olhar a expiração:
// um token vencido ainda vai à rede, toma 401 e é renovado silenciosamente
// pelo cliente da API. A expiração só derruba a sessão em IsAuthenticated.
func (s *Service) checkAuth(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperror.NewUnauthorizedError("Faça login para continuar.")
	}

	session, found, err := s.sessions.Load(ctx, sessionID)
	if err != nil || !found || session.AccessToken == "" {
		return apperror.NewUnauthorizedError("Faça login para continuar.")
	}
	return nil
}

// GetOrders lista os pedidos do usuário autenticado.
func (s *Service) GetOrders(ctx context.Context, sessionID string) ([]domain.Order, error) {
	if err := s.checkAuth(ctx, sessionID); err != nil {
		return nil, err
	}

	var orders []domain.Order
	if err := s.api.Do(ctx, sessionID, "GET", "/orders/", nil, &orders); err != nil {
		s.logger.Error("Falha ao buscar pedidos.", err)
		return nil, err
	}
	return orders, nil
}

// GetOrderByID busca um pedido pelo identificador.
func (s *Service) GetOrderByID(ctx context.Context, sessionID string, id int64) (domain.Order, error) {
	if err := s.checkAuth(ctx, sessionID); err != nil {
		return domain.Order{}, err
	}

	var order domain.Order
	if err := s.api.Do(ctx, sessionID, "GET", fmt.Sprintf("/orders/%d", id), nil, &order); err != nil {
		s.logger.Error(fmt.Sprintf("Falha ao buscar pedido %d.", id), err)
		return domain.Order{}, err
	}
	return order, nil
}

// FilterByStatus lista os pedidos com um status específico.
func (s *Service) FilterByStatus(ctx context.Context, sessionID string, status domain.OrderStatus) ([]domain.Order, error) {
	if err := s.checkAuth(ctx, sessionID); err != nil {
		return nil, err
	}
	if !domain.ValidOrderStatus(status) {
		return nil, apperror.NewValidationError(fmt.Sprintf("Status de pedido desconhecido: %s.", status))
	}

	var orders []domain.Order
	path := "/orders?status=" + url.QueryEscape(string(status))
	if err := s.api.Do(ctx, sessionID, "GET", path, nil, &orders); err != nil {
		s.logger.Error(fmt.Sprintf("Falha ao filtrar pedidos por status %s.", status), err)
		return nil, err
	}
	return orders, nil
}

// SearchOrders busca pedidos por texto livre.
func (s *Service) SearchOrders(ctx context.Context, sessionID string, query string) ([]domain.Order, error) {
	if err := s.checkAuth(ctx, sessionID); err != nil {
		return nil, err
	}

	var orders []domain.Order
	path := "/orders/search?q=" + url.QueryEscape(query)
	if err := s.api.Do(ctx, sessionID, "GET", path, nil, &orders); err != nil {
		s.logger.Error("Falha na busca de pedidos.", err)
		return nil, err
	}
	return orders, nil
}

// UpdateStatus aplica uma transição de status como atualização parcial
// (PATCH apenas do campo status).
func (s *Service) UpdateStatus(ctx context.Context, sessionID string, id int64, status domain.OrderStatus) (domain.Order, error) {
	if err := s.checkAuth(ctx, sessionID); err != nil {
		return domain.Order{}, err
	}
	if !domain.ValidOrderStatus(status) {
		return domain.Order{}, apperror.NewValidationError(fmt.Sprintf("Status de pedido desconhecido: %s.", status))
	}

	var order domain.Order
	body := map[string]string{"status": string(status)}
	if err := s.api.Do(ctx, sessionID, "PATCH", fmt.Sprintf("/orders/%d/", id), body, &order); err != nil {
		s.logger.Error(fmt.Sprintf("Falha ao atualizar status do pedido %d para %s.", id, status), err)
		return domain.Order{}, err
	}

	s.logger.Info("Status de pedido atualizado.", map[string]interface{}{"order_id": id, "status": string(status)})
	return order, nil
}

// Atalhos para as transições usadas pelo storefront.

func (s *Service) ProcessOrder(ctx context.Context, sessionID string, id int64) (domain.Order, error) {
	return s.UpdateStatus(ctx, sessionID, id, domain.OrderStatusProcessing)
}

func (s *Service) CancelOrder(ctx context.Context, sessionID string, id int64) (domain.Order, error) {
	return s.UpdateStatus(ctx, sessionID, id, domain.OrderStatusCancelled)
}

func (s *Service) ShipOrder(ctx context.Context, sessionID string, id int64) (domain.Order, error) {
	return s.UpdateStatus(ctx, sessionID, id, domain.OrderStatusShipped)
}

func (s *Service) CompleteOrder(ctx context.Context, sessionID string, id int64) (domain.Order, error) {
	return s.UpdateStatus(ctx, sessionID, id, domain.OrderStatusCompleted)
}

// CreateOrder envia a criação de pedido do checkout à API e retorna o
// identificador do pedido criado, quando a API o informa.
func (s *Service) CreateOrder(ctx context.Context, sessionID string, req domain.OrderRequest) (string, error) {
	// A criação de pedido participa do checkout, que já validou o usuário.
	// Aqui exigimos apenas a sessão para o Bearer.
	var resp struct {
		ID      int64  `json:"id"`
		OrderID string `json:"orderId"`
	}
	if err := s.api.Do(ctx, sessionID, "POST", "/orders/", req, &resp); err != nil {
		return "", err
	}

	if resp.OrderID != "" {
		return resp.OrderID, nil
	}
	if resp.ID != 0 {
		return strconv.FormatInt(resp.ID, 10), nil
	}
	return "", nil
}

// Login troca usuário e senha por um par de tokens e persiste a sessão de
// forma atômica: os três valores (access, refresh e expiração de uma hora)
// são gravados juntos ou o login é considerado falho. A requisição tem prazo
// máximo de dez segundos.
func (s *Service) Login(ctx context.Context, sessionID, username, password string) error {
	if sessionID == "" {
		return apperror.NewValidationError("Identificador de sessão é obrigatório.")
	}
	if username == "" || password == "" {
		return apperror.NewValidationError("Usuário e senha são obrigatórios.")
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := s.api.PostAuth(ctxTimeout, "/token/", body, &tokens); err != nil {
		s.logger.Error("Falha no login.", err)
		return err
	}

	if tokens.Access == "" || tokens.Refresh == "" {
		return apperror.NewNetworkError("Resposta de login sem o par de tokens esperado.", nil)
	}

	session := domain.Session{
		AccessToken:  tokens.Access,
		RefreshToken: tokens.Refresh,
		ExpiresAt:    time.Now().Add(accessTokenTTL),
	}
	if err := s.sessions.Save(ctx, sessionID, session); err != nil {
		s.logger.Error("Falha ao persistir a sessão após o login.", err)
		return apperror.NewInternalError("Falha ao persistir a sessão.", err)
	}

	s.logger.Info("Login realizado com sucesso.", map[string]interface{}{"session_id": sessionID, "username": username})
	return nil
}

// Logout limpa a sessão incondicionalmente.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Clear(ctx, sessionID)
}

// IsAuthenticated informa se há sessão utilizável. Sessão com token vencido
// é descartada por inteiro (os dois tokens), forçando novo login.
func (s *Service) IsAuthenticated(ctx context.Context, sessionID string) bool {
	if sessionID == "" {
		return false
	}

	session, found, err := s.sessions.Load(ctx, sessionID)
	if err != nil || !found {
		return false
	}

	if !session.Usable(time.Now()) {
		s.sessions.Clear(ctx, sessionID)
		return false
	}
	return true
}
