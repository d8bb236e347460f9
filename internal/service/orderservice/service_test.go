package orderservice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/logger"
	"goloja/internal/service/orderservice"
)

// MockAPIClient é uma implementação mock da interface APIClient
type MockAPIClient struct {
	mock.Mock
}

func (m *MockAPIClient) Do(ctx context.Context, sessionID, method, path string, body interface{}, out interface{}) error {
	args := m.Called(ctx, sessionID, method, path, body, out)

	// Permite que o teste injete a resposta decodificada
	if fn, ok := args.Get(0).(func(interface{})); ok && fn != nil {
		fn(out)
	}
	return args.Error(1)
}

func (m *MockAPIClient) PostAuth(ctx context.Context, path string, body interface{}, out interface{}) error {
	args := m.Called(ctx, path, body, out)

	if fn, ok := args.Get(0).(func(interface{})); ok && fn != nil {
		fn(out)
	}
	return args.Error(1)
}

// MockSessionRepository é uma implementação mock da interface SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Save(ctx context.Context, sessionID string, session domain.Session) error {
	args := m.Called(ctx, sessionID, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Load(ctx context.Context, sessionID string) (domain.Session, bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.Session), args.Bool(1), args.Error(2)
}

func (m *MockSessionRepository) Clear(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

const sessionID = "sess-1"

func activeSession() domain.Session {
	return domain.Session{
		AccessToken:  "acc-123",
		RefreshToken: "ref-456",
		ExpiresAt:    time.Now().Add(30 * time.Minute),
	}
}

// TestGetOrders_SemSessao testa que a operação falha rápido, sem chamada de
// rede, quando não há token de acesso.
func TestGetOrders_SemSessao(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockSessions := new(MockSessionRepository)
	svc := orderservice.NewService(mockAPI, mockSessions, logger.NewLogger("debug"))

	mockSessions.On("Load", mock.Anything, sessionID).Return(domain.Session{}, false, nil)

	_, err := svc.GetOrders(context.Background(), sessionID)

	assert.Error(t, err)
	var unauthorized *apperror.UnauthorizedError
	assert.True(t, errors.As(err, &unauthorized))
	mockAPI.AssertNotCalled(t, "Do", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestGetOrders_Sucesso testa a listagem de pedidos autenticada.
func TestGetOrders_Sucesso(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockSessions := new(MockSessionRepository)
	svc := orderservice.NewService(mockAPI, mockSessions, logger.NewLogger("debug"))

	mockSessions.On("Load", mock.Anything, sessionID).Return(activeSession(), true, nil)

	fill := func(out interface{}) {
		orders := out.(*[]domain.Order)
		*orders = []domain.Order{{ID: 1, Status: domain.OrderStatusPending}}
	}
	mockAPI.On("Do", mock.Anything, sessionID, "GET", "/orders/", nil, mock.Anything).Return(fill, nil)

	orders, err := svc.GetOrders(context.Background(), sessionID)

	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, int64(1), orders[0].ID)
	mockAPI.AssertExpectations(t)
}

// TestFilterByStatus_StatusDesconhecido testa a rejeição de status inválido
// antes de qualquer chamada de rede.
func TestFilterByStatus_StatusDesconhecido(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockSessions := new(MockSessionRepository)
	svc := orderservice.NewService(mockAPI, mockSessions, logger.NewLogger("debug"))

	mockSessions.On("Load", mock.Anything, sessionID).Return(activeSession(), true, nil)

	_, err := svc.FilterByStatus(context.Background(), sessionID, "devolvido")

	assert.Error(t, err)
	var validation *apperror.ValidationError
	assert.True(t, errors.As(err, &validation))
	mockAPI.AssertNotCalled(t, "Do", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// TestUpdateStatus_EnviaPatchParcial testa que a transição é enviada como
// PATCH apenas do campo status.
func TestUpdateStatus_EnviaPatchParcial(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockSessions := new(MockSessionRepository)
	svc := orderservice.NewService(mockAPI, mockSessions, logger.NewLogger("debug"))

	mockSessions.On("Load", mock.Anything, sessionID).Return(activeSession(), true, nil)

	expectedBody := map[string]string{"status": "cancelled"}
	fill := func(out interface{}) {
		order := out.(*domain.Order)
		*order = domain.Order{ID: 42, Status: domain.OrderStatusCancelled}
	}
	mockAPI.On("Do", mock.Anything, sessionID, "PATCH", "/orders/42/", expectedBody, mock.Anything).Return(fill, nil)

	order, err := svc.CancelOrder(context.Background(), sessionID, 42)

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
	mockAPI.AssertExpectations(t)
}

// TestLogin_Sucesso testa que o par de tokens e a expiração de uma hora são
// persistidos juntos, como um único blob.
func TestLogin_Sucesso(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockSessions := new(MockSessionRepository)
	svc := orderservice.NewService(mockAPI, mockSessions, logger.NewLogger("debug"))

	fill := func(out interface{}) {
		tokens := out.(*struct {
			Access  string `json:"access"`
			Refresh string `json:"refresh"`
		})
		tokens.Access = "novo-acc"
		tokens.Refresh = "novo-ref"
	}
	mockAPI.On("PostAuth", mock.Anything, "/token/", map[string]string{"username": "maria", "password": "s3gredo"}, mock.Anything).Return(fill, nil)

	mockSessions.On("Save", mock.Anything, sessionID, mock.MatchedBy(func(s domain.Session) bool {
		remaining := time.Until(s.ExpiresAt)
		return s.AccessToken == "novo-acc" &&
			s.RefreshToken == "novo-ref" &&
			remaining > 59*time.Minute && remaining <= time.Hour
	})).Return(nil)

	err := svc.Login(context.Background(), sessionID, "maria", "s3gredo")

	assert.NoError(t, err)
	mockSessions.AssertExpectations(t)
}

// TestLogin_RespostaSemTokens testa que uma resposta sem o par de tokens não
// persiste nada.
func TestLogin_RespostaSemTokens(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockSessions := new(MockSessionRepository)
	svc := orderservice.NewService(mockAPI, mockSessions, logger.NewLogger("debug"))

	mockAPI.On("PostAuth", mock.Anything, "/token/", mock.Anything, mock.Anything).Return(nil, nil)

	err := svc.Login(context.Background(), sessionID, "maria", "s3gredo")

	assert.Error(t, err)
	mockSessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

// TestLogin_PersistenciaFalha testa que a falha ao gravar a sessão torna o
// login falho (tudo ou nada).
func TestLogin_PersistenciaFalha(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockSessions := new(MockSessionRepository)
	svc := orderservice.NewService(mockAPI, mockSessions, logger.NewLogger("debug"))

	fill := func(out interface{}) {
		tokens := out.(*struct {
			Access  string `json:"access"`
			Refresh string `json:"refresh"`
		})
		tokens.Access = "acc"
		tokens.Refresh = "ref"
	}
	mockAPI.On("PostAuth", mock.Anything, "/token/", mock.Anything, mock.Anything).Return(fill, nil)
	mockSessions.On("Save", mock.Anything, sessionID, mock.Anything).Return(errors.New("redis fora do ar"))

	err := svc.Login(context.Background(), sessionID, "maria", "s3gredo")

	assert.Error(t, err)
}

// TestIsAuthenticated_SessaoExpiradaELimpa testa que uma sessão vencida é
// descartada por inteiro, forçando novo login.
func TestIsAuthenticated_SessaoExpiradaELimpa(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockSessions := new(MockSessionRepository)
	svc := orderservice.NewService(mockAPI, mockSessions, logger.NewLogger("debug"))

	expired := domain.Session{
		AccessToken:  "acc",
		RefreshToken: "ref",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}
	mockSessions.On("Load", mock.Anything, sessionID).Return(expired, true, nil)
	mockSessions.On("Clear", mock.Anything, sessionID).Return(nil)

	authenticated := svc.IsAuthenticated(context.Background(), sessionID)

	assert.False(t, authenticated)
	mockSessions.AssertCalled(t, "Clear", mock.Anything, sessionID)
}

// TestLogout_LimpaIncondicionalmente testa a limpeza da sessão.
func TestLogout_LimpaIncondicionalmente(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockSessions := new(MockSessionRepository)
	svc := orderservice.NewService(mockAPI, mockSessions, logger.NewLogger("debug"))

	mockSessions.On("Clear", mock.Anything, sessionID).Return(nil)

	err := svc.Logout(context.Background(), sessionID)

	assert.NoError(t, err)
	mockSessions.AssertExpectations(t)
}
