package cart_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"goloja/internal/api/cart"
	"goloja/internal/domain"
	"goloja/internal/pkg/logger"
)

// MockCartService é uma implementação mock da interface CartService
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Items(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, sessionID string, product domain.CartItem, quantity int) ([]domain.CartItem, error) {
	args := m.Called(ctx, sessionID, product, quantity)
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *MockCartService) Remove(ctx context.Context, sessionID string, productID int64) ([]domain.CartItem, error) {
	args := m.Called(ctx, sessionID, productID)
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) ([]domain.CartItem, error) {
	args := m.Called(ctx, sessionID, productID, quantity)
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *MockCartService) Increment(ctx context.Context, sessionID string, productID int64) ([]domain.CartItem, error) {
	args := m.Called(ctx, sessionID, productID)
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *MockCartService) Decrement(ctx context.Context, sessionID string, productID int64) ([]domain.CartItem, error) {
	args := m.Called(ctx, sessionID, productID)
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockCartService) Subtotal(ctx context.Context, sessionID string) (float64, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockCartService) ItemCount(ctx context.Context, sessionID string) (int, error) {
	args := m.Called(ctx, sessionID)
	return args.Int(0), args.Error(1)
}

func (m *MockCartService) UniqueCount(ctx context.Context, sessionID string) (int, error) {
	args := m.Called(ctx, sessionID)
	return args.Int(0), args.Error(1)
}

// TestSummaryHandler_SubtotalComExibicaoEmReais testa que o resumo do carrinho
// traz o subtotal numérico e o texto de exibição no padrão brasileiro.
func TestSummaryHandler_SubtotalComExibicaoEmReais(t *testing.T) {
	mockSvc := new(MockCartService)
	handler := cart.NewHandler(mockSvc, logger.NewLogger("debug"))

	mockSvc.On("Subtotal", mock.Anything, "sess-1").Return(24.0, nil)
	mockSvc.On("ItemCount", mock.Anything, "sess-1").Return(3, nil)
	mockSvc.On("UniqueCount", mock.Anything, "sess-1").Return(2, nil)

	req := httptest.NewRequest("GET", "/v1/cart/summary", nil)
	req.Header.Set("X-Session-ID", "sess-1")
	rec := httptest.NewRecorder()

	handler.SummaryHandler(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"subtotal":24`)
	assert.Contains(t, rec.Body.String(), `"subtotal_display":"R$ 24,00"`)
	mockSvc.AssertExpectations(t)
}
