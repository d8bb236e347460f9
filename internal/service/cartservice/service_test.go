package cartservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/logger"
	"goloja/internal/service/cartservice"
)

// MockCartRepository é uma implementação mock da interface CartRepository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetItems(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *MockCartRepository) SaveItems(ctx context.Context, sessionID string, items []domain.CartItem) error {
	args := m.Called(ctx, sessionID, items)
	return args.Error(0)
}

const sessionID = "sess-1"

// TestAdd_MesclaLinhaExistente testa que adicionar um produto já presente
// soma as quantidades na mesma linha, sem duplicá-la.
func TestAdd_MesclaLinhaExistente(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockLogger := logger.NewLogger("debug")
	svc := cartservice.NewService(mockRepo, mockLogger)

	existing := []domain.CartItem{{ProductID: 7, Nome: "Caneca", UnitPrice: 10.50, Quantity: 2}}
	mockRepo.On("GetItems", mock.Anything, sessionID).Return(existing, nil)
	mockRepo.On("SaveItems", mock.Anything, sessionID, mock.Anything).Return(nil)

	items, err := svc.Add(context.Background(), sessionID, domain.CartItem{ProductID: 7, Nome: "Caneca", UnitPrice: 10.50}, 3)

	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	mockRepo.AssertExpectations(t)
}

// TestAdd_RespeitaLimiteDeEstoque testa que a quantidade resultante é
// ajustada ao limite de estoque quando este é conhecido.
func TestAdd_RespeitaLimiteDeEstoque(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockLogger := logger.NewLogger("debug")
	svc := cartservice.NewService(mockRepo, mockLogger)

	existing := []domain.CartItem{{ProductID: 7, Quantity: 2, StockLimit: 4}}
	mockRepo.On("GetItems", mock.Anything, sessionID).Return(existing, nil)
	mockRepo.On("SaveItems", mock.Anything, sessionID, mock.Anything).Return(nil)

	items, err := svc.Add(context.Background(), sessionID, domain.CartItem{ProductID: 7, StockLimit: 4}, 3)

	assert.NoError(t, err)
	assert.Equal(t, 4, items[0].Quantity)
}

// TestAdd_QuantidadeNaoPositivaViraUm testa que quantidade zero ou negativa
// é tratada como 1.
func TestAdd_QuantidadeNaoPositivaViraUm(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockLogger := logger.NewLogger("debug")
	svc := cartservice.NewService(mockRepo, mockLogger)

	mockRepo.On("GetItems", mock.Anything, sessionID).Return([]domain.CartItem{}, nil)
	mockRepo.On("SaveItems", mock.Anything, sessionID, mock.Anything).Return(nil)

	items, err := svc.Add(context.Background(), sessionID, domain.CartItem{ProductID: 1}, 0)

	assert.NoError(t, err)
	assert.Equal(t, 1, items[0].Quantity)
}

// TestDecrement_NaQuantidadeUmRemoveALinha testa que decrementar uma linha de
// quantidade 1 remove a linha por inteiro, nunca grava quantidade zero.
func TestDecrement_NaQuantidadeUmRemoveALinha(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockLogger := logger.NewLogger("debug")
	svc := cartservice.NewService(mockRepo, mockLogger)

	existing := []domain.CartItem{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 3},
	}
	mockRepo.On("GetItems", mock.Anything, sessionID).Return(existing, nil)
	mockRepo.On("SaveItems", mock.Anything, sessionID, mock.MatchedBy(func(items []domain.CartItem) bool {
		return len(items) == 1 && items[0].ProductID == 2
	})).Return(nil)

	items, err := svc.Decrement(context.Background(), sessionID, 1)

	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ProductID)
	mockRepo.AssertExpectations(t)
}

// TestUpdateQuantity_ZeroEquivaleARemover testa que definir quantidade 0
// remove a linha.
func TestUpdateQuantity_ZeroEquivaleARemover(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockLogger := logger.NewLogger("debug")
	svc := cartservice.NewService(mockRepo, mockLogger)

	existing := []domain.CartItem{{ProductID: 1, Quantity: 2}}
	mockRepo.On("GetItems", mock.Anything, sessionID).Return(existing, nil)
	mockRepo.On("SaveItems", mock.Anything, sessionID, mock.Anything).Return(nil)

	items, err := svc.UpdateQuantity(context.Background(), sessionID, 1, 0)

	assert.NoError(t, err)
	assert.Empty(t, items)
}

// TestUpdateQuantity_ProdutoAusente testa o erro de produto fora do carrinho.
func TestUpdateQuantity_ProdutoAusente(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockLogger := logger.NewLogger("debug")
	svc := cartservice.NewService(mockRepo, mockLogger)

	mockRepo.On("GetItems", mock.Anything, sessionID).Return([]domain.CartItem{}, nil)

	_, err := svc.UpdateQuantity(context.Background(), sessionID, 99, 2)

	assert.Error(t, err)
	var notFound *apperror.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	mockRepo.AssertNotCalled(t, "SaveItems", mock.Anything, mock.Anything, mock.Anything)
}

// TestSubtotal_SomaPrecoVezesQuantidade testa o subtotal clássico:
// 2 × 10.50 + 1 × 3.00 = 24.00.
func TestSubtotal_SomaPrecoVezesQuantidade(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockLogger := logger.NewLogger("debug")
	svc := cartservice.NewService(mockRepo, mockLogger)

	items := []domain.CartItem{
		{ProductID: 1, UnitPrice: 10.50, Quantity: 2},
		{ProductID: 2, UnitPrice: 3.00, Quantity: 1},
	}
	mockRepo.On("GetItems", mock.Anything, sessionID).Return(items, nil)

	subtotal, err := svc.Subtotal(context.Background(), sessionID)

	assert.NoError(t, err)
	assert.InDelta(t, 24.00, subtotal, 0.0001)
}

// TestSubtotal_PrecoIlegivelContaComoZero testa que um item com preço
// ilegível entra no subtotal como zero, nunca como NaN.
func TestSubtotal_PrecoIlegivelContaComoZero(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockLogger := logger.NewLogger("debug")
	svc := cartservice.NewService(mockRepo, mockLogger)

	items := []domain.CartItem{
		{ProductID: 1, UnitPrice: 10.00, Quantity: 1},
		{ProductID: 2, PrecoInvalido: true, Quantity: 3},
	}
	mockRepo.On("GetItems", mock.Anything, sessionID).Return(items, nil)

	subtotal, err := svc.Subtotal(context.Background(), sessionID)

	assert.NoError(t, err)
	assert.InDelta(t, 10.00, subtotal, 0.0001)
	assert.False(t, subtotal != subtotal, "subtotal nunca pode ser NaN")
}

// TestSubscribe_EntregaImediataENotificacaoAposMutacao testa que o novo
// assinante recebe a lista atual imediatamente e a lista completa após cada
// mutação persistida.
func TestSubscribe_EntregaImediataENotificacaoAposMutacao(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockLogger := logger.NewLogger("debug")
	svc := cartservice.NewService(mockRepo, mockLogger)

	mockRepo.On("GetItems", mock.Anything, sessionID).Return([]domain.CartItem{}, nil)
	mockRepo.On("SaveItems", mock.Anything, sessionID, mock.Anything).Return(nil)

	var deliveries [][]domain.CartItem
	unsubscribe, err := svc.Subscribe(context.Background(), sessionID, func(items []domain.CartItem) {
		deliveries = append(deliveries, items)
	})
	assert.NoError(t, err)

	// Entrega imediata com a lista atual (vazia)
	assert.Len(t, deliveries, 1)
	assert.Empty(t, deliveries[0])

	_, err = svc.Add(context.Background(), sessionID, domain.CartItem{ProductID: 5, Quantity: 1}, 1)
	assert.NoError(t, err)

	assert.Len(t, deliveries, 2)
	assert.Len(t, deliveries[1], 1)
	assert.Equal(t, int64(5), deliveries[1][0].ProductID)

	// Após o cancelamento, mutações não notificam mais
	unsubscribe()
	err = svc.Clear(context.Background(), sessionID)
	assert.NoError(t, err)
	assert.Len(t, deliveries, 2)
}

// TestPersistenciaFalha_NinguemENotificado testa que uma falha ao salvar
// impede a notificação dos assinantes e retorna erro.
func TestPersistenciaFalha_NinguemENotificado(t *testing.T) {
	mockRepo := new(MockCartRepository)
	mockLogger := logger.NewLogger("debug")
	svc := cartservice.NewService(mockRepo, mockLogger)

	mockRepo.On("GetItems", mock.Anything, sessionID).Return([]domain.CartItem{}, nil)
	mockRepo.On("SaveItems", mock.Anything, sessionID, mock.Anything).Return(errors.New("redis fora do ar"))

	notified := 0
	_, err := svc.Subscribe(context.Background(), sessionID, func(items []domain.CartItem) {
		notified++
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, notified) // apenas a entrega imediata

	_, err = svc.Add(context.Background(), sessionID, domain.CartItem{ProductID: 1}, 1)

	assert.Error(t, err)
	assert.Equal(t, 1, notified)
}
