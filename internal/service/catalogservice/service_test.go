package catalogservice_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/kvstore"
	"goloja/internal/pkg/logger"
	"goloja/internal/service/catalogservice"
)

// MockAPIClient é uma implementação mock da interface APIClient
type MockAPIClient struct {
	mock.Mock
}

func (m *MockAPIClient) Do(ctx context.Context, sessionID, method, path string, body interface{}, out interface{}) error {
	args := m.Called(ctx, sessionID, method, path, body, out)
	return args.Error(0)
}

func (m *MockAPIClient) GetRaw(ctx context.Context, sessionID, path string) ([]byte, error) {
	args := m.Called(ctx, sessionID, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockKVStore é uma implementação mock da interface kvstore.Client
type MockKVStore struct {
	mock.Mock
}

func (m *MockKVStore) Probe(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockKVStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockKVStore) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockKVStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockKVStore) GetInt(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func (m *MockKVStore) Incr(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// TestGetProducts_SucessoGravaCopiaLiteral testa que a leitura boa grava a
// resposta byte a byte no cache antes de retornar.
func TestGetProducts_SucessoGravaCopiaLiteral(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockStore := new(MockKVStore)
	svc := catalogservice.NewService(mockAPI, mockStore, logger.NewLogger("debug"))

	payload := `[{"id":1,"nome":"Caneca","preco":25.9},{"id":2,"nome":"Camiseta","preco":"49.90"}]`
	mockAPI.On("GetRaw", mock.Anything, "", "/produtos/").Return([]byte(payload), nil)
	mockStore.On("Set", mock.Anything, "cachedProducts", payload, time.Duration(0)).Return(nil)

	products, err := svc.GetProducts(context.Background())

	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.InDelta(t, 25.9, products[0].Preco, 0.0001)
	// Preço em string decimal é aceito
	assert.InDelta(t, 49.90, products[1].Preco, 0.0001)
	mockStore.AssertExpectations(t)
}

// TestGetProducts_FalhaServeCache testa que a falha da API serve a cópia em
// cache com o mesmo conteúdo.
func TestGetProducts_FalhaServeCache(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockStore := new(MockKVStore)
	svc := catalogservice.NewService(mockAPI, mockStore, logger.NewLogger("debug"))

	cached := `[{"id":1,"nome":"Caneca","preco":25.9}]`
	mockAPI.On("GetRaw", mock.Anything, "", "/produtos/").Return(nil, apperror.NewNetworkError("timeout", nil))
	mockStore.On("Get", mock.Anything, "cachedProducts").Return(cached, nil)

	products, err := svc.GetProducts(context.Background())

	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, "Caneca", products[0].Nome)
}

// TestGetProducts_FalhaSemCachePropaga testa que sem cópia em cache o erro
// original da busca é propagado.
func TestGetProducts_FalhaSemCachePropaga(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockStore := new(MockKVStore)
	svc := catalogservice.NewService(mockAPI, mockStore, logger.NewLogger("debug"))

	fetchErr := apperror.NewNetworkError("timeout", nil)
	mockAPI.On("GetRaw", mock.Anything, "", "/produtos/").Return(nil, fetchErr)
	mockStore.On("Get", mock.Anything, "cachedProducts").Return("", kvstore.ErrNotFound)

	_, err := svc.GetProducts(context.Background())

	assert.Error(t, err)
	assert.Equal(t, fetchErr, err)
}

// TestGetProductsByCategory_UsaRotaDeCategoria testa que a listagem por
// categoria bate na rota de categoria da API e grava no cache da categoria.
func TestGetProductsByCategory_UsaRotaDeCategoria(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockStore := new(MockKVStore)
	svc := catalogservice.NewService(mockAPI, mockStore, logger.NewLogger("debug"))

	payload := `[{"id":3,"nome":"Caneca Azul","preco":29.9}]`
	mockAPI.On("GetRaw", mock.Anything, "", "/categoria/canecas/").Return([]byte(payload), nil)
	mockStore.On("Set", mock.Anything, "cachedProducts_canecas", payload, time.Duration(0)).Return(nil)

	products, err := svc.GetProductsByCategory(context.Background(), "canecas")

	assert.NoError(t, err)
	assert.Len(t, products, 1)
	mockAPI.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

// TestGetCategories_UsaRotaDeCategorias testa a rota de listagem de categorias.
func TestGetCategories_UsaRotaDeCategorias(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockStore := new(MockKVStore)
	svc := catalogservice.NewService(mockAPI, mockStore, logger.NewLogger("debug"))

	payload := `[{"id":1,"nome":"Canecas","slug":"canecas"}]`
	mockAPI.On("GetRaw", mock.Anything, "", "/categorias/").Return([]byte(payload), nil)
	mockStore.On("Set", mock.Anything, "cachedCategories", payload, time.Duration(0)).Return(nil)

	categories, err := svc.GetCategories(context.Background())

	assert.NoError(t, err)
	assert.Len(t, categories, 1)
	mockAPI.AssertExpectations(t)
}

// TestCreateProduct_UsaRotaDeCriacao testa que a escrita administrativa usa a
// rota de criação da API.
func TestCreateProduct_UsaRotaDeCriacao(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockStore := new(MockKVStore)
	svc := catalogservice.NewService(mockAPI, mockStore, logger.NewLogger("debug"))

	product := domain.Product{Nome: "Caneca"}
	mockAPI.On("Do", mock.Anything, "sess-1", "POST", "/produtos/criar/", product, mock.Anything).Return(nil)
	mockStore.On("Get", mock.Anything, "cachedProducts").Return("", kvstore.ErrNotFound)

	_, err := svc.CreateProduct(context.Background(), "sess-1", product)

	assert.NoError(t, err)
	mockAPI.AssertExpectations(t)
}

// TestGetProductByID_VarreListaEmCache testa o último degrau da degradação:
// API fora, cache individual vazio, produto encontrado na lista completa.
func TestGetProductByID_VarreListaEmCache(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockStore := new(MockKVStore)
	svc := catalogservice.NewService(mockAPI, mockStore, logger.NewLogger("debug"))

	mockAPI.On("GetRaw", mock.Anything, "", "/produtos/2/").Return(nil, apperror.NewNetworkError("timeout", nil))
	mockStore.On("Get", mock.Anything, "cachedProduct_2").Return("", kvstore.ErrNotFound)
	mockStore.On("Get", mock.Anything, "cachedProducts").Return(`[{"id":1,"nome":"Caneca"},{"id":2,"nome":"Camiseta"}]`, nil)

	product, err := svc.GetProductByID(context.Background(), 2)

	assert.NoError(t, err)
	assert.Equal(t, "Camiseta", product.Nome)
}

// TestGetProductByID_SemNenhumaCopiaPropaga testa a propagação quando nem o
// cache individual nem a lista conhecem o produto.
func TestGetProductByID_SemNenhumaCopiaPropaga(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockStore := new(MockKVStore)
	svc := catalogservice.NewService(mockAPI, mockStore, logger.NewLogger("debug"))

	mockAPI.On("GetRaw", mock.Anything, "", "/produtos/9/").Return(nil, apperror.NewNetworkError("timeout", nil))
	mockStore.On("Get", mock.Anything, "cachedProduct_9").Return("", kvstore.ErrNotFound)
	mockStore.On("Get", mock.Anything, "cachedProducts").Return("", kvstore.ErrNotFound)

	_, err := svc.GetProductByID(context.Background(), 9)

	assert.Error(t, err)
}

// TestDeleteProduct_FiltraColecaoEmCache testa que a exclusão remenda a
// coleção em cache filtrando o produto removido.
func TestDeleteProduct_FiltraColecaoEmCache(t *testing.T) {
	mockAPI := new(MockAPIClient)
	mockStore := new(MockKVStore)
	svc := catalogservice.NewService(mockAPI, mockStore, logger.NewLogger("debug"))

	mockAPI.On("Do", mock.Anything, "sess-1", "DELETE", "/produtos/1/excluir/", nil, nil).Return(nil)
	mockStore.On("Get", mock.Anything, "cachedProducts").Return(`[{"id":1,"nome":"Caneca","preco":25.9},{"id":2,"nome":"Camiseta","preco":49.9}]`, nil)
	mockStore.On("Set", mock.Anything, "cachedProducts", mock.MatchedBy(func(v interface{}) bool {
		s, ok := v.(string)
		return ok && !strings.Contains(s, `"id":1`) && strings.Contains(s, `"id":2`)
	}), time.Duration(0)).Return(nil)
	mockStore.On("Delete", mock.Anything, "cachedProduct_1").Return(nil)

	err := svc.DeleteProduct(context.Background(), "sess-1", 1)

	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
}
