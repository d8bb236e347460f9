package catalogservice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/kvstore"
	"goloja/internal/pkg/logger"
)

// Chaves do cache de catálogo no armazenamento chave-valor.
const (
	cachedProductsKey   = "cachedProducts"
	cachedCategoriesKey = "cachedCategories"
	cachedProductKeyFmt = "cachedProduct_%d"
	cachedCategoryFmt   = "cachedProducts_%s"
)

// APIClient é o contrato do cliente da API upstream usado pelo catálogo.
type APIClient interface {
	Do(ctx context.Context, sessionID, method, path string, body interface{}, out interface{}) error
	GetRaw(ctx context.Context, sessionID, path string) ([]byte, error)
}

// Service implementa a leitura do catálogo com política de cache-e-fallback:
// toda leitura bem-sucedida grava uma cópia literal (byte a byte) da resposta
// no armazenamento antes de retornar; uma leitura que falha serve a cópia em
// cache, quando existe, em vez de propagar a falha. As escritas administrativas
// remendam a coleção em cache em vez de invalidá-la.
type Service struct {
	api    APIClient
	store  kvstore.Client
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Catálogo.
func NewService(api APIClient, store kvstore.Client, log logger.Logger) *Service {
	return &Service{api: api, store: store, logger: log}
}

// GetProducts lista todos os produtos do catálogo.
func (s *Service) GetProducts(ctx context.Context) ([]domain.Product, error) {
	data, err := s.fetchWithCache(ctx, "/produtos/", cachedProductsKey)
	if err != nil {
		return nil, err
	}
	return decodeProducts(data)
}

// GetProductsByCategory lista os produtos de uma categoria, pelo slug.
func (s *Service) GetProductsByCategory(ctx context.Context, slug string) ([]domain.Product, error) {
	if slug == "" {
		return nil, apperror.NewValidationError("Slug de categoria é obrigatório.")
	}

	path := "/categoria/" + url.PathEscape(slug) + "/"
	key := fmt.Sprintf(cachedCategoryFmt, slug)

	data, err := s.fetchWithCache(ctx, path, key)
	if err != nil {
		return nil, err
	}
	return decodeProducts(data)
}

// GetProductByID busca um produto. A degradação tem três degraus: a API, o
// cache individual do produto e, por fim, uma varredura da lista completa em
// cache. Qualquer cópia conhecida do produto vale mais que um erro.
func (s *Service) GetProductByID(ctx context.Context, id int64) (domain.Product, error) {
	path := fmt.Sprintf("/produtos/%d/", id)
	key := fmt.Sprintf(cachedProductKeyFmt, id)

	data, err := s.api.GetRaw(ctx, "", path)
	if err == nil {
		s.cacheSet(ctx, key, data)

		var product domain.Product
		if uerr := json.Unmarshal(data, &product); uerr != nil {
			return domain.Product{}, apperror.NewNetworkError("Resposta de produto inválida da API.", uerr)
		}
		return product, nil
	}

	if cached, cerr := s.store.Get(ctx, key); cerr == nil {
		s.logger.Warn("API de catálogo indisponível. Servindo produto do cache.", map[string]interface{}{"product_id": id})
		var product domain.Product
		if uerr := json.Unmarshal([]byte(cached), &product); uerr == nil {
			return product, nil
		}
	}

	// Último degrau: procurar o produto na lista completa em cache.
	if cached, cerr := s.store.Get(ctx, cachedProductsKey); cerr == nil {
		var products []domain.Product
		if uerr := json.Unmarshal([]byte(cached), &products); uerr == nil {
			for _, p := range products {
				if p.ID == id {
					s.logger.Warn("API de catálogo indisponível. Produto recuperado da lista em cache.", map[string]interface{}{"product_id": id})
					return p, nil
				}
			}
		}
	}

	return domain.Product{}, err
}

// GetCategories lista as categorias do catálogo.
func (s *Service) GetCategories(ctx context.Context) ([]domain.Categoria, error) {
	data, err := s.fetchWithCache(ctx, "/categorias/", cachedCategoriesKey)
	if err != nil {
		return nil, err
	}

	var categories []domain.Categoria
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, apperror.NewNetworkError("Resposta de categorias inválida da API.", err)
	}
	return categories, nil
}

// CreateProduct cria um produto no catálogo (operação administrativa) e
// insere o produto criado na coleção em cache.
func (s *Service) CreateProduct(ctx context.Context, sessionID string, product domain.Product) (domain.Product, error) {
	var created domain.Product
	if err := s.api.Do(ctx, sessionID, "POST", "/produtos/criar/", product, &created); err != nil {
		s.logger.Error("Falha ao criar produto.", err)
		return domain.Product{}, err
	}

	s.patchCachedProducts(ctx, func(products []domain.Product) []domain.Product {
		return append(products, created)
	})

	s.logger.Info("Produto criado.", map[string]interface{}{"product_id": created.ID})
	return created, nil
}

// UpdateProduct atualiza um produto e substitui a entrada correspondente na
// coleção em cache e no cache individual.
func (s *Service) UpdateProduct(ctx context.Context, sessionID string, id int64, product domain.Product) (domain.Product, error) {
	var updated domain.Product
	path := fmt.Sprintf("/produtos/%d/editar/", id)
	if err := s.api.Do(ctx, sessionID, "PUT", path, product, &updated); err != nil {
		s.logger.Error(fmt.Sprintf("Falha ao atualizar produto %d.", id), err)
		return domain.Product{}, err
	}

	s.patchCachedProducts(ctx, func(products []domain.Product) []domain.Product {
		for i := range products {
			if products[i].ID == id {
				products[i] = updated
			}
		}
		return products
	})

	if raw, err := json.Marshal(updated); err == nil {
		s.cacheSet(ctx, fmt.Sprintf(cachedProductKeyFmt, id), raw)
	}

	s.logger.Info("Produto atualizado.", map[string]interface{}{"product_id": id})
	return updated, nil
}

// DeleteProduct remove um produto e o filtra da coleção em cache.
func (s *Service) DeleteProduct(ctx context.Context, sessionID string, id int64) error {
	path := fmt.Sprintf("/produtos/%d/excluir/", id)
	if err := s.api.Do(ctx, sessionID, "DELETE", path, nil, nil); err != nil {
		s.logger.Error(fmt.Sprintf("Falha ao excluir produto %d.", id), err)
		return err
	}

	s.patchCachedProducts(ctx, func(products []domain.Product) []domain.Product {
		filtered := products[:0:0]
		for _, p := range products {
			if p.ID != id {
				filtered = append(filtered, p)
			}
		}
		return filtered
	})

	s.store.Delete(ctx, fmt.Sprintf(cachedProductKeyFmt, id))

	s.logger.Info("Produto excluído.", map[string]interface{}{"product_id": id})
	return nil
}

// fetchWithCache busca o recurso na API e, no sucesso, grava a resposta
// literal no cache antes de retornar. Na falha, serve a cópia em cache quando
// existe; sem cópia, propaga o erro original da busca.
func (s *Service) fetchWithCache(ctx context.Context, path, cacheKey string) ([]byte, error) {
	data, err := s.api.GetRaw(ctx, "", path)
	if err == nil {
		s.cacheSet(ctx, cacheKey, data)
		return data, nil
	}

	cached, cerr := s.store.Get(ctx, cacheKey)
	if cerr == nil {
		s.logger.Warn("API indisponível. Servindo resposta do cache.", map[string]interface{}{"path": path})
		return []byte(cached), nil
	}

	return nil, err
}

// cacheSet grava no cache em melhor esforço: falha vira aviso, nunca erro.
func (s *Service) cacheSet(ctx context.Context, key string, data []byte) {
	if err := s.store.Set(ctx, key, string(data), 0); err != nil {
		s.logger.Warn("Falha ao gravar cache de catálogo.", map[string]interface{}{"key": key})
	}
}

// patchCachedProducts aplica uma mutação à coleção de produtos em cache.
// Sem cópia em cache não há o que remendar; toda falha é melhor esforço.
func (s *Service) patchCachedProducts(ctx context.Context, mutate func([]domain.Product) []domain.Product) {
	cached, err := s.store.Get(ctx, cachedProductsKey)
	if err != nil {
		return
	}

	var products []domain.Product
	if err := json.Unmarshal([]byte(cached), &products); err != nil {
		return
	}

	raw, err := json.Marshal(mutate(products))
	if err != nil {
		return
	}
	s.cacheSet(ctx, cachedProductsKey, raw)
}

func decodeProducts(data []byte) ([]domain.Product, error) {
	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, apperror.NewNetworkError("Resposta de produtos inválida da API.", err)
	}
	return products, nil
}
