package cartrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"goloja/internal/domain"
	"goloja/internal/pkg/kvstore"
	"goloja/internal/pkg/logger"
)

// Chave do carrinho, uma por sessão.
const cartKeyFmt = "shopping-cart:%s"

// CartRepository implementa domain.CartRepository sobre o armazenamento
// chave-valor. A lista de itens é serializada inteira a cada gravação.
// Falhas de armazenamento degradam para "carrinho vazio" nas leituras e
// nunca chegam à UI como erro de infraestrutura.
type CartRepository struct {
	store  kvstore.Client
	logger logger.Logger
}

// NewCartRepository cria e retorna uma nova instância do Repositório.
func NewCartRepository(store kvstore.Client, log logger.Logger) *CartRepository {
	return &CartRepository{store: store, logger: log}
}

// GetItems recupera a lista de itens da sessão. Sessão sem carrinho ou
// armazenamento indisponível resultam em lista vazia.
func (r *CartRepository) GetItems(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	key := fmt.Sprintf(cartKeyFmt, sessionID)

	data, err := r.store.Get(ctx, key)
	if err == kvstore.ErrNotFound {
		return []domain.CartItem{}, nil
	}
	if err != nil {
		r.logger.Warn("Falha ao ler o carrinho do armazenamento. Retornando vazio.", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		return []domain.CartItem{}, nil
	}

	var items []domain.CartItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		// Conteúdo corrompido: descarta e recomeça com carrinho vazio.
		r.logger.Warn("Carrinho persistido ilegível. Descartando.", map[string]interface{}{"session_id": sessionID})
		r.store.Delete(ctx, key)
		return []domain.CartItem{}, nil
	}

	return items, nil
}

// SaveItems persiste a lista completa de itens da sessão.
func (r *CartRepository) SaveItems(ctx context.Context, sessionID string, items []domain.CartItem) error {
	key := fmt.Sprintf(cartKeyFmt, sessionID)

	data, err := json.Marshal(items)
	if err != nil {
		return err
	}

	return r.store.Set(ctx, key, data, 0)
}
