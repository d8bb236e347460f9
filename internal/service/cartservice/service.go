package cartservice

import (
	"context"
	"sync"

	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/logger"
)

// Service implementa o carrinho de compras. É uma instância construída com
// suas próprias dependências e seu próprio registro de assinantes, sem nenhum
// estado mutável em nível de pacote.
//
// Garantia de ordenação: toda operação de mutação executa
// ler → mutar → persistir → notificar, nessa ordem e sob o mutex. Os
// assinantes sempre observam a lista completa já persistida, na ordem em que
// se inscreveram, no máximo uma vez por operação.
type Service struct {
	repo   domain.CartRepository
	logger logger.Logger

	mu        sync.Mutex
	subs      map[string][]subscription // assinantes por sessão, em ordem de inscrição
	nextSubID int64
}

type subscription struct {
	id int64
	fn domain.CartSubscriber
}

// NewService cria e retorna uma nova instância do Serviço de Carrinho.
func NewService(repo domain.CartRepository, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: log,
		subs:   make(map[string][]subscription),
	}
}

// Items retorna a lista atual de itens da sessão.
func (s *Service) Items(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	if sessionID == "" {
		return nil, apperror.NewValidationError("Identificador de sessão é obrigatório.")
	}
	return s.repo.GetItems(ctx, sessionID)
}

// Add adiciona um produto ao carrinho. Se o produto já estiver presente, a
// quantidade é somada à linha existente; caso contrário, uma nova linha é
// criada. A quantidade resultante respeita o limite de estoque quando este é
// conhecido. Quantidade não positiva é tratada como 1.
func (s *Service) Add(ctx context.Context, sessionID string, product domain.CartItem, quantity int) ([]domain.CartItem, error) {
	if sessionID == "" {
		return nil, apperror.NewValidationError("Identificador de sessão é obrigatório.")
	}
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.GetItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ProductID == product.ProductID {
			if product.StockLimit > 0 {
				items[i].StockLimit = product.StockLimit
			}
			items[i].Quantity = clampQuantity(items[i].Quantity+quantity, items[i].StockLimit)
			found = true
			break
		}
	}

	if !found {
		line := product
		line.Quantity = clampQuantity(quantity, line.StockLimit)
		items = append(items, line)
	}

	if err := s.persistAndNotify(ctx, sessionID, items); err != nil {
		return nil, err
	}

	s.logger.Debug("Produto adicionado ao carrinho.", map[string]interface{}{"session_id": sessionID, "product_id": product.ProductID})
	return items, nil
}

// Remove retira a linha do produto do carrinho.
func (s *Service) Remove(ctx context.Context, sessionID string, productID int64) ([]domain.CartItem, error) {
	if sessionID == "" {
		return nil, apperror.NewValidationError("Identificador de sessão é obrigatório.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeLocked(ctx, sessionID, productID)
}

// UpdateQuantity define a quantidade de uma linha. Quantidade menor ou igual
// a zero equivale a remover a linha; caso contrário o valor é ajustado para
// o intervalo [1, limite de estoque].
func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) ([]domain.CartItem, error) {
	if sessionID == "" {
		return nil, apperror.NewValidationError("Identificador de sessão é obrigatório.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.removeLocked(ctx, sessionID, productID)
	}

	items, err := s.repo.GetItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := indexOf(items, productID)
	if idx < 0 {
		return nil, apperror.NewNotFoundError("Produto não está no carrinho.")
	}

	items[idx].Quantity = clampQuantity(quantity, items[idx].StockLimit)

	if err := s.persistAndNotify(ctx, sessionID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Increment aumenta em um a quantidade da linha, respeitando o estoque.
func (s *Service) Increment(ctx context.Context, sessionID string, productID int64) ([]domain.CartItem, error) {
	if sessionID == "" {
		return nil, apperror.NewValidationError("Identificador de sessão é obrigatório.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.GetItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := indexOf(items, productID)
	if idx < 0 {
		return nil, apperror.NewNotFoundError("Produto não está no carrinho.")
	}

	items[idx].Quantity = clampQuantity(items[idx].Quantity+1, items[idx].StockLimit)

	if err := s.persistAndNotify(ctx, sessionID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Decrement diminui em um a quantidade da linha. Se a quantidade resultante
// cair a zero ou menos, a linha é removida por inteiro; nunca é gravada uma
// quantidade não positiva.
func (s *Service) Decrement(ctx context.Context, sessionID string, productID int64) ([]domain.CartItem, error) {
	if sessionID == "" {
		return nil, apperror.NewValidationError("Identificador de sessão é obrigatório.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.GetItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := indexOf(items, productID)
	if idx < 0 {
		return nil, apperror.NewNotFoundError("Produto não está no carrinho.")
	}

	if items[idx].Quantity <= 1 {
		return s.removeLoadedLocked(ctx, sessionID, items, productID)
	}

	items[idx].Quantity--

	if err := s.persistAndNotify(ctx, sessionID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Clear esvazia o carrinho da sessão.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperror.NewValidationError("Identificador de sessão é obrigatório.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.persistAndNotify(ctx, sessionID, []domain.CartItem{})
}

// Subtotal soma preço unitário × quantidade de todas as linhas. Itens com
// preço ilegível entram como zero, com aviso, nunca como NaN.
func (s *Service) Subtotal(ctx context.Context, sessionID string) (float64, error) {
	items, err := s.Items(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, item := range items {
		if item.PrecoInvalido {
			s.logger.Warn("Item com preço ilegível no carrinho. Somando como zero.", map[string]interface{}{"session_id": sessionID, "product_id": item.ProductID})
			continue
		}
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total, nil
}

// ItemCount retorna o total de unidades no carrinho (soma das quantidades).
func (s *Service) ItemCount(ctx context.Context, sessionID string) (int, error) {
	items, err := s.Items(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count, nil
}

// UniqueCount retorna o número de linhas distintas no carrinho.
func (s *Service) UniqueCount(ctx context.Context, sessionID string) (int, error) {
	items, err := s.Items(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Subscribe registra um assinante para as mudanças do carrinho da sessão.
// O assinante é chamado imediatamente com a lista atual, de forma síncrona,
// antes de qualquer mutação futura. Retorna a função de cancelamento.
func (s *Service) Subscribe(ctx context.Context, sessionID string, fn domain.CartSubscriber) (func(), error) {
	if sessionID == "" {
		return nil, apperror.NewValidationError("Identificador de sessão é obrigatório.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.GetItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.nextSubID++
	id := s.nextSubID
	s.subs[sessionID] = append(s.subs[sessionID], subscription{id: id, fn: fn})

	// Entrega imediata do estado atual ao novo assinante.
	fn(copyItems(items))

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		list := s.subs[sessionID]
		for i := range list {
			if list[i].id == id {
				s.subs[sessionID] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(s.subs[sessionID]) == 0 {
			delete(s.subs, sessionID)
		}
	}

	return unsubscribe, nil
}

// --- Auxiliares internos ---

// removeLocked carrega, remove e persiste. Pressupõe o mutex adquirido.
func (s *Service) removeLocked(ctx context.Context, sessionID string, productID int64) ([]domain.CartItem, error) {
	items, err := s.repo.GetItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.removeLoadedLocked(ctx, sessionID, items, productID)
}

// removeLoadedLocked remove a linha de uma lista já carregada e persiste.
func (s *Service) removeLoadedLocked(ctx context.Context, sessionID string, items []domain.CartItem, productID int64) ([]domain.CartItem, error) {
	filtered := items[:0:0]
	for _, item := range items {
		if item.ProductID != productID {
			filtered = append(filtered, item)
		}
	}

	if err := s.persistAndNotify(ctx, sessionID, filtered); err != nil {
		return nil, err
	}
	return filtered, nil
}

// persistAndNotify grava a lista completa e, somente após a persistência,
// notifica os assinantes da sessão em ordem de inscrição. Pressupõe o mutex
// adquirido. Se a persistência falhar, ninguém é notificado.
func (s *Service) persistAndNotify(ctx context.Context, sessionID string, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}

	if err := s.repo.SaveItems(ctx, sessionID, items); err != nil {
		s.logger.Error("Falha ao persistir o carrinho.", err)
		return apperror.NewInternalError("Falha ao salvar o carrinho.", err)
	}

	for _, sub := range s.subs[sessionID] {
		sub.fn(copyItems(items))
	}
	return nil
}

func indexOf(items []domain.CartItem, productID int64) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// clampQuantity ajusta a quantidade para [1, limite]. Limite zero significa
// estoque desconhecido: sem teto.
func clampQuantity(quantity, stockLimit int) int {
	if quantity < 1 {
		quantity = 1
	}
	if stockLimit > 0 && quantity > stockLimit {
		quantity = stockLimit
	}
	return quantity
}

// copyItems entrega aos assinantes uma cópia: o estado interno nunca é
// compartilhado mutável.
func copyItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}
