package checkoutservice

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/kvstore"
	"goloja/internal/pkg/logger"
	"goloja/internal/pkg/mercadopago"
)

// Chaves de estado do checkout por sessão.
const (
	processingKeyFmt = "checkoutProcessing_%s"
	draftKeyFmt      = "checkoutDraft_%s"
	preferenceKeyFmt = "lastPreferenceId_%s"
)

// Validade da trava de processamento: se o processo morrer no meio do
// pipeline, a trava expira sozinha em vez de bloquear a sessão para sempre.
const processingTTL = 2 * time.Minute

// CartService é a fatia do carrinho que o checkout consome.
type CartService interface {
	Items(ctx context.Context, sessionID string) ([]domain.CartItem, error)
	Subtotal(ctx context.Context, sessionID string) (float64, error)
	Clear(ctx context.Context, sessionID string) error
}

// AddressValidator valida o endereço de entrega.
type AddressValidator interface {
	IsValid(address domain.Address) bool
}

// OrderCreator registra o pedido na API upstream. A falha aqui é tolerada:
// o pedido interno é melhor esforço, o pagamento segue.
type OrderCreator interface {
	CreateOrder(ctx context.Context, sessionID string, req domain.OrderRequest) (string, error)
}

// Service orquestra o checkout: valida as pré-condições na ordem fixa
// (carrinho → endereço → comprador), grava o rascunho de recuperação, registra
// o pedido em melhor esforço, cria a preferência de pagamento e só então limpa
// o carrinho. Uma preferência sem identificador aborta tudo com o carrinho
// intacto.
type Service struct {
	cart     CartService
	address  AddressValidator
	orders   OrderCreator
	provider mercadopago.PreferenceCreator
	store    kvstore.Client
	audit    domain.CheckoutAuditRepository
	logger   logger.Logger

	frontendOrigin string // raiz das back_urls pós-pagamento
}

// NewService cria e retorna uma nova instância do Orquestrador de Checkout.
func NewService(
	cart CartService,
	address AddressValidator,
	orders OrderCreator,
	provider mercadopago.PreferenceCreator,
	store kvstore.Client,
	audit domain.CheckoutAuditRepository,
	frontendOrigin string,
	log logger.Logger,
) *Service {
	return &Service{
		cart:           cart,
		address:        address,
		orders:         orders,
		provider:       provider,
		store:          store,
		audit:          audit,
		frontendOrigin: frontendOrigin,
		logger:         log,
	}
}

// Result é o desfecho de um checkout bem-sucedido.
type Result struct {
	PreferenceID string `json:"preference_id"`
	OrderID      string `json:"order_id,omitempty"`
	RedirectURL  string `json:"redirect_url"`
}

// Checkout executa o pipeline completo e retorna a URL do checkout hospedado.
// Qualquer pânico no pipeline é recuperado como erro genérico e a trava de
// processamento é sempre liberada.
func (s *Service) Checkout(ctx context.Context, sessionID string, shipping domain.ShippingData, user domain.CheckoutUser) (result Result, err error) {
	if sessionID == "" {
		return Result{}, apperror.NewValidationError("Identificador de sessão é obrigatório.")
	}

	// Trava por sessão: um checkout por vez.
	processingKey := fmt.Sprintf(processingKeyFmt, sessionID)
	if _, perr := s.store.Get(ctx, processingKey); perr == nil {
		return Result{}, apperror.NewConflictError("Já existe um checkout em andamento para esta sessão.")
	}
	if serr := s.store.Set(ctx, processingKey, "1", processingTTL); serr != nil {
		s.logger.Warn("Falha ao gravar a trava de checkout. Prosseguindo sem trava.", map[string]interface{}{"session_id": sessionID})
	}

	defer func() {
		// A trava é liberada em todo desfecho, inclusive pânico.
		s.store.Delete(ctx, processingKey)

		if r := recover(); r != nil {
			s.logger.Error("Pânico no pipeline de checkout.", fmt.Errorf("%v", r))
			result = Result{}
			err = apperror.NewInternalError("Erro inesperado ao processar o pagamento. Tente novamente.", nil)
		}
	}()

	// 1. Carrinho não pode estar vazio.
	items, err := s.cart.Items(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	if len(items) == 0 {
		return Result{}, apperror.NewValidationError("O carrinho está vazio.")
	}

	// 2. Endereço de entrega completo.
	if !s.address.IsValid(shipping.Address) {
		return Result{}, apperror.NewValidationError("Endereço de entrega incompleto. Preencha o endereço antes de pagar.")
	}

	// 3. Comprador identificado.
	if user.Email == "" {
		return Result{}, apperror.NewValidationError("Faça login para concluir a compra.")
	}

	subtotal, err := s.cart.Subtotal(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	total := subtotal + shipping.Cost

	// 4. Rascunho de recuperação antes de qualquer chamada externa.
	now := time.Now()
	draft := domain.CheckoutDraft{
		CartItems: items,
		Shipping:  shipping,
		User:      user,
		Timestamp: now.UnixMilli(),
	}
	s.saveDraft(ctx, sessionID, draft)

	// 5. Pedido interno em melhor esforço: a falha é registrada e o
	// pagamento segue mesmo assim.
	transactionID := uuid.New().String()
	orderID, err := s.orders.CreateOrder(ctx, sessionID, buildOrderRequest(items, shipping, user, transactionID, subtotal, total))
	if err != nil {
		s.logger.Warn("Falha ao registrar o pedido interno. Prosseguindo com o pagamento.", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		orderID = ""
	}

	// 6. Preferência de pagamento. Falha aqui aborta com o carrinho intacto.
	externalReference := fmt.Sprintf("%s_%d", user.Email, now.UnixMilli())
	pref, err := s.provider.CreatePreference(ctx, s.buildPreference(items, shipping, user, externalReference))
	if err != nil {
		return Result{}, err
	}

	// 7. Auditoria da tentativa, em melhor esforço: o pagamento já existe.
	attempt := domain.CheckoutAttempt{
		ID:           uuid.New().String(),
		SessionID:    sessionID,
		UserEmail:    user.Email,
		PreferenceID: pref.ID,
		OrderID:      orderID,
		Subtotal:     subtotal,
		ShippingCost: shipping.Cost,
		Total:        total,
		CreatedAt:    now,
	}
	if aerr := s.audit.Save(ctx, attempt); aerr != nil {
		s.logger.Error("Falha ao registrar a auditoria de checkout.", aerr)
	}

	// 8. Guardar a preferência da sessão para a página de retorno.
	if serr := s.store.Set(ctx, fmt.Sprintf(preferenceKeyFmt, sessionID), pref.ID, 0); serr != nil {
		s.logger.Warn("Falha ao guardar o identificador da preferência.", map[string]interface{}{"session_id": sessionID})
	}

	// 9. Carrinho limpo somente depois da preferência criada.
	if cerr := s.cart.Clear(ctx, sessionID); cerr != nil {
		s.logger.Warn("Falha ao limpar o carrinho após o checkout.", map[string]interface{}{"session_id": sessionID})
	}

	s.logger.Info("Checkout concluído.", map[string]interface{}{"session_id": sessionID, "preference_id": pref.ID, "total": total})

	return Result{
		PreferenceID: pref.ID,
		OrderID:      orderID,
		RedirectURL:  s.provider.RedirectURL(pref.ID),
	}, nil
}

// AttemptsByEmail lista o histórico de tentativas de checkout do comprador,
// mais recentes primeiro.
func (s *Service) AttemptsByEmail(ctx context.Context, email string) ([]domain.CheckoutAttempt, error) {
	if email == "" {
		return nil, apperror.NewValidationError("E-mail do comprador é obrigatório.")
	}
	return s.audit.FindByEmail(ctx, email)
}

// LoadDraft recupera o rascunho de checkout da sessão, se houver.
func (s *Service) LoadDraft(ctx context.Context, sessionID string) (domain.CheckoutDraft, bool, error) {
	if sessionID == "" {
		return domain.CheckoutDraft{}, false, apperror.NewValidationError("Identificador de sessão é obrigatório.")
	}

	raw, err := s.store.Get(ctx, fmt.Sprintf(draftKeyFmt, sessionID))
	if err == kvstore.ErrNotFound {
		return domain.CheckoutDraft{}, false, nil
	}
	if err != nil {
		return domain.CheckoutDraft{}, false, nil
	}

	var draft domain.CheckoutDraft
	if uerr := json.Unmarshal([]byte(raw), &draft); uerr != nil {
		s.store.Delete(ctx, fmt.Sprintf(draftKeyFmt, sessionID))
		return domain.CheckoutDraft{}, false, nil
	}
	return draft, true, nil
}

// Abandon descarta o rascunho de checkout da sessão.
func (s *Service) Abandon(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.store.Delete(ctx, fmt.Sprintf(draftKeyFmt, sessionID))
}

// LastPreferenceID retorna a última preferência criada pela sessão.
func (s *Service) LastPreferenceID(ctx context.Context, sessionID string) (string, bool) {
	id, err := s.store.Get(ctx, fmt.Sprintf(preferenceKeyFmt, sessionID))
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

// saveDraft grava o rascunho de recuperação em melhor esforço.
func (s *Service) saveDraft(ctx context.Context, sessionID string, draft domain.CheckoutDraft) {
	raw, err := json.Marshal(draft)
	if err != nil {
		s.logger.Warn("Falha ao serializar o rascunho de checkout.", map[string]interface{}{"session_id": sessionID})
		return
	}
	if err := s.store.Set(ctx, fmt.Sprintf(draftKeyFmt, sessionID), string(raw), 0); err != nil {
		s.logger.Warn("Falha ao gravar o rascunho de checkout.", map[string]interface{}{"session_id": sessionID})
	}
}

// buildPreference monta a preferência no formato do Mercado Pago: título,
// quantidade mínima 1, preço unitário com duas casas, moeda BRL e CEP só com
// dígitos.
func (s *Service) buildPreference(items []domain.CartItem, shipping domain.ShippingData, user domain.CheckoutUser, externalReference string) mercadopago.PreferenceRequest {
	mpItems := make([]mercadopago.Item, 0, len(items))
	for _, item := range items {
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		mpItems = append(mpItems, mercadopago.Item{
			ID:         fmt.Sprintf("%d", item.ProductID),
			Title:      item.Nome,
			Quantity:   quantity,
			CurrencyID: "BRL",
			UnitPrice:  roundCents(item.UnitPrice),
			PictureURL: item.Imagem,
		})
	}

	address := mercadopago.Address{
		ZipCode:      digitsOnly(shipping.Address.CEP),
		StreetName:   shipping.Address.Rua,
		StreetNumber: shipping.Address.Numero,
		Neighborhood: shipping.Address.Bairro,
		City:         shipping.Address.Cidade,
		FederalUnit:  shipping.Address.Estado,
	}

	return mercadopago.PreferenceRequest{
		Items: mpItems,
		Payer: mercadopago.Payer{
			Name:    user.Name,
			Email:   user.Email,
			Address: address,
		},
		Shipments: mercadopago.Shipments{
			Cost:            roundCents(shipping.Cost),
			Mode:            "not_specified",
			ReceiverAddress: &address,
		},
		BackURLs: mercadopago.BackURLs{
			Success: s.frontendOrigin + "/checkout/success",
			Failure: s.frontendOrigin + "/checkout/failure",
			Pending: s.frontendOrigin + "/checkout/pending",
		},
		AutoReturn:        "approved",
		ExternalReference: externalReference,
	}
}

// buildOrderRequest monta o payload de criação de pedido com o endereço
// desnormalizado e o status inicial pendente.
func buildOrderRequest(items []domain.CartItem, shipping domain.ShippingData, user domain.CheckoutUser, transactionID string, subtotal, total float64) domain.OrderRequest {
	products := make([]domain.OrderProduct, 0, len(items))
	for _, item := range items {
		products = append(products, domain.OrderProduct{ID: item.ProductID, Quantity: item.Quantity})
	}

	return domain.OrderRequest{
		User:          user.Name,
		UserEmail:     user.Email,
		Status:        domain.OrderStatusPending,
		TransactionID: transactionID,
		CEP:           shipping.Address.CEP,
		Estado:        shipping.Address.Estado,
		Cidade:        shipping.Address.Cidade,
		Bairro:        shipping.Address.Bairro,
		Rua:           shipping.Address.Rua,
		Numero:        shipping.Address.Numero,
		Complemento:   shipping.Address.Complemento,
		Subtotal:      subtotal,
		ShippingCost:  shipping.Cost,
		Total:         total,
		Products:      products,
	}
}

// roundCents arredonda para duas casas decimais.
func roundCents(value float64) float64 {
	return math.Round(value*100) / 100
}

// digitsOnly remove tudo que não é dígito.
func digitsOnly(raw string) string {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			out = append(out, raw[i])
		}
	}
	return string(out)
}
