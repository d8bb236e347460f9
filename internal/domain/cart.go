package domain

import (
	"context"
	"encoding/json"
)

// CartItem representa uma linha do carrinho: a referência ao produto do
// catálogo mais a quantidade escolhida. Este é o formato canônico: as
// variações históricas de nome de campo (preco/unit_price, quantity/quantidade)
// são resolvidas na desserialização.
type CartItem struct {
	ProductID  int64   `json:"id"`
	Nome       string  `json:"nome"`
	UnitPrice  float64 `json:"preco"`
	Quantity   int     `json:"quantity"`
	StockLimit int     `json:"estoque,omitempty"` // 0 = limite de estoque desconhecido
	Imagem     string  `json:"imagem,omitempty"`

	// PrecoInvalido marca itens cujo preço não pôde ser interpretado na
	// desserialização. O item entra no subtotal como 0 e o serviço de
	// carrinho registra o aviso.
	PrecoInvalido bool `json:"-"`
}

// UnmarshalJSON aceita as duas grafias de quantidade e os dois formatos de
// preço (número ou string decimal) que coexistem nos dados legados.
func (ci *CartItem) UnmarshalJSON(data []byte) error {
	type alias CartItem
	aux := struct {
		*alias
		Preco      json.RawMessage `json:"preco"`
		UnitPreco  json.RawMessage `json:"unit_price"`
		Quantidade int             `json:"quantidade"`
	}{alias: (*alias)(ci)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := aux.Preco
	if len(raw) == 0 {
		raw = aux.UnitPreco
	}
	value, ok := parseFlexFloat(raw)
	ci.UnitPrice = value
	ci.PrecoInvalido = len(raw) > 0 && !ok

	if ci.Quantity == 0 && aux.Quantidade != 0 {
		ci.Quantity = aux.Quantidade
	}

	return nil
}

// CartRepository define o contrato de persistência do carrinho.
// A lista completa é sempre gravada de uma vez, sob uma chave por sessão.
type CartRepository interface {
	GetItems(ctx context.Context, sessionID string) ([]CartItem, error)
	SaveItems(ctx context.Context, sessionID string, items []CartItem) error
}

// CartSubscriber é o callback notificado após cada mutação persistida.
// Recebe a lista completa já atualizada, nunca um estado parcial.
type CartSubscriber func(items []CartItem)
