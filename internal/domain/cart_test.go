package domain_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"goloja/internal/domain"
)

func mustParse(value string) time.Time {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return ts
}

// TestCartItem_PrecoNumeroOuString testa que as duas grafias de preço dos
// dados legados são aceitas.
func TestCartItem_PrecoNumeroOuString(t *testing.T) {
	var numero domain.CartItem
	err := json.Unmarshal([]byte(`{"id":1,"nome":"Caneca","preco":25.9,"quantity":2}`), &numero)
	assert.NoError(t, err)
	assert.InDelta(t, 25.9, numero.UnitPrice, 0.0001)
	assert.False(t, numero.PrecoInvalido)

	var texto domain.CartItem
	err = json.Unmarshal([]byte(`{"id":2,"nome":"Camiseta","preco":"49.90","quantity":1}`), &texto)
	assert.NoError(t, err)
	assert.InDelta(t, 49.90, texto.UnitPrice, 0.0001)
	assert.False(t, texto.PrecoInvalido)
}

// TestCartItem_PrecoIlegivelNuncaViraNaN testa que preço ilegível é marcado
// e zerado, nunca NaN.
func TestCartItem_PrecoIlegivelNuncaViraNaN(t *testing.T) {
	var item domain.CartItem
	err := json.Unmarshal([]byte(`{"id":3,"nome":"Boné","preco":"gratis","quantity":1}`), &item)

	assert.NoError(t, err)
	assert.True(t, item.PrecoInvalido)
	assert.Equal(t, 0.0, item.UnitPrice)
	assert.False(t, math.IsNaN(item.UnitPrice))
}

// TestCartItem_GrafiasDeQuantidade testa que quantity e quantidade coexistem.
func TestCartItem_GrafiasDeQuantidade(t *testing.T) {
	var moderna domain.CartItem
	assert.NoError(t, json.Unmarshal([]byte(`{"id":1,"quantity":3}`), &moderna))
	assert.Equal(t, 3, moderna.Quantity)

	var legada domain.CartItem
	assert.NoError(t, json.Unmarshal([]byte(`{"id":1,"quantidade":4}`), &legada))
	assert.Equal(t, 4, legada.Quantity)
}

// TestCartItem_UnitPriceComoAlias testa a grafia unit_price.
func TestCartItem_UnitPriceComoAlias(t *testing.T) {
	var item domain.CartItem
	assert.NoError(t, json.Unmarshal([]byte(`{"id":1,"unit_price":"10.00","quantity":1}`), &item))
	assert.InDelta(t, 10.0, item.UnitPrice, 0.0001)
}

// TestSession_Usable testa a janela de validade do token de acesso.
func TestSession_Usable(t *testing.T) {
	s := domain.Session{AccessToken: "acc"}

	s.ExpiresAt = mustParse("2026-01-01T12:00:00Z")
	assert.True(t, s.Usable(mustParse("2026-01-01T11:59:59Z")))
	assert.False(t, s.Usable(mustParse("2026-01-01T12:00:00Z")))

	vazia := domain.Session{}
	assert.False(t, vazia.Usable(mustParse("2026-01-01T00:00:00Z")))
}
