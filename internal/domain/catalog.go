package domain

import "encoding/json"

// Product é o produto como servido pela API de catálogo.
type Product struct {
	ID        int64   `json:"id"`
	Nome      string  `json:"nome"`
	Slug      string  `json:"slug"`
	Descricao string  `json:"descricao,omitempty"`
	Preco     float64 `json:"preco"`
	Imagem    string  `json:"imagem,omitempty"`
	Categoria string  `json:"categoria,omitempty"`
	Estoque   int     `json:"estoque,omitempty"`

	// PrecoInvalido marca produtos cujo preço não pôde ser interpretado.
	PrecoInvalido bool `json:"-"`
}

// UnmarshalJSON tolera preço como número ou string decimal, como nos dados
// do carrinho.
func (p *Product) UnmarshalJSON(data []byte) error {
	type alias Product
	aux := struct {
		*alias
		Preco json.RawMessage `json:"preco"`
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	value, ok := parseFlexFloat(aux.Preco)
	p.Preco = value
	p.PrecoInvalido = len(aux.Preco) > 0 && !ok

	return nil
}

// Categoria é a categoria de produtos como servida pela API.
type Categoria struct {
	ID   int64  `json:"id"`
	Nome string `json:"nome"`
	Slug string `json:"slug"`
}
