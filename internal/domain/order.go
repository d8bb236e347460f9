package domain

import (
	"context"
	"time"
)

// OrderStatus é o status de um pedido na API de pedidos.
type OrderStatus string

// Transições de status aceitas pela API (enviadas como PATCH parcial).
const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCompleted  OrderStatus = "completed"
)

// ValidOrderStatus informa se o status é uma transição conhecida.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCancelled,
		OrderStatusShipped, OrderStatusCompleted:
		return true
	}
	return false
}

// Order é o pedido como retornado pela API upstream.
type Order struct {
	ID           int64          `json:"id"`
	User         string         `json:"user"`
	UserEmail    string         `json:"user_email"`
	Status       OrderStatus    `json:"status"`
	Subtotal     float64        `json:"subtotal"`
	ShippingCost float64        `json:"shipping_cost"`
	Total        float64        `json:"total"`
	Products     []OrderProduct `json:"products"`
	CreatedAt    time.Time      `json:"created_at"`
}

// OrderProduct referencia um produto do catálogo dentro de um pedido.
type OrderProduct struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

// OrderRequest é o payload de criação de pedido enviado à API durante o
// checkout (dados do comprador, endereço desnormalizado e totais).
type OrderRequest struct {
	User          string         `json:"user"`
	UserEmail     string         `json:"user_email"`
	Status        OrderStatus    `json:"status"`
	PaymentID     string         `json:"payment_id"`
	TransactionID string         `json:"transaction_id"`
	CEP           string         `json:"cep"`
	Estado        string         `json:"estado"`
	Cidade        string         `json:"cidade"`
	Bairro        string         `json:"bairro"`
	Rua           string         `json:"rua"`
	Numero        string         `json:"numero"`
	Complemento   string         `json:"complemento"`
	Subtotal      float64        `json:"subtotal"`
	ShippingCost  float64        `json:"shipping_cost"`
	Total         float64        `json:"total"`
	Products      []OrderProduct `json:"products"`
}

// Session guarda o par de tokens da API de pedidos e o instante de expiração.
// O token de acesso só é utilizável enquanto agora < ExpiresAt; expirado, a
// sessão inteira é descartada (os dois tokens), forçando novo login.
type Session struct {
	AccessToken  string    `json:"access"`
	RefreshToken string    `json:"refresh"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Usable informa se o token de acesso ainda pode ser usado.
func (s Session) Usable(now time.Time) bool {
	return s.AccessToken != "" && now.Before(s.ExpiresAt)
}

// SessionRepository persiste a sessão de forma atômica: os três valores são
// gravados juntos (um blob) ou o login é considerado falho.
type SessionRepository interface {
	Save(ctx context.Context, sessionID string, session Session) error
	Load(ctx context.Context, sessionID string) (Session, bool, error)
	Clear(ctx context.Context, sessionID string) error
}
