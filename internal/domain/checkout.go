package domain

import (
	"context"
	"time"
)

// ShippingData agrega o endereço de entrega e o frete já calculado.
type ShippingData struct {
	Address Address `json:"address"`
	Cost    float64 `json:"cost"`
}

// CheckoutUser é a identidade mínima do comprador exigida pelo checkout.
type CheckoutUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CheckoutDraft é o snapshot de recuperação do checkout. É gravado antes do
// redirecionamento ao provedor de pagamento para que um reload (ou o retorno
// do provedor) não perca o contexto, e descartado quando um pedido é obtido
// ou o checkout é abandonado explicitamente.
type CheckoutDraft struct {
	CartItems []CartItem   `json:"cartItems"`
	Shipping  ShippingData `json:"shippingData"`
	User      CheckoutUser `json:"user"`
	Timestamp int64        `json:"timestamp"`
}

// CheckoutAttempt é o registro de auditoria de uma tentativa de checkout que
// chegou a gerar preferência de pagamento.
type CheckoutAttempt struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	UserEmail    string    `json:"user_email"`
	PreferenceID string    `json:"preference_id"`
	OrderID      string    `json:"order_id"`
	Subtotal     float64   `json:"subtotal"`
	ShippingCost float64   `json:"shipping_cost"`
	Total        float64   `json:"total"`
	CreatedAt    time.Time `json:"created_at"`
}

// CheckoutAuditRepository persiste e consulta as tentativas de checkout.
type CheckoutAuditRepository interface {
	Save(ctx context.Context, attempt CheckoutAttempt) error
	FindByEmail(ctx context.Context, email string) ([]CheckoutAttempt, error)
}
