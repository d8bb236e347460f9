package checkoutrepo

import (
	"context"
	"database/sql"
	"time"

	"goloja/internal/domain"
	apperror "goloja/internal/errors"
	"goloja/internal/pkg/logger"
)

// CheckoutRepository implementa domain.CheckoutAuditRepository sobre o
// PostgreSQL. Cada tentativa de checkout que gerou preferência de pagamento
// vira uma linha de auditoria, consultável por e-mail do comprador.
type CheckoutRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	Logger    logger.Logger
}

// NewCheckoutRepository cria e retorna uma nova instância do Repositório.
func NewCheckoutRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *CheckoutRepository {
	return &CheckoutRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		Logger:    log,
	}
}

// Save insere uma tentativa de checkout na tabela de auditoria.
func (r *CheckoutRepository) Save(ctx context.Context, attempt domain.CheckoutAttempt) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const attemptSQL = `INSERT INTO checkout_attempts
		(id, session_id, user_email, preference_id, order_id, subtotal, shipping_cost, total, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err := r.DB.ExecContext(ctxTimeout, attemptSQL,
		attempt.ID,
		attempt.SessionID,
		attempt.UserEmail,
		attempt.PreferenceID,
		attempt.OrderID,
		attempt.Subtotal,
		attempt.ShippingCost,
		attempt.Total,
		attempt.CreatedAt,
	)

	if err != nil {
		return apperror.NewDBError("Falha ao registrar tentativa de checkout", err)
	}

	return nil
}

// FindByEmail lista as tentativas de checkout de um comprador, mais recentes
// primeiro.
func (r *CheckoutRepository) FindByEmail(ctx context.Context, email string) ([]domain.CheckoutAttempt, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const listSQL = `
		SELECT id, session_id, user_email, preference_id, order_id, subtotal, shipping_cost, total, created_at
		FROM checkout_attempts
		WHERE user_email = $1
		ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, listSQL, email)
	if err != nil {
		return nil, apperror.NewDBError("Falha ao consultar tentativas de checkout", err)
	}
	defer rows.Close()

	attempts := []domain.CheckoutAttempt{}
	for rows.Next() {
		var a domain.CheckoutAttempt
		if err := rows.Scan(
			&a.ID,
			&a.SessionID,
			&a.UserEmail,
			&a.PreferenceID,
			&a.OrderID,
			&a.Subtotal,
			&a.ShippingCost,
			&a.Total,
			&a.CreatedAt,
		); err != nil {
			return nil, apperror.NewDBError("Falha ao ler tentativa de checkout", err)
		}
		attempts = append(attempts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao percorrer tentativas de checkout", err)
	}

	return attempts, nil
}
