package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"receivables-desk/internal/domain"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts p and fills CreatedAt from the database.
func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	var createdAt time.Time
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO payments (id, security_id, payment_method, amount, commission, total, card_last4)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		p.ID,
		p.SecurityID,
		string(p.PaymentMethod),
		p.Amount,
		p.Commission,
		p.Total,
		p.CardLast4,
	).Scan(&createdAt)
	if err != nil {
		return fmt.Errorf("insert payment %s: %w", p.ID, err)
	}
	p.CreatedAt = &createdAt
	return nil
}
