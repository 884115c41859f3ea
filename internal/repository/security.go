package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"receivables-desk/internal/domain"
)

var ErrNotFound = errors.New("not found")

type SecurityRepository struct {
	db *sql.DB
}

func NewSecurityRepository(db *sql.DB) *SecurityRepository {
	return &SecurityRepository{db: db}
}

func (r *SecurityRepository) Get(ctx context.Context, id string) (domain.Security, error) {
	var (
		sec            domain.Security
		expectedReturn sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, total_value::text, expected_return::text, risk_grade, duration
		FROM securities WHERE id = $1`, id,
	).Scan(&sec.ID, &sec.Title, &sec.TotalValue, &expectedReturn, &sec.RiskGrade, &sec.Duration)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Security{}, fmt.Errorf("security %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Security{}, err
	}

	if expectedReturn.Valid {
		sec.ExpectedReturn = &expectedReturn.String
	}
	return sec, nil
}
