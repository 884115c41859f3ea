package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"receivables-desk/internal/domain"
)

type ReceivablesFilter struct {
	Currency    *string
	RiskLevel   *string
	Category    *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ReceivableRepository struct {
	db *sql.DB
}

func NewReceivableRepository(db *sql.DB) *ReceivableRepository {
	return &ReceivableRepository{db: db}
}

// Create inserts rcv and fills CreatedAt from the database.
func (r *ReceivableRepository) Create(ctx context.Context, rcv *domain.Receivable) error {
	var dueDiligence []byte
	if rcv.DueDiligence != nil {
		var err error
		if dueDiligence, err = json.Marshal(rcv.DueDiligence); err != nil {
			return fmt.Errorf("encode due diligence: %w", err)
		}
	}

	var createdAt time.Time
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO receivables (id, debtor_name, amount, currency, due_date, description, category, risk_level, due_diligence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		rcv.ID,
		rcv.DebtorName,
		rcv.Amount,
		rcv.Currency,
		rcv.DueDate,
		rcv.Description,
		rcv.Category,
		rcv.RiskLevel,
		dueDiligence,
	).Scan(&createdAt)
	if err != nil {
		return fmt.Errorf("insert receivable %s: %w", rcv.ID, err)
	}
	rcv.CreatedAt = &createdAt
	return nil
}

func buildReceivablesWhere(f ReceivablesFilter, startIndex int, args []any) (string, []any) {
	where := []string{"1=1"}
	i := startIndex

	add := func(cond string, v any) {
		where = append(where, fmt.Sprintf(cond, i))
		args = append(args, v)
		i++
	}

	if f.Currency != nil && *f.Currency != "" {
		add("currency = $%d", *f.Currency)
	}
	if f.RiskLevel != nil && *f.RiskLevel != "" {
		add("risk_level = $%d", *f.RiskLevel)
	}
	if f.Category != nil && *f.Category != "" {
		add("category = $%d", *f.Category)
	}
	if f.CreatedFrom != nil {
		add("created_at >= $%d", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		add("created_at <= $%d", *f.CreatedTo)
	}

	return " WHERE " + strings.Join(where, " AND "), args
}

func (r *ReceivableRepository) List(ctx context.Context, f ReceivablesFilter) ([]domain.Receivable, error) {
	where, args := buildReceivablesWhere(f, 1, nil)
	query := `SELECT id, debtor_name, amount::text, currency, to_char(due_date, 'YYYY-MM-DD'), description, category, risk_level, due_diligence, created_at FROM receivables` +
		where + " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Receivable
	for rows.Next() {
		var (
			rcv          domain.Receivable
			dueDiligence []byte
			createdAt    sql.NullTime
		)
		if err := rows.Scan(
			&rcv.ID,
			&rcv.DebtorName,
			&rcv.Amount,
			&rcv.Currency,
			&rcv.DueDate,
			&rcv.Description,
			&rcv.Category,
			&rcv.RiskLevel,
			&dueDiligence,
			&createdAt,
		); err != nil {
			return nil, err
		}

		if len(dueDiligence) > 0 {
			var dd domain.DueDiligence
			if err := json.Unmarshal(dueDiligence, &dd); err != nil {
				return nil, fmt.Errorf("decode due diligence of %s: %w", rcv.ID, err)
			}
			rcv.DueDiligence = &dd
		}
		if createdAt.Valid {
			rcv.CreatedAt = &createdAt.Time
		}

		out = append(out, rcv)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReceivableRepository) HasMoreThan(ctx context.Context, limit int64, f ReceivablesFilter) (bool, error) {
	where, args := buildReceivablesWhere(f, 2, []any{limit})

	var tooMany bool
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) > $1 FROM receivables`+where, args...).Scan(&tooMany); err != nil {
		return false, err
	}
	return tooMany, nil
}
