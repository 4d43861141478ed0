package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"householdledger/internal/domain"
)

type transactionRepository struct {
	DB *sql.DB
}

func NewTransactionRepository(db *sql.DB) domain.TransactionRepository {
	return &transactionRepository{DB: db}
}

const transactionColumns = `id, family_id, user_id, category_id, type, amount, note, occurred_on, created_at, updated_at`

func scanTransaction(row interface {
	Scan(dest ...any) error
}) (*domain.Transaction, error) {
	tx := &domain.Transaction{}
	var categoryID sql.NullString
	err := row.Scan(&tx.ID, &tx.FamilyID, &tx.UserID, &categoryID, &tx.Type,
		&tx.Amount, &tx.Note, &tx.OccurredOn, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		tx.CategoryID = &categoryID.String
	}
	return tx, nil
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (family_id, user_id, category_id, type, amount, note, occurred_on, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	var categoryID sql.NullString
	if tx.CategoryID != nil {
		categoryID = sql.NullString{String: *tx.CategoryID, Valid: true}
	}
	return r.DB.QueryRowContext(ctx, query,
		tx.FamilyID, tx.UserID, categoryID, tx.Type, tx.Amount, tx.Note,
		tx.OccurredOn, tx.CreatedAt, tx.UpdatedAt,
	).Scan(&tx.ID)
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1
	`
	tx, err := scanTransaction(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return tx, nil
}

func (r *transactionRepository) ListByFamilyID(ctx context.Context, familyID string, filter domain.TransactionFilter, params domain.PaginationParams) ([]*domain.Transaction, int, error) {
	var from, to sql.NullTime
	if !filter.From.IsZero() {
		from = sql.NullTime{Time: filter.From, Valid: true}
	}
	if !filter.To.IsZero() {
		to = sql.NullTime{Time: filter.To, Valid: true}
	}

	countQuery := `
		SELECT COUNT(*)
		FROM transactions
		WHERE family_id = $1
		  AND ($2::timestamptz IS NULL OR occurred_on >= $2)
		  AND ($3::timestamptz IS NULL OR occurred_on < $3)
	`
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, familyID, from, to).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE family_id = $1
		  AND ($2::timestamptz IS NULL OR occurred_on >= $2)
		  AND ($3::timestamptz IS NULL OR occurred_on < $3)
		ORDER BY occurred_on DESC, created_at DESC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.DB.QueryContext(ctx, query, familyID, from, to, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	txs := make([]*domain.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		txs = append(txs, tx)
	}
	return txs, total, rows.Err()
}

func (r *transactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET category_id = $2, type = $3, amount = $4, note = $5, occurred_on = $6, updated_at = $7
		WHERE id = $1
	`
	var categoryID sql.NullString
	if tx.CategoryID != nil {
		categoryID = sql.NullString{String: *tx.CategoryID, Valid: true}
	}
	result, err := r.DB.ExecContext(ctx, query, tx.ID, categoryID, tx.Type, tx.Amount, tx.Note, tx.OccurredOn, tx.UpdatedAt)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *transactionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM transactions WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *transactionRepository) Summarize(ctx context.Context, familyID string, from, to time.Time) (*domain.MonthlySummary, error) {
	totalsQuery := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
		FROM transactions
		WHERE family_id = $1 AND occurred_on >= $2 AND occurred_on < $3
	`
	summary := &domain.MonthlySummary{ByCategory: []*domain.CategoryTotal{}}
	if err := r.DB.QueryRowContext(ctx, totalsQuery, familyID, from, to).
		Scan(&summary.Income, &summary.Expenses); err != nil {
		return nil, err
	}

	byCategoryQuery := `
		SELECT t.category_id, COALESCE(c.name, 'uncategorized'), SUM(t.amount)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.family_id = $1 AND t.type = 'expense' AND t.occurred_on >= $2 AND t.occurred_on < $3
		GROUP BY t.category_id, c.name
		ORDER BY SUM(t.amount) DESC
	`
	rows, err := r.DB.QueryContext(ctx, byCategoryQuery, familyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		ct := &domain.CategoryTotal{}
		var categoryID sql.NullString
		if err := rows.Scan(&categoryID, &ct.CategoryName, &ct.Total); err != nil {
			return nil, err
		}
		if categoryID.Valid {
			ct.CategoryID = &categoryID.String
		}
		summary.ByCategory = append(summary.ByCategory, ct)
	}
	return summary, rows.Err()
}
