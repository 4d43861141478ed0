package domain

import (
	"context"
	"time"
)

// TransactionType distinguishes money in from money out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// ParseTransactionType returns the TransactionType for s.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TransactionIncome, TransactionExpense:
		return TransactionType(s), nil
	}
	return "", ErrInvalidInput
}

// Transaction is a single ledger entry. Amount is in minor currency units
// (cents) and always positive; Type carries the sign.
// swagger:model Transaction
type Transaction struct {
	ID         string          `json:"id"`
	FamilyID   string          `json:"family_id"`
	UserID     string          `json:"user_id"`
	CategoryID *string         `json:"category_id"`
	Type       TransactionType `json:"type"`
	Amount     int64           `json:"amount"`
	Note       string          `json:"note"`
	OccurredOn time.Time       `json:"occurred_on"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	// From and To bound occurred_on; zero values mean unbounded.
	From time.Time
	To   time.Time
}

// CategoryTotal is a per-category aggregate for a period.
type CategoryTotal struct {
	CategoryID   *string `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Total        int64   `json:"total"`
}

// MonthlySummary aggregates a family's ledger for one month.
// swagger:model MonthlySummary
type MonthlySummary struct {
	Income     int64            `json:"income"`
	Expenses   int64            `json:"expenses"`
	ByCategory []*CategoryTotal `json:"by_category"`
}

// TransactionRepository defines storage operations for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx *Transaction) error
	GetByID(ctx context.Context, id string) (*Transaction, error)
	ListByFamilyID(ctx context.Context, familyID string, filter TransactionFilter, params PaginationParams) ([]*Transaction, int, error)
	Update(ctx context.Context, tx *Transaction) error
	Delete(ctx context.Context, id string) error
	Summarize(ctx context.Context, familyID string, from, to time.Time) (*MonthlySummary, error)
}

// TransactionService defines ledger operations. Every call checks family
// membership; update and delete additionally require the author or an admin.
type TransactionService interface {
	CreateTransaction(ctx context.Context, userID string, tx *Transaction) (*Transaction, error)
	ListTransactions(ctx context.Context, familyID, userID string, filter TransactionFilter, params PaginationParams) ([]*Transaction, int, error)
	UpdateTransaction(ctx context.Context, userID string, tx *Transaction) (*Transaction, error)
	DeleteTransaction(ctx context.Context, familyID, userID, transactionID string) error
	MonthlySummary(ctx context.Context, familyID, userID string, month time.Time) (*MonthlySummary, error)
}
