package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateCategory is returned when a category name already exists in the family.
var ErrDuplicateCategory = errors.New("category name already in use")

// Category is a family-scoped transaction category. Name is unique per family.
// swagger:model Category
type Category struct {
	ID        string          `json:"id"`
	FamilyID  string          `json:"family_id"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
}

// CategoryRepository defines storage operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, cat *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	ListByFamilyID(ctx context.Context, familyID string) ([]*Category, error)
	Update(ctx context.Context, cat *Category) error
	Delete(ctx context.Context, id string) error
}

// CategoryService defines category operations. Listing requires membership;
// mutations require admin or owner.
type CategoryService interface {
	CreateCategory(ctx context.Context, userID string, cat *Category) (*Category, error)
	ListCategories(ctx context.Context, familyID, userID string) ([]*Category, error)
	UpdateCategory(ctx context.Context, userID string, cat *Category) (*Category, error)
	DeleteCategory(ctx context.Context, familyID, userID, categoryID string) error
}
