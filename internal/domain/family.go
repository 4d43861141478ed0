package domain

import (
	"context"
	"time"
)

// Family represents a household sharing a ledger. Exactly one owner;
// the owner cannot be changed through membership operations.
// swagger:model Family
type Family struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFamily returns a new Family with the given fields. ID is typically set by the repository on create.
func NewFamily(name, ownerID string, createdAt, updatedAt time.Time) *Family {
	return &Family{
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// FamilyRepository defines the interface for family storage
type FamilyRepository interface {
	Create(ctx context.Context, family *Family) error
	GetByID(ctx context.Context, id string) (*Family, error)
	ListByUserID(ctx context.Context, userID string) ([]*Family, error)
	UpdateName(ctx context.Context, id, name string) (*Family, error)
}

// FamilyService defines family lifecycle operations.
type FamilyService interface {
	// CreateFamily creates the family and the owner membership row.
	CreateFamily(ctx context.Context, name, ownerID string) (*Family, error)
	GetFamily(ctx context.Context, familyID, userID string) (*Family, error)
	ListMyFamilies(ctx context.Context, userID string) ([]*Family, error)
	RenameFamily(ctx context.Context, familyID, userID, name string) (*Family, error)
}
