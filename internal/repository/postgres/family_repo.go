package postgres

import (
	"context"
	"database/sql"
	"errors"

	"householdledger/internal/domain"
)

type familyRepository struct {
	DB *sql.DB
}

func NewFamilyRepository(db *sql.DB) domain.FamilyRepository {
	return &familyRepository{DB: db}
}

func (r *familyRepository) Create(ctx context.Context, f *domain.Family) error {
	query := `
		INSERT INTO families (name, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, f.Name, f.OwnerID, f.CreatedAt, f.UpdatedAt).Scan(&f.ID)
}

func (r *familyRepository) GetByID(ctx context.Context, id string) (*domain.Family, error) {
	query := `
		SELECT id, name, owner_id, created_at, updated_at
		FROM families
		WHERE id = $1
	`
	f := &domain.Family{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&f.ID, &f.Name, &f.OwnerID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *familyRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Family, error) {
	query := `
		SELECT f.id, f.name, f.owner_id, f.created_at, f.updated_at
		FROM families f
		JOIN family_members m ON m.family_id = f.id
		WHERE m.user_id = $1
		ORDER BY f.created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	families := make([]*domain.Family, 0)
	for rows.Next() {
		f := &domain.Family{}
		if err := rows.Scan(&f.ID, &f.Name, &f.OwnerID, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		families = append(families, f)
	}
	return families, rows.Err()
}

func (r *familyRepository) UpdateName(ctx context.Context, id, name string) (*domain.Family, error) {
	query := `
		UPDATE families
		SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, owner_id, created_at, updated_at
	`
	f := &domain.Family{}
	err := r.DB.QueryRowContext(ctx, query, id, name).
		Scan(&f.ID, &f.Name, &f.OwnerID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}
