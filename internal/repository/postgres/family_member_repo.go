package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"householdledger/internal/domain"
)

type familyMemberRepository struct {
	DB *sql.DB
}

func NewFamilyMemberRepository(db *sql.DB) domain.FamilyMemberRepository {
	return &familyMemberRepository{DB: db}
}

func (r *familyMemberRepository) Add(ctx context.Context, m *domain.FamilyMember) error {
	query := `
		INSERT INTO family_members (family_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.DB.ExecContext(ctx, query, m.FamilyID, m.UserID, m.Role, m.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrAlreadyMember
		}
		return err
	}
	return nil
}

func (r *familyMemberRepository) Get(ctx context.Context, familyID, userID string) (*domain.FamilyMember, error) {
	query := `
		SELECT family_id, user_id, role, created_at
		FROM family_members
		WHERE family_id = $1 AND user_id = $2
	`
	m := &domain.FamilyMember{}
	err := r.DB.QueryRowContext(ctx, query, familyID, userID).
		Scan(&m.FamilyID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *familyMemberRepository) ListByFamilyID(ctx context.Context, familyID string) ([]*domain.FamilyMember, error) {
	query := `
		SELECT m.family_id, m.user_id, m.role, m.created_at, u.name, u.email
		FROM family_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.family_id = $1
		ORDER BY m.created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*domain.FamilyMember, 0)
	for rows.Next() {
		m := &domain.FamilyMember{}
		var name sql.NullString
		if err := rows.Scan(&m.FamilyID, &m.UserID, &m.Role, &m.CreatedAt, &name, &m.Email); err != nil {
			return nil, err
		}
		m.Name = name.String
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *familyMemberRepository) UpdateRole(ctx context.Context, familyID, userID string, role domain.Role) error {
	query := `
		UPDATE family_members
		SET role = $3
		WHERE family_id = $1 AND user_id = $2
	`
	result, err := r.DB.ExecContext(ctx, query, familyID, userID, role)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *familyMemberRepository) Remove(ctx context.Context, familyID, userID string) error {
	query := `DELETE FROM family_members WHERE family_id = $1 AND user_id = $2`
	result, err := r.DB.ExecContext(ctx, query, familyID, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
