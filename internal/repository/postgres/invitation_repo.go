package postgres

import (
	"context"
	"database/sql"
	"errors"

	"householdledger/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{DB: db}
}

const invitationColumns = `id, family_id, token, email, role, status, expires_at, max_uses, current_uses, created_by, created_at`

func scanInvitation(row interface {
	Scan(dest ...any) error
}) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var email sql.NullString
	err := row.Scan(&inv.ID, &inv.FamilyID, &inv.Token, &email, &inv.Role, &inv.Status,
		&inv.ExpiresAt, &inv.MaxUses, &inv.CurrentUses, &inv.CreatedBy, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		inv.Email = &email.String
	}
	return inv, nil
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (family_id, token, email, role, status, expires_at, max_uses, current_uses, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var email sql.NullString
	if inv.Email != nil {
		email = sql.NullString{String: *inv.Email, Valid: true}
	}
	return r.DB.QueryRowContext(ctx, query,
		inv.FamilyID, inv.Token, email, inv.Role, inv.Status,
		inv.ExpiresAt, inv.MaxUses, inv.CurrentUses, inv.CreatedBy, inv.CreatedAt,
	).Scan(&inv.ID)
}

func (r *invitationRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE token = $1
	`
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) ListByFamilyID(ctx context.Context, familyID string, search string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM invitations
		WHERE family_id = $1 AND ($2 = '' OR email ILIKE '%' || $2 || '%')
	`
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, familyID, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE family_id = $1 AND ($2 = '' OR email ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.DB.QueryContext(ctx, query, familyID, search, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invs := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, 0, err
		}
		invs = append(invs, inv)
	}
	return invs, total, rows.Err()
}

func (r *invitationRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE email = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invs := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

// ConsumeUse increments current_uses in a single guarded UPDATE so concurrent
// accepts can never push the counter past max_uses.
func (r *invitationRepository) ConsumeUse(ctx context.Context, id string) (int, error) {
	query := `
		UPDATE invitations
		SET current_uses = current_uses + 1
		WHERE id = $1 AND current_uses < max_uses
		RETURNING current_uses
	`
	var uses int
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&uses)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrAlreadyUsed
		}
		return 0, err
	}
	return uses, nil
}

func (r *invitationRepository) ReleaseUse(ctx context.Context, id string) error {
	query := `
		UPDATE invitations
		SET current_uses = current_uses - 1
		WHERE id = $1 AND current_uses > 0
	`
	_, err := r.DB.ExecContext(ctx, query, id)
	return err
}

func (r *invitationRepository) UpdateStatus(ctx context.Context, id string, status domain.InvitationStatus) error {
	query := `UPDATE invitations SET status = $2 WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
