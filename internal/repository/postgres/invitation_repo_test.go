package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"householdledger/internal/domain"
)

func TestInvitationRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	email := "invitee@example.com"

	tests := []struct {
		name    string
		inv     *domain.Invitation
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
	}{
		{
			name: "email invitation",
			inv: &domain.Invitation{
				FamilyID:  "fam-1",
				Token:     "tok-1",
				Email:     &email,
				Role:      domain.RoleMember,
				Status:    domain.InvitationPending,
				ExpiresAt: now.Add(72 * time.Hour),
				MaxUses:   1,
				CreatedBy: "user-1",
				CreatedAt: now,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO invitations`).
					WithArgs("fam-1", "tok-1", sqlmock.AnyArg(), "member", "pending",
						now.Add(72*time.Hour), 1, 0, "user-1", now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inv-1"))
			},
		},
		{
			name: "generic invitation with null email",
			inv: &domain.Invitation{
				FamilyID:  "fam-1",
				Token:     "tok-2",
				Role:      domain.RoleMember,
				Status:    domain.InvitationPending,
				ExpiresAt: now.Add(72 * time.Hour),
				MaxUses:   5,
				CreatedBy: "user-1",
				CreatedAt: now,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO invitations`).
					WithArgs("fam-1", "tok-2", sqlmock.AnyArg(), "member", "pending",
						now.Add(72*time.Hour), 5, 0, "user-1", now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inv-2"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewInvitationRepository(db)
			err = repo.Create(ctx, tt.inv)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, tt.inv.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInvitationRepository_GetByToken(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, family_id, token, email, role, status`).
			WithArgs("tok-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "family_id", "token", "email", "role", "status",
				"expires_at", "max_uses", "current_uses", "created_by", "created_at",
			}).AddRow("inv-1", "fam-1", "tok-1", nil, "member", "pending",
				now.Add(time.Hour), 1, 0, "user-1", now))

		repo := NewInvitationRepository(db)
		inv, err := repo.GetByToken(ctx, "tok-1")
		require.NoError(t, err)
		require.Equal(t, "inv-1", inv.ID)
		require.Nil(t, inv.Email)
		require.Equal(t, domain.InvitationPending, inv.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown token returns ErrNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, family_id, token, email, role, status`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "family_id", "token", "email", "role", "status",
				"expires_at", "max_uses", "current_uses", "created_by", "created_at",
			}))

		repo := NewInvitationRepository(db)
		_, err = repo.GetByToken(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInvitationRepository_ConsumeUse(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		mock     func(mock sqlmock.Sqlmock)
		wantUses int
		wantErr  error
	}{
		{
			name: "increments and returns new count",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE invitations\s+SET current_uses = current_uses \+ 1\s+WHERE id = \$1 AND current_uses < max_uses`).
					WithArgs("inv-1").
					WillReturnRows(sqlmock.NewRows([]string{"current_uses"}).AddRow(3))
			},
			wantUses: 3,
		},
		{
			name: "exhausted returns ErrAlreadyUsed",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE invitations\s+SET current_uses = current_uses \+ 1\s+WHERE id = \$1 AND current_uses < max_uses`).
					WithArgs("inv-1").
					WillReturnRows(sqlmock.NewRows([]string{"current_uses"}))
			},
			wantErr: domain.ErrAlreadyUsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewInvitationRepository(db)
			uses, err := repo.ConsumeUse(ctx, "inv-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantUses, uses)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInvitationRepository_ReleaseUse(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE invitations\s+SET current_uses = current_uses - 1\s+WHERE id = \$1 AND current_uses > 0`).
		WithArgs("inv-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewInvitationRepository(db)
	require.NoError(t, repo.ReleaseUse(ctx, "inv-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_ListByFamilyID(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("fam-1", "alice").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT id, family_id, token, email, role, status`).
		WithArgs("fam-1", "alice", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "family_id", "token", "email", "role", "status",
			"expires_at", "max_uses", "current_uses", "created_by", "created_at",
		}).AddRow("inv-1", "fam-1", "tok-1", "alice@example.com", "member", "pending",
			now.Add(time.Hour), 1, 0, "user-1", now))

	repo := NewInvitationRepository(db)
	invs, total, err := repo.ListByFamilyID(ctx, "fam-1", "alice", domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, invs, 1)
	require.NotNil(t, invs[0].Email)
	require.Equal(t, "alice@example.com", *invs[0].Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE invitations SET status = \$2 WHERE id = \$1`).
					WithArgs("inv-1", "accepted").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "missing invitation returns ErrNotFound",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE invitations SET status = \$2 WHERE id = \$1`).
					WithArgs("inv-1", "accepted").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewInvitationRepository(db)
			err = repo.UpdateStatus(ctx, "inv-1", domain.InvitationAccepted)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
