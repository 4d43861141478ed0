package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"householdledger/internal/domain"
)

func TestFamilyMemberRepository_Add(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	tests := []struct {
		name    string
		member  *domain.FamilyMember
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name:   "success",
			member: &domain.FamilyMember{FamilyID: "fam-1", UserID: "user-1", Role: domain.RoleMember, CreatedAt: now},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO family_members \(family_id, user_id, role, created_at\)`).
					WithArgs("fam-1", "user-1", "member", now).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:   "duplicate returns ErrAlreadyMember",
			member: &domain.FamilyMember{FamilyID: "fam-1", UserID: "user-1", Role: domain.RoleMember, CreatedAt: now},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO family_members \(family_id, user_id, role, created_at\)`).
					WithArgs("fam-1", "user-1", "member", now).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: domain.ErrAlreadyMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewFamilyMemberRepository(db)
			err = repo.Add(ctx, tt.member)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFamilyMemberRepository_Get(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT family_id, user_id, role, created_at`).
			WithArgs("fam-1", "user-1").
			WillReturnRows(sqlmock.NewRows([]string{"family_id", "user_id", "role", "created_at"}).
				AddRow("fam-1", "user-1", "admin", now))

		repo := NewFamilyMemberRepository(db)
		m, err := repo.Get(ctx, "fam-1", "user-1")
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, m.Role)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not a member returns ErrNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT family_id, user_id, role, created_at`).
			WithArgs("fam-1", "user-2").
			WillReturnRows(sqlmock.NewRows([]string{"family_id", "user_id", "role", "created_at"}))

		repo := NewFamilyMemberRepository(db)
		_, err = repo.Get(ctx, "fam-1", "user-2")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestFamilyMemberRepository_ListByFamilyID(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT m.family_id, m.user_id, m.role, m.created_at, u.name, u.email`).
		WithArgs("fam-1").
		WillReturnRows(sqlmock.NewRows([]string{"family_id", "user_id", "role", "created_at", "name", "email"}).
			AddRow("fam-1", "user-a", "owner", now, "Alice", "alice@example.com").
			AddRow("fam-1", "user-b", "member", now, "Bob", "bob@example.com"))

	repo := NewFamilyMemberRepository(db)
	members, err := repo.ListByFamilyID(ctx, "fam-1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, "Alice", members[0].Name)
	require.Equal(t, domain.RoleOwner, members[0].Role)
	require.Equal(t, "bob@example.com", members[1].Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFamilyMemberRepository_UpdateRole(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE family_members\s+SET role = \$3`).
					WithArgs("fam-1", "user-1", "admin").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "missing member returns ErrNotFound",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE family_members\s+SET role = \$3`).
					WithArgs("fam-1", "user-1", "admin").
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
			repo := NewFamilyMemberRepository(db)
			err = repo.UpdateRole(ctx, "fam-1", "user-1", domain.RoleAdmin)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFamilyMemberRepository_Remove(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM family_members WHERE family_id = \$1 AND user_id = \$2`).
					WithArgs("fam-1", "user-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "missing member returns ErrNotFound",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM family_members WHERE family_id = \$1 AND user_id = \$2`).
					WithArgs("fam-1", "user-1").
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
			repo := NewFamilyMemberRepository(db)
			err = repo.Remove(ctx, "fam-1", "user-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
