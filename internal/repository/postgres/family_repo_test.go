package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"householdledger/internal/domain"
)

func TestFamilyRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO families \(name, owner_id, created_at, updated_at\)`).
		WithArgs("Smith Household", "user-1", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("fam-1"))

	repo := NewFamilyRepository(db)
	f := &domain.Family{Name: "Smith Household", OwnerID: "user-1", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, f))
	require.Equal(t, "fam-1", f.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFamilyRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name, owner_id, created_at, updated_at`).
			WithArgs("fam-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "created_at", "updated_at"}).
				AddRow("fam-1", "Smith Household", "user-1", now, now))

		repo := NewFamilyRepository(db)
		f, err := repo.GetByID(ctx, "fam-1")
		require.NoError(t, err)
		require.Equal(t, "user-1", f.OwnerID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing family returns ErrNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, name, owner_id, created_at, updated_at`).
			WithArgs("fam-x").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "created_at", "updated_at"}))

		repo := NewFamilyRepository(db)
		_, err = repo.GetByID(ctx, "fam-x")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestFamilyRepository_ListByUserID(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT f.id, f.name, f.owner_id, f.created_at, f.updated_at`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "created_at", "updated_at"}).
			AddRow("fam-1", "Smith Household", "user-1", now, now).
			AddRow("fam-2", "Lake House", "user-2", now, now))

	repo := NewFamilyRepository(db)
	families, err := repo.ListByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, families, 2)
	require.Equal(t, "Lake House", families[1].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFamilyRepository_UpdateName(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("success returns updated row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE families\s+SET name = \$2, updated_at = NOW\(\)`).
			WithArgs("fam-1", "New Name").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "created_at", "updated_at"}).
				AddRow("fam-1", "New Name", "user-1", now, now))

		repo := NewFamilyRepository(db)
		f, err := repo.UpdateName(ctx, "fam-1", "New Name")
		require.NoError(t, err)
		require.Equal(t, "New Name", f.Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing family returns ErrNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE families\s+SET name = \$2, updated_at = NOW\(\)`).
			WithArgs("fam-x", "New Name").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "created_at", "updated_at"}))

		repo := NewFamilyRepository(db)
		_, err = repo.UpdateName(ctx, "fam-x", "New Name")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
