package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"householdledger/internal/domain"
)

// fakeTransactionRepo is an in-memory TransactionRepository for tests.
type fakeTransactionRepo struct {
	byID   map[string]*domain.Transaction
	nextID int
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{byID: make(map[string]*domain.Transaction), nextID: 1}
}

func (f *fakeTransactionRepo) Create(ctx context.Context, tx *domain.Transaction) error {
	tx.ID = fmt.Sprintf("tx-%d", f.nextID)
	f.nextID++
	copied := *tx
	f.byID[tx.ID] = &copied
	return nil
}

func (f *fakeTransactionRepo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	if tx, ok := f.byID[id]; ok {
		copied := *tx
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTransactionRepo) ListByFamilyID(ctx context.Context, familyID string, filter domain.TransactionFilter, params domain.PaginationParams) ([]*domain.Transaction, int, error) {
	var out []*domain.Transaction
	for _, tx := range f.byID {
		if tx.FamilyID != familyID {
			continue
		}
		if !filter.From.IsZero() && tx.OccurredOn.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !tx.OccurredOn.Before(filter.To) {
			continue
		}
		copied := *tx
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (f *fakeTransactionRepo) Update(ctx context.Context, tx *domain.Transaction) error {
	if _, ok := f.byID[tx.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *tx
	f.byID[tx.ID] = &copied
	return nil
}

func (f *fakeTransactionRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTransactionRepo) Summarize(ctx context.Context, familyID string, from, to time.Time) (*domain.MonthlySummary, error) {
	summary := &domain.MonthlySummary{ByCategory: []*domain.CategoryTotal{}}
	for _, tx := range f.byID {
		if tx.FamilyID != familyID || tx.OccurredOn.Before(from) || !tx.OccurredOn.Before(to) {
			continue
		}
		switch tx.Type {
		case domain.TransactionIncome:
			summary.Income += tx.Amount
		case domain.TransactionExpense:
			summary.Expenses += tx.Amount
		}
	}
	return summary, nil
}

// fakeCategoryRepo is an in-memory CategoryRepository for tests.
type fakeCategoryRepo struct {
	byID   map[string]*domain.Category
	nextID int
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{byID: make(map[string]*domain.Category), nextID: 1}
}

func (f *fakeCategoryRepo) Create(ctx context.Context, cat *domain.Category) error {
	for _, existing := range f.byID {
		if existing.FamilyID == cat.FamilyID && existing.Name == cat.Name {
			return domain.ErrDuplicateCategory
		}
	}
	cat.ID = fmt.Sprintf("cat-%d", f.nextID)
	f.nextID++
	f.byID[cat.ID] = cat
	return nil
}

func (f *fakeCategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if cat, ok := f.byID[id]; ok {
		return cat, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCategoryRepo) ListByFamilyID(ctx context.Context, familyID string) ([]*domain.Category, error) {
	var out []*domain.Category
	for _, cat := range f.byID {
		if cat.FamilyID == familyID {
			out = append(out, cat)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, cat *domain.Category) error {
	if _, ok := f.byID[cat.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[cat.ID] = cat
	return nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type ledgerFixture struct {
	service      domain.TransactionService
	familyRepo   *fakeFamilyRepo
	memberRepo   *fakeMemberRepo
	txRepo       *fakeTransactionRepo
	categoryRepo *fakeCategoryRepo
	familyID     string
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	familyRepo := newFakeFamilyRepo()
	memberRepo := newFakeMemberRepo()
	txRepo := newFakeTransactionRepo()
	categoryRepo := newFakeCategoryRepo()

	fam := &domain.Family{Name: "Smith Household", OwnerID: "owner-1"}
	require.NoError(t, familyRepo.Create(context.Background(), fam))
	for id, role := range map[string]domain.Role{
		"owner-1":  domain.RoleOwner,
		"admin-1":  domain.RoleAdmin,
		"member-1": domain.RoleMember,
		"member-2": domain.RoleMember,
	} {
		require.NoError(t, memberRepo.Add(context.Background(), &domain.FamilyMember{
			FamilyID: fam.ID, UserID: id, Role: role,
		}))
	}

	svc := NewTransactionService(txRepo, categoryRepo, familyRepo, memberRepo, 5*time.Second)
	return &ledgerFixture{
		service:      svc,
		familyRepo:   familyRepo,
		memberRepo:   memberRepo,
		txRepo:       txRepo,
		categoryRepo: categoryRepo,
		familyID:     fam.ID,
	}
}

func (fx *ledgerFixture) mustCreate(t *testing.T, userID string, amount int64) *domain.Transaction {
	t.Helper()
	tx, err := fx.service.CreateTransaction(context.Background(), userID, &domain.Transaction{
		FamilyID:   fx.familyID,
		Type:       domain.TransactionExpense,
		Amount:     amount,
		Note:       "groceries",
		OccurredOn: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return tx
}

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("member records an expense", func(t *testing.T) {
		fx := newLedgerFixture(t)
		tx := fx.mustCreate(t, "member-1", 1250)
		assert.Equal(t, "member-1", tx.UserID)
		assert.NotEmpty(t, tx.ID)
	})

	t.Run("non-member is denied", func(t *testing.T) {
		fx := newLedgerFixture(t)
		_, err := fx.service.CreateTransaction(ctx, "stranger", &domain.Transaction{
			FamilyID: fx.familyID, Type: domain.TransactionExpense, Amount: 100,
			OccurredOn: time.Now(),
		})
		require.ErrorIs(t, err, domain.ErrPermissionDenied)
	})

	t.Run("non-positive amount returns ErrInvalidInput", func(t *testing.T) {
		fx := newLedgerFixture(t)
		_, err := fx.service.CreateTransaction(ctx, "member-1", &domain.Transaction{
			FamilyID: fx.familyID, Type: domain.TransactionExpense, Amount: 0,
			OccurredOn: time.Now(),
		})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("category from another family returns ErrInvalidInput", func(t *testing.T) {
		fx := newLedgerFixture(t)
		cat := &domain.Category{FamilyID: "fam-other", Name: "Food", Type: domain.TransactionExpense}
		require.NoError(t, fx.categoryRepo.Create(ctx, cat))

		_, err := fx.service.CreateTransaction(ctx, "member-1", &domain.Transaction{
			FamilyID: fx.familyID, CategoryID: &cat.ID,
			Type: domain.TransactionExpense, Amount: 100, OccurredOn: time.Now(),
		})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("author updates their own entry", func(t *testing.T) {
		fx := newLedgerFixture(t)
		tx := fx.mustCreate(t, "member-1", 1250)

		updated, err := fx.service.UpdateTransaction(ctx, "member-1", &domain.Transaction{
			ID: tx.ID, FamilyID: fx.familyID,
			Type: domain.TransactionExpense, Amount: 2000, Note: "more groceries",
			OccurredOn: tx.OccurredOn,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2000), updated.Amount)
		assert.Equal(t, "member-1", updated.UserID)
	})

	t.Run("admin updates someone else's entry", func(t *testing.T) {
		fx := newLedgerFixture(t)
		tx := fx.mustCreate(t, "member-1", 1250)

		_, err := fx.service.UpdateTransaction(ctx, "admin-1", &domain.Transaction{
			ID: tx.ID, FamilyID: fx.familyID,
			Type: domain.TransactionExpense, Amount: 500, OccurredOn: tx.OccurredOn,
		})
		require.NoError(t, err)
	})

	t.Run("another plain member is forbidden", func(t *testing.T) {
		fx := newLedgerFixture(t)
		tx := fx.mustCreate(t, "member-1", 1250)

		_, err := fx.service.UpdateTransaction(ctx, "member-2", &domain.Transaction{
			ID: tx.ID, FamilyID: fx.familyID,
			Type: domain.TransactionExpense, Amount: 500, OccurredOn: tx.OccurredOn,
		})
		require.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("author deletes their own entry", func(t *testing.T) {
		fx := newLedgerFixture(t)
		tx := fx.mustCreate(t, "member-1", 1250)
		require.NoError(t, fx.service.DeleteTransaction(ctx, fx.familyID, "member-1", tx.ID))
	})

	t.Run("another plain member is forbidden", func(t *testing.T) {
		fx := newLedgerFixture(t)
		tx := fx.mustCreate(t, "member-1", 1250)
		err := fx.service.DeleteTransaction(ctx, fx.familyID, "member-2", tx.ID)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("unknown entry returns ErrNotFound", func(t *testing.T) {
		fx := newLedgerFixture(t)
		err := fx.service.DeleteTransaction(ctx, fx.familyID, "member-1", "tx-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestMonthlySummary(t *testing.T) {
	ctx := context.Background()

	t.Run("sums the requested month only", func(t *testing.T) {
		fx := newLedgerFixture(t)
		fx.mustCreate(t, "member-1", 1000)
		fx.mustCreate(t, "member-1", 500)
		_, err := fx.service.CreateTransaction(ctx, "member-1", &domain.Transaction{
			FamilyID: fx.familyID, Type: domain.TransactionIncome, Amount: 9000,
			OccurredOn: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		// Outside the month.
		_, err = fx.service.CreateTransaction(ctx, "member-1", &domain.Transaction{
			FamilyID: fx.familyID, Type: domain.TransactionExpense, Amount: 7777,
			OccurredOn: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		summary, err := fx.service.MonthlySummary(ctx, fx.familyID, "member-1", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, int64(9000), summary.Income)
		assert.Equal(t, int64(1500), summary.Expenses)
	})

	t.Run("non-member is denied", func(t *testing.T) {
		fx := newLedgerFixture(t)
		_, err := fx.service.MonthlySummary(ctx, fx.familyID, "stranger", time.Now())
		require.ErrorIs(t, err, domain.ErrPermissionDenied)
	})
}
