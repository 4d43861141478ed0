package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"householdledger/internal/domain"
)

type transactionService struct {
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
	familyRepo      domain.FamilyRepository
	memberRepo      domain.FamilyMemberRepository
	contextTimeout  time.Duration
}

// NewTransactionService creates a TransactionService with the given repositories.
func NewTransactionService(
	transactionRepo domain.TransactionRepository,
	categoryRepo domain.CategoryRepository,
	familyRepo domain.FamilyRepository,
	memberRepo domain.FamilyMemberRepository,
	timeout time.Duration,
) domain.TransactionService {
	return &transactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		familyRepo:      familyRepo,
		memberRepo:      memberRepo,
		contextTimeout:  timeout,
	}
}

// requireMember verifies the user belongs to the family (owner counts).
func (s *transactionService) requireMember(ctx context.Context, familyID, userID string) (*domain.Family, *domain.FamilyMember, error) {
	family, err := s.familyRepo.GetByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get family: %w", err)
	}
	member, err := s.memberRepo.Get(ctx, familyID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if family.OwnerID == userID {
				return family, nil, nil
			}
			return nil, nil, domain.ErrPermissionDenied
		}
		return nil, nil, fmt.Errorf("get member: %w", err)
	}
	return family, member, nil
}

func (s *transactionService) validate(ctx context.Context, tx *domain.Transaction) error {
	if _, err := domain.ParseTransactionType(string(tx.Type)); err != nil {
		return domain.ErrInvalidInput
	}
	if tx.Amount <= 0 {
		return domain.ErrInvalidInput
	}
	if tx.OccurredOn.IsZero() {
		return domain.ErrInvalidInput
	}
	tx.Note = strings.TrimSpace(tx.Note)
	if tx.CategoryID != nil {
		cat, err := s.categoryRepo.GetByID(ctx, *tx.CategoryID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrInvalidInput
			}
			return fmt.Errorf("get category: %w", err)
		}
		if cat.FamilyID != tx.FamilyID {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

func (s *transactionService) CreateTransaction(ctx context.Context, userID string, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, _, err := s.requireMember(ctx, tx.FamilyID, userID); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, tx); err != nil {
		return nil, err
	}

	now := time.Now()
	tx.UserID = userID
	tx.CreatedAt = now
	tx.UpdatedAt = now
	if err := s.transactionRepo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return tx, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, familyID, userID string, filter domain.TransactionFilter, params domain.PaginationParams) ([]*domain.Transaction, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, _, err := s.requireMember(ctx, familyID, userID); err != nil {
		return nil, 0, err
	}
	txs, total, err := s.transactionRepo.ListByFamilyID(ctx, familyID, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	if txs == nil {
		txs = []*domain.Transaction{}
	}
	return txs, total, nil
}

// canEdit reports whether the user may update or delete the entry: its
// author, or a family admin/owner.
func canEdit(userID string, family *domain.Family, member *domain.FamilyMember, tx *domain.Transaction) bool {
	if tx.UserID == userID {
		return true
	}
	return domain.IsAdmin(userID, family, member)
}

func (s *transactionService) UpdateTransaction(ctx context.Context, userID string, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	family, member, err := s.requireMember(ctx, tx.FamilyID, userID)
	if err != nil {
		return nil, err
	}
	existing, err := s.transactionRepo.GetByID(ctx, tx.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if existing.FamilyID != tx.FamilyID {
		return nil, domain.ErrNotFound
	}
	if !canEdit(userID, family, member, existing) {
		return nil, domain.ErrForbidden
	}
	if err := s.validate(ctx, tx); err != nil {
		return nil, err
	}

	tx.UserID = existing.UserID
	tx.CreatedAt = existing.CreatedAt
	tx.UpdatedAt = time.Now()
	if err := s.transactionRepo.Update(ctx, tx); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return tx, nil
}

func (s *transactionService) DeleteTransaction(ctx context.Context, familyID, userID, transactionID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	family, member, err := s.requireMember(ctx, familyID, userID)
	if err != nil {
		return err
	}
	existing, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get transaction: %w", err)
	}
	if existing.FamilyID != familyID {
		return domain.ErrNotFound
	}
	if !canEdit(userID, family, member, existing) {
		return domain.ErrForbidden
	}
	if err := s.transactionRepo.Delete(ctx, transactionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (s *transactionService) MonthlySummary(ctx context.Context, familyID, userID string, month time.Time) (*domain.MonthlySummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, _, err := s.requireMember(ctx, familyID, userID); err != nil {
		return nil, err
	}
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	summary, err := s.transactionRepo.Summarize(ctx, familyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("summarize transactions: %w", err)
	}
	return summary, nil
}
