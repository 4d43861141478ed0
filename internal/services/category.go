package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"householdledger/internal/domain"
)

type categoryService struct {
	categoryRepo   domain.CategoryRepository
	familyRepo     domain.FamilyRepository
	memberRepo     domain.FamilyMemberRepository
	contextTimeout time.Duration
}

// NewCategoryService creates a CategoryService with the given repositories.
func NewCategoryService(categoryRepo domain.CategoryRepository, familyRepo domain.FamilyRepository, memberRepo domain.FamilyMemberRepository, timeout time.Duration) domain.CategoryService {
	return &categoryService{
		categoryRepo:   categoryRepo,
		familyRepo:     familyRepo,
		memberRepo:     memberRepo,
		contextTimeout: timeout,
	}
}

func (s *categoryService) requireAdmin(ctx context.Context, familyID, userID string) error {
	family, err := s.familyRepo.GetByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get family: %w", err)
	}
	if family.OwnerID == userID {
		return nil
	}
	member, err := s.memberRepo.Get(ctx, familyID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrPermissionDenied
		}
		return fmt.Errorf("get member: %w", err)
	}
	if !domain.IsAdmin(userID, family, member) {
		return domain.ErrPermissionDenied
	}
	return nil
}

func validateCategory(cat *domain.Category) error {
	cat.Name = strings.TrimSpace(cat.Name)
	if cat.Name == "" {
		return domain.ErrInvalidInput
	}
	if _, err := domain.ParseTransactionType(string(cat.Type)); err != nil {
		return domain.ErrInvalidInput
	}
	return nil
}

func (s *categoryService) CreateCategory(ctx context.Context, userID string, cat *domain.Category) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, cat.FamilyID, userID); err != nil {
		return nil, err
	}
	if err := validateCategory(cat); err != nil {
		return nil, err
	}
	cat.CreatedAt = time.Now()
	if err := s.categoryRepo.Create(ctx, cat); err != nil {
		if errors.Is(err, domain.ErrDuplicateCategory) {
			return nil, domain.ErrDuplicateCategory
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

func (s *categoryService) ListCategories(ctx context.Context, familyID, userID string) ([]*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	family, err := s.familyRepo.GetByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get family: %w", err)
	}
	if family.OwnerID != userID {
		if _, err := s.memberRepo.Get(ctx, familyID, userID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrPermissionDenied
			}
			return nil, fmt.Errorf("get member: %w", err)
		}
	}
	cats, err := s.categoryRepo.ListByFamilyID(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if cats == nil {
		cats = []*domain.Category{}
	}
	return cats, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, userID string, cat *domain.Category) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, cat.FamilyID, userID); err != nil {
		return nil, err
	}
	existing, err := s.categoryRepo.GetByID(ctx, cat.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	if existing.FamilyID != cat.FamilyID {
		return nil, domain.ErrNotFound
	}
	if err := validateCategory(cat); err != nil {
		return nil, err
	}
	cat.CreatedAt = existing.CreatedAt
	if err := s.categoryRepo.Update(ctx, cat); err != nil {
		if errors.Is(err, domain.ErrDuplicateCategory) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return cat, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, familyID, userID, categoryID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireAdmin(ctx, familyID, userID); err != nil {
		return err
	}
	existing, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get category: %w", err)
	}
	if existing.FamilyID != familyID {
		return domain.ErrNotFound
	}
	if err := s.categoryRepo.Delete(ctx, categoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
