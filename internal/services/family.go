package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"householdledger/internal/domain"
)

type familyService struct {
	familyRepo     domain.FamilyRepository
	memberRepo     domain.FamilyMemberRepository
	contextTimeout time.Duration
}

// NewFamilyService creates a FamilyService with the given repositories.
func NewFamilyService(familyRepo domain.FamilyRepository, memberRepo domain.FamilyMemberRepository, timeout time.Duration) domain.FamilyService {
	return &familyService{
		familyRepo:     familyRepo,
		memberRepo:     memberRepo,
		contextTimeout: timeout,
	}
}

func (s *familyService) CreateFamily(ctx context.Context, name, ownerID string) (*domain.Family, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	family := domain.NewFamily(name, ownerID, now, now)
	if err := s.familyRepo.Create(ctx, family); err != nil {
		return nil, fmt.Errorf("create family: %w", err)
	}

	owner := &domain.FamilyMember{
		FamilyID:  family.ID,
		UserID:    ownerID,
		Role:      domain.RoleOwner,
		CreatedAt: now,
	}
	if err := s.memberRepo.Add(ctx, owner); err != nil {
		return nil, fmt.Errorf("add owner member: %w", err)
	}
	return family, nil
}

func (s *familyService) GetFamily(ctx context.Context, familyID, userID string) (*domain.Family, error) {
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
	return family, nil
}

func (s *familyService) ListMyFamilies(ctx context.Context, userID string) ([]*domain.Family, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	families, err := s.familyRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list families: %w", err)
	}
	if families == nil {
		families = []*domain.Family{}
	}
	return families, nil
}

func (s *familyService) RenameFamily(ctx context.Context, familyID, userID, name string) (*domain.Family, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}

	family, err := s.familyRepo.GetByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get family: %w", err)
	}
	if family.OwnerID != userID {
		member, err := s.memberRepo.Get(ctx, familyID, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrPermissionDenied
			}
			return nil, fmt.Errorf("get member: %w", err)
		}
		if !domain.IsAdmin(userID, family, member) {
			return nil, domain.ErrPermissionDenied
		}
	}

	updated, err := s.familyRepo.UpdateName(ctx, familyID, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("rename family: %w", err)
	}
	return updated, nil
}
