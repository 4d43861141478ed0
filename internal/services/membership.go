package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"householdledger/internal/domain"
)

const inviteTokenBytes = 32

type membershipService struct {
	familyRepo     domain.FamilyRepository
	memberRepo     domain.FamilyMemberRepository
	invitationRepo domain.InvitationRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	invalidator    domain.MemberCacheInvalidator
	appBaseURL     string
	defaultExpiry  time.Duration
	defaultMaxUses int
	contextTimeout time.Duration
}

// NewMembershipService creates a MembershipService with the given
// repositories and collaborators.
func NewMembershipService(
	familyRepo domain.FamilyRepository,
	memberRepo domain.FamilyMemberRepository,
	invitationRepo domain.InvitationRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	invalidator domain.MemberCacheInvalidator,
	appBaseURL string,
	defaultExpiry time.Duration,
	defaultMaxUses int,
	timeout time.Duration,
) domain.MembershipService {
	return &membershipService{
		familyRepo:     familyRepo,
		memberRepo:     memberRepo,
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		invalidator:    invalidator,
		appBaseURL:     appBaseURL,
		defaultExpiry:  defaultExpiry,
		defaultMaxUses: defaultMaxUses,
		contextTimeout: timeout,
	}
}

// requireAdmin loads the family and verifies the user holds the admin or
// owner role in it.
func (s *membershipService) requireAdmin(ctx context.Context, familyID, userID string) (*domain.Family, error) {
	family, err := s.familyRepo.GetByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get family: %w", err)
	}
	if family.OwnerID == userID {
		return family, nil
	}
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
	return family, nil
}

func (s *membershipService) CreateInvitation(ctx context.Context, familyID, requesterID string, params domain.CreateInvitationParams) (*domain.InvitationWithLink, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	family, err := s.requireAdmin(ctx, familyID, requesterID)
	if err != nil {
		return nil, err
	}

	if params.Role == "" {
		params.Role = domain.RoleMember
	}
	if _, err := domain.ParseRole(string(params.Role)); err != nil {
		return nil, domain.ErrInvalidInput
	}
	if params.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*params.Email))
		if !emailRegexp.MatchString(email) {
			return nil, domain.ErrInvalidInput
		}
		params.Email = &email
	}
	expiresIn := params.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = s.defaultExpiry
	}
	maxUses := params.MaxUses
	if maxUses < 1 {
		maxUses = s.defaultMaxUses
	}
	// An addressed invitation is single-target; capacity beyond one makes no sense.
	if params.Email != nil {
		maxUses = 1
	}

	token, err := generateInviteToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := time.Now()
	inv := &domain.Invitation{
		FamilyID:    familyID,
		Token:       token,
		Email:       params.Email,
		Role:        params.Role,
		Status:      domain.InvitationPending,
		ExpiresAt:   now.Add(expiresIn),
		MaxUses:     maxUses,
		CurrentUses: 0,
		CreatedBy:   requesterID,
		CreatedAt:   now,
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	link := s.appBaseURL + "/invitations/" + token

	if inv.Email != nil && s.emailService != nil {
		inviterName := ""
		if inviter, err := s.userRepo.GetByID(ctx, requesterID); err == nil {
			inviterName = inviter.Name
		}
		data := &domain.FamilyInvitationEmailData{
			Email:       *inv.Email,
			InviterName: inviterName,
			FamilyName:  family.Name,
			Role:        inv.Role,
			Link:        link,
			ExpiresAt:   inv.ExpiresAt,
		}
		if err := s.emailService.SendFamilyInvitation(ctx, data); err != nil {
			log.Printf("[MEMBERSHIP] failed to send invitation email to %s: %v", *inv.Email, err)
		}
	}

	return &domain.InvitationWithLink{Invitation: inv, Link: link}, nil
}

func (s *membershipService) GetInvitation(ctx context.Context, token string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	inv.Status = inv.EffectiveStatus(time.Now())
	return inv, nil
}

func (s *membershipService) AcceptInvitation(ctx context.Context, token, userID string) (*domain.FamilyMember, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}

	switch inv.EffectiveStatus(time.Now()) {
	case domain.InvitationPending:
		// continue
	case domain.InvitationExpired:
		return nil, domain.ErrExpired
	default:
		return nil, domain.ErrAlreadyUsed
	}
	if inv.Exhausted() {
		return nil, domain.ErrAlreadyUsed
	}

	if _, err := s.memberRepo.Get(ctx, inv.FamilyID, userID); err == nil {
		return nil, domain.ErrAlreadyMember
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get member: %w", err)
	}

	// The guarded increment is the capacity check; concurrent accepts of a
	// generic invitation serialize here.
	uses, err := s.invitationRepo.ConsumeUse(ctx, inv.ID)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyUsed) {
			return nil, domain.ErrAlreadyUsed
		}
		return nil, fmt.Errorf("consume invitation use: %w", err)
	}

	member := &domain.FamilyMember{
		FamilyID:  inv.FamilyID,
		UserID:    userID,
		Role:      inv.Role,
		CreatedAt: time.Now(),
	}
	if err := s.memberRepo.Add(ctx, member); err != nil {
		// Give the consumed use back; the membership row was never created.
		if releaseErr := s.invitationRepo.ReleaseUse(ctx, inv.ID); releaseErr != nil {
			log.Printf("[MEMBERSHIP] failed to release invitation use %s: %v", inv.ID, releaseErr)
		}
		if errors.Is(err, domain.ErrAlreadyMember) {
			return nil, domain.ErrAlreadyMember
		}
		return nil, fmt.Errorf("add member: %w", err)
	}

	// Only an addressed invitation transitions to accepted; a generic link
	// invitation keeps status pending and is bounded by its use counter.
	if inv.Email != nil && uses >= inv.MaxUses {
		if err := s.invitationRepo.UpdateStatus(ctx, inv.ID, domain.InvitationAccepted); err != nil {
			return nil, fmt.Errorf("update invitation status: %w", err)
		}
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateFamilyMembers(inv.FamilyID)
	}
	return member, nil
}

func (s *membershipService) RejectInvitation(ctx context.Context, token, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get invitation: %w", err)
	}
	switch inv.EffectiveStatus(time.Now()) {
	case domain.InvitationPending:
		// continue
	case domain.InvitationExpired:
		return domain.ErrExpired
	default:
		return domain.ErrAlreadyUsed
	}
	if err := s.invitationRepo.UpdateStatus(ctx, inv.ID, domain.InvitationRejected); err != nil {
		return fmt.Errorf("update invitation status: %w", err)
	}
	return nil
}

func (s *membershipService) AddMember(ctx context.Context, familyID, requesterID, userID string, role domain.Role) (*domain.FamilyMember, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.requireAdmin(ctx, familyID, requesterID); err != nil {
		return nil, err
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return nil, domain.ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	member := &domain.FamilyMember{
		FamilyID:  familyID,
		UserID:    user.ID,
		Role:      role,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: time.Now(),
	}
	if err := s.memberRepo.Add(ctx, member); err != nil {
		if errors.Is(err, domain.ErrAlreadyMember) {
			return nil, domain.ErrAlreadyMember
		}
		return nil, fmt.Errorf("add member: %w", err)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateFamilyMembers(familyID)
	}
	return member, nil
}

func (s *membershipService) UpdateMemberRole(ctx context.Context, familyID, requesterID, memberUserID string, role domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	family, err := s.requireAdmin(ctx, familyID, requesterID)
	if err != nil {
		return err
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return domain.ErrInvalidInput
	}
	// The owner's role is immutable through membership operations.
	if memberUserID == family.OwnerID {
		return domain.ErrForbidden
	}
	target, err := s.memberRepo.Get(ctx, familyID, memberUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get member: %w", err)
	}
	if target.Role == domain.RoleOwner {
		return domain.ErrForbidden
	}
	if err := s.memberRepo.UpdateRole(ctx, familyID, memberUserID, role); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update member role: %w", err)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateFamilyMembers(familyID)
	}
	return nil
}

func (s *membershipService) RemoveMember(ctx context.Context, familyID, requesterID, memberUserID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var family *domain.Family
	if requesterID == memberUserID {
		// Self-removal ("leave family") needs no admin role.
		f, err := s.familyRepo.GetByID(ctx, familyID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get family: %w", err)
		}
		family = f
	} else {
		f, err := s.requireAdmin(ctx, familyID, requesterID)
		if err != nil {
			return err
		}
		family = f
	}

	if memberUserID == family.OwnerID {
		return domain.ErrForbidden
	}
	if err := s.memberRepo.Remove(ctx, familyID, memberUserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("remove member: %w", err)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateFamilyMembers(familyID)
	}
	return nil
}

func (s *membershipService) ListMembers(ctx context.Context, familyID, requesterID string) ([]*domain.FamilyMember, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	family, err := s.familyRepo.GetByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get family: %w", err)
	}
	if family.OwnerID != requesterID {
		if _, err := s.memberRepo.Get(ctx, familyID, requesterID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrPermissionDenied
			}
			return nil, fmt.Errorf("get member: %w", err)
		}
	}
	members, err := s.memberRepo.ListByFamilyID(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	if members == nil {
		members = []*domain.FamilyMember{}
	}
	return members, nil
}

func (s *membershipService) ListFamilyInvitations(ctx context.Context, familyID, requesterID, search string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.requireAdmin(ctx, familyID, requesterID); err != nil {
		return nil, 0, err
	}
	invs, total, err := s.invitationRepo.ListByFamilyID(ctx, familyID, search, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list invitations: %w", err)
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	now := time.Now()
	for _, inv := range invs {
		inv.Status = inv.EffectiveStatus(now)
	}
	return invs, total, nil
}

func (s *membershipService) ListMyInvitations(ctx context.Context, userID string) ([]*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	invs, err := s.invitationRepo.ListByEmail(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("list invitations by email: %w", err)
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	now := time.Now()
	for _, inv := range invs {
		inv.Status = inv.EffectiveStatus(now)
	}
	return invs, nil
}

func generateInviteToken() (string, error) {
	b := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
