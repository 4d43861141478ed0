package domain

import (
	"context"
	"errors"
	"time"
)

// ErrExpired is returned when acting on an invitation past its expiry.
var ErrExpired = errors.New("invitation expired")

// ErrAlreadyUsed is returned when an invitation has no remaining uses or has
// already been accepted or rejected.
var ErrAlreadyUsed = errors.New("invitation already used")

// InvitationStatus is the persisted lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation represents an invitation to join a family. Email is nil for a
// generic link invitation usable up to MaxUses times.
// swagger:model Invitation
type Invitation struct {
	ID          string           `json:"id"`
	FamilyID    string           `json:"family_id"`
	Token       string           `json:"token"`
	Email       *string          `json:"email"`
	Role        Role             `json:"role"`
	Status      InvitationStatus `json:"status"`
	ExpiresAt   time.Time        `json:"expires_at"`
	MaxUses     int              `json:"max_uses"`
	CurrentUses int              `json:"current_uses"`
	CreatedBy   string           `json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
}

// EffectiveStatus returns the status as of now: a pending invitation past its
// expiry reads as expired without requiring a write.
func (i *Invitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.Status == InvitationPending && now.After(i.ExpiresAt) {
		return InvitationExpired
	}
	return i.Status
}

// Exhausted reports whether the invitation has no remaining capacity.
func (i *Invitation) Exhausted() bool {
	return i.CurrentUses >= i.MaxUses
}

// InvitationRepository defines storage operations for invitations.
//
// ConsumeUse must atomically increment current_uses only while
// current_uses < max_uses, returning ErrAlreadyUsed once capacity is
// exhausted. Concurrent accepts of a generic invitation race on this counter;
// the guard belongs in the single UPDATE, not in service-level retries.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByToken(ctx context.Context, token string) (*Invitation, error)
	ListByFamilyID(ctx context.Context, familyID string, search string, params PaginationParams) ([]*Invitation, int, error)
	ListByEmail(ctx context.Context, email string) ([]*Invitation, error)
	ConsumeUse(ctx context.Context, id string) (currentUses int, err error)
	ReleaseUse(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status InvitationStatus) error
}

// CreateInvitationParams are the caller-supplied fields for a new invitation.
// Zero values fall back to configured defaults.
type CreateInvitationParams struct {
	Email     *string
	Role      Role
	ExpiresIn time.Duration
	MaxUses   int
}

// InvitationWithLink bundles an invitation with its shareable link.
type InvitationWithLink struct {
	Invitation *Invitation `json:"invitation"`
	Link       string      `json:"link"`
}

// MembershipService owns the lifecycle of family invitations and membership
// records.
type MembershipService interface {
	CreateInvitation(ctx context.Context, familyID, requesterID string, params CreateInvitationParams) (*InvitationWithLink, error)
	GetInvitation(ctx context.Context, token string) (*Invitation, error)
	AcceptInvitation(ctx context.Context, token, userID string) (*FamilyMember, error)
	RejectInvitation(ctx context.Context, token, userID string) error
	AddMember(ctx context.Context, familyID, requesterID, userID string, role Role) (*FamilyMember, error)
	UpdateMemberRole(ctx context.Context, familyID, requesterID, memberUserID string, role Role) error
	RemoveMember(ctx context.Context, familyID, requesterID, memberUserID string) error
	ListMembers(ctx context.Context, familyID, requesterID string) ([]*FamilyMember, error)
	ListFamilyInvitations(ctx context.Context, familyID, requesterID, search string, params PaginationParams) ([]*Invitation, int, error)
	ListMyInvitations(ctx context.Context, userID string) ([]*Invitation, error)
}
