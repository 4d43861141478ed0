package domain

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyMember is returned when adding a user who is already a member of the family.
var ErrAlreadyMember = errors.New("already a family member")

// ErrPermissionDenied is returned when the requesting user lacks the admin or
// owner role required for the operation.
var ErrPermissionDenied = errors.New("permission denied")

// ErrForbidden is returned for operations that would alter or remove the
// family owner's membership.
var ErrForbidden = errors.New("forbidden")

// Role is a membership role within a family.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole returns the Role for s. Only admin and member are assignable;
// owner exists solely on the row created with the family.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleMember:
		return Role(s), nil
	}
	return "", ErrInvalidInput
}

// FamilyMember represents a user's membership in a family. The (family_id,
// user_id) pair is unique. The owner row's role is immutable.
// swagger:model FamilyMember
type FamilyMember struct {
	FamilyID  string    `json:"family_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the user may manage the family: the family owner,
// or a member holding the owner or admin role.
func IsAdmin(userID string, family *Family, member *FamilyMember) bool {
	if family != nil && family.OwnerID == userID {
		return true
	}
	if member == nil || member.UserID != userID {
		return false
	}
	return member.Role == RoleOwner || member.Role == RoleAdmin
}

// FamilyMemberRepository defines the interface for family membership storage.
type FamilyMemberRepository interface {
	Add(ctx context.Context, member *FamilyMember) error
	Get(ctx context.Context, familyID, userID string) (*FamilyMember, error)
	ListByFamilyID(ctx context.Context, familyID string) ([]*FamilyMember, error)
	UpdateRole(ctx context.Context, familyID, userID string, role Role) error
	Remove(ctx context.Context, familyID, userID string) error
}

// MemberCacheInvalidator receives a signal after any mutation of a family's
// membership. Callers may back it with whatever cache they use; the
// membership service only emits the signal.
type MemberCacheInvalidator interface {
	InvalidateFamilyMembers(familyID string)
}
