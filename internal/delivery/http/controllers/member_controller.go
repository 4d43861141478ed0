package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"householdledger/internal/delivery/http/helpers"
	"householdledger/internal/delivery/http/middleware"
	"householdledger/internal/domain"
)

// inviteTokenRegexp matches the 32-byte hex tokens minted for invitations.
var inviteTokenRegexp = regexp.MustCompile(`^[0-9a-f]{64}$`)

type MemberController struct {
	Logger  *slog.Logger
	Service domain.MembershipService
}

func NewMemberController(logger *slog.Logger, svc domain.MembershipService) *MemberController {
	return &MemberController{
		Logger:  logger,
		Service: svc,
	}
}

// AddMemberRequest is the request body for POST /families/{familyID}/members.
// When UserID is set the user is added directly; otherwise an invitation is
// created (email-addressed if Email is set, generic link otherwise).
type AddMemberRequest struct {
	UserID         string  `json:"user_id"`
	Email          *string `json:"email"`
	Role           string  `json:"role"`
	ExpiresInHours int     `json:"expires_in_hours"`
	MaxUses        int     `json:"max_uses"`
}

// Validate implements helpers.Validator.
func (r *AddMemberRequest) Validate() []string {
	var errs []string
	if r.UserID != "" && !uuidRegexp.MatchString(r.UserID) {
		errs = append(errs, "user_id must be a UUID")
	}
	if r.UserID != "" && r.Email != nil {
		errs = append(errs, "user_id and email are mutually exclusive")
	}
	if r.Email != nil && strings.TrimSpace(*r.Email) == "" {
		errs = append(errs, "email must not be blank")
	}
	if r.ExpiresInHours < 0 {
		errs = append(errs, "expires_in_hours must not be negative")
	}
	if r.MaxUses < 0 {
		errs = append(errs, "max_uses must not be negative")
	}
	return errs
}

// MemberSuccessResponse is the success response envelope for a single family member.
type MemberSuccessResponse struct {
	Data  *domain.FamilyMember `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// MemberListSuccessResponse is the success response envelope for a member list.
type MemberListSuccessResponse struct {
	Data  []*domain.FamilyMember `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// InvitationSuccessResponse is the success response envelope for a single invitation.
type InvitationSuccessResponse struct {
	Data  *domain.Invitation `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// InvitationWithLinkSuccessResponse is the success response envelope for a
// newly created invitation, including its shareable link.
type InvitationWithLinkSuccessResponse struct {
	Data  *domain.InvitationWithLink `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// InvitationListData is the data payload for a paginated invitation list.
type InvitationListData struct {
	Invitations []*domain.Invitation   `json:"invitations"`
	Pagination  helpers.PaginationMeta `json:"pagination"`
}

// InvitationListSuccessResponse is the success response envelope for a paginated invitation list.
type InvitationListSuccessResponse struct {
	Data  *InvitationListData `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// MyInvitationListSuccessResponse is the success response envelope for the
// current user's pending invitations.
type MyInvitationListSuccessResponse struct {
	Data  []*domain.Invitation `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// AddMember godoc
// @Summary Add a member or create an invitation
// @Description With user_id, adds an existing user to the family directly. Without user_id, creates an invitation: email-addressed (single use) when email is set, a generic multi-use link otherwise. Requires the admin or owner role.
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param familyID path string true "Family ID (UUID)"
// @Param body body controllers.AddMemberRequest true "Member or invitation fields"
// @Success 201 {object} controllers.InvitationWithLinkSuccessResponse "Invitation created (no user_id)"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: permission_denied"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (family or user)"
// @Failure 409 {object} helpers.APIResponse "error.code: already_member"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/{familyID}/members [post]
func (c *MemberController) AddMember(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	familyID := r.PathValue("familyID")
	if !uuidRegexp.MatchString(familyID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid family ID")
		return
	}
	var req AddMemberRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	if req.UserID != "" {
		role := domain.RoleMember
		if req.Role != "" {
			parsed, err := domain.ParseRole(req.Role)
			if err != nil {
				helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeValidation, "role must be admin or member")
				return
			}
			role = parsed
		}
		member, err := c.Service.AddMember(r.Context(), familyID, requesterID, req.UserID, role)
		if err != nil {
			helpers.WriteServiceError(w, r, c.Logger, err)
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusCreated, member)
		return
	}

	params := domain.CreateInvitationParams{
		Email:     req.Email,
		Role:      domain.Role(req.Role),
		ExpiresIn: time.Duration(req.ExpiresInHours) * time.Hour,
		MaxUses:   req.MaxUses,
	}
	inv, err := c.Service.CreateInvitation(r.Context(), familyID, requesterID, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// ListMembers godoc
// @Summary List family members
// @Description Any member of the family may list its members.
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param familyID path string true "Family ID (UUID)"
// @Success 200 {object} controllers.MemberListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: permission_denied"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/{familyID}/members [get]
func (c *MemberController) ListMembers(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	familyID := r.PathValue("familyID")
	if !uuidRegexp.MatchString(familyID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid family ID")
		return
	}
	members, err := c.Service.ListMembers(r.Context(), familyID, requesterID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, members)
}

// UpdateMemberRoleRequest is the request body for PUT /families/{familyID}/members/{userID}.
type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}

// Validate implements helpers.Validator.
func (r *UpdateMemberRoleRequest) Validate() []string {
	if _, err := domain.ParseRole(r.Role); err != nil {
		return []string{"role must be admin or member"}
	}
	return nil
}

// UpdateMemberRole godoc
// @Summary Change a member's role
// @Description Requires the admin or owner role. The owner's role cannot be changed, and no member can be promoted to owner.
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param familyID path string true "Family ID (UUID)"
// @Param userID path string true "Member's user ID (UUID)"
// @Param body body controllers.UpdateMemberRoleRequest true "New role"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: permission_denied or forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/{familyID}/members/{userID} [put]
func (c *MemberController) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	familyID := r.PathValue("familyID")
	memberUserID := r.PathValue("userID")
	if !uuidRegexp.MatchString(familyID) || !uuidRegexp.MatchString(memberUserID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid ID")
		return
	}
	var req UpdateMemberRoleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeValidation, "role must be admin or member")
		return
	}
	if err := c.Service.UpdateMemberRole(r.Context(), familyID, requesterID, memberUserID, role); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "role updated"})
}

// RemoveMember godoc
// @Summary Remove a member from a family
// @Description Admins may remove any non-owner member; any member may remove themselves. The owner cannot be removed.
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param familyID path string true "Family ID (UUID)"
// @Param userID path string true "Member's user ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: permission_denied or forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/{familyID}/members/{userID} [delete]
func (c *MemberController) RemoveMember(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	familyID := r.PathValue("familyID")
	memberUserID := r.PathValue("userID")
	if !uuidRegexp.MatchString(familyID) || !uuidRegexp.MatchString(memberUserID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid ID")
		return
	}
	if err := c.Service.RemoveMember(r.Context(), familyID, requesterID, memberUserID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "member removed"})
}

// ListFamilyInvitations godoc
// @Summary List a family's invitations
// @Description Requires the admin or owner role. Supports search over invitee email and pagination.
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param familyID path string true "Family ID (UUID)"
// @Param search query string false "Filter by invitee email (substring match)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.InvitationListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: permission_denied"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/{familyID}/invitations [get]
func (c *MemberController) ListFamilyInvitations(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	familyID := r.PathValue("familyID")
	if !uuidRegexp.MatchString(familyID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid family ID")
		return
	}
	search := r.URL.Query().Get("search")
	params := helpers.ParsePagination(r)

	invitations, total, err := c.Service.ListFamilyInvitations(r.Context(), familyID, requesterID, search, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &InvitationListData{
		Invitations: invitations,
		Pagination:  helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// ListMyInvitations godoc
// @Summary List the current user's pending invitations
// @Description Returns invitations addressed to the current user's email.
// @Tags members
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.MyInvitationListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/invitations [get]
func (c *MemberController) ListMyInvitations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	invitations, err := c.Service.ListMyInvitations(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, invitations)
}

// GetInvitation godoc
// @Summary Preview an invitation by token
// @Description Returns the invitation with its effective status (a pending invitation past expiry reads as expired).
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param token path string true "Invitation token"
// @Success 200 {object} controllers.InvitationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/invitations/{token} [get]
func (c *MemberController) GetInvitation(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if !inviteTokenRegexp.MatchString(token) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid invitation token")
		return
	}
	inv, err := c.Service.GetInvitation(r.Context(), token)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// AcceptInvitation godoc
// @Summary Accept an invitation
// @Description Joins the current user to the inviting family with the invitation's role. Each use atomically consumes one of the invitation's remaining uses.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param token path string true "Invitation token"
// @Success 201 {object} controllers.MemberSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: already_used or already_member"
// @Failure 410 {object} helpers.APIResponse "error.code: expired"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/invitations/{token}/accept [post]
func (c *MemberController) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	token := r.PathValue("token")
	if !inviteTokenRegexp.MatchString(token) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid invitation token")
		return
	}
	member, err := c.Service.AcceptInvitation(r.Context(), token, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, member)
}

// RejectInvitation godoc
// @Summary Reject an invitation
// @Description Marks the invitation rejected. The current user does not join the family.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param token path string true "Invitation token"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: already_used"
// @Failure 410 {object} helpers.APIResponse "error.code: expired"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/invitations/{token}/reject [post]
func (c *MemberController) RejectInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	token := r.PathValue("token")
	if !inviteTokenRegexp.MatchString(token) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid invitation token")
		return
	}
	if err := c.Service.RejectInvitation(r.Context(), token, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "invitation rejected"})
}
