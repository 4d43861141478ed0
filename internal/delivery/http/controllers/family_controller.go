package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"householdledger/internal/delivery/http/helpers"
	"householdledger/internal/delivery/http/middleware"
	"householdledger/internal/domain"
)

var uuidRegexp = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type FamilyController struct {
	Logger  *slog.Logger
	Service domain.FamilyService
}

func NewFamilyController(logger *slog.Logger, svc domain.FamilyService) *FamilyController {
	return &FamilyController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateFamilyRequest is the request body for POST /families.
type CreateFamilyRequest struct {
	Name string `json:"name"`
}

// Validate implements helpers.Validator.
func (r *CreateFamilyRequest) Validate() []string {
	if strings.TrimSpace(r.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

// FamilySuccessResponse is the success response envelope for a single family.
type FamilySuccessResponse struct {
	Data  *domain.Family    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// FamilyListSuccessResponse is the success response envelope for a family list.
type FamilyListSuccessResponse struct {
	Data  []*domain.Family  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateFamily godoc
// @Summary Create a family
// @Description Creates a family owned by the current user and adds the owner membership row.
// @Tags families
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateFamilyRequest true "Family fields"
// @Success 201 {object} controllers.FamilySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families [post]
func (c *FamilyController) CreateFamily(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateFamilyRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	family, err := c.Service.CreateFamily(r.Context(), req.Name, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, family)
}

// ListMyFamilies godoc
// @Summary List the current user's families
// @Tags families
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.FamilyListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families [get]
func (c *FamilyController) ListMyFamilies(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	families, err := c.Service.ListMyFamilies(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, families)
}

// GetFamily godoc
// @Summary Get a family
// @Description Only members of the family may fetch it.
// @Tags families
// @Produce json
// @Security BearerAuth
// @Param familyID path string true "Family ID (UUID)"
// @Success 200 {object} controllers.FamilySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: permission_denied"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/{familyID} [get]
func (c *FamilyController) GetFamily(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	familyID := r.PathValue("familyID")
	if !uuidRegexp.MatchString(familyID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid family ID")
		return
	}
	family, err := c.Service.GetFamily(r.Context(), familyID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, family)
}

// RenameFamilyRequest is the request body for PATCH /families/{familyID}.
type RenameFamilyRequest struct {
	Name string `json:"name"`
}

// Validate implements helpers.Validator.
func (r *RenameFamilyRequest) Validate() []string {
	if strings.TrimSpace(r.Name) == "" {
		return []string{"name is required"}
	}
	return nil
}

// RenameFamily godoc
// @Summary Rename a family
// @Description Requires the admin or owner role.
// @Tags families
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param familyID path string true "Family ID (UUID)"
// @Param body body controllers.RenameFamilyRequest true "New name"
// @Success 200 {object} controllers.FamilySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: permission_denied"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/{familyID} [patch]
func (c *FamilyController) RenameFamily(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	familyID := r.PathValue("familyID")
	if !uuidRegexp.MatchString(familyID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid family ID")
		return
	}
	var req RenameFamilyRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	family, err := c.Service.RenameFamily(r.Context(), familyID, userID, req.Name)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, family)
}
