package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"householdledger/internal/delivery/http/helpers"
	"householdledger/internal/delivery/http/middleware"
	"householdledger/internal/domain"
)

type CategoryController struct {
	Logger  *slog.Logger
	Service domain.CategoryService
}

func NewCategoryController(logger *slog.Logger, svc domain.CategoryService) *CategoryController {
	return &CategoryController{
		Logger:  logger,
		Service: svc,
	}
}

// CategoryRequest is the request body for creating or updating a category.
type CategoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Validate implements helpers.Validator.
func (r *CategoryRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	if _, err := domain.ParseTransactionType(r.Type); err != nil {
		errs = append(errs, "type must be income or expense")
	}
	return errs
}

// CategorySuccessResponse is the success response envelope for a single category.
type CategorySuccessResponse struct {
	Data  *domain.Category  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CategoryListSuccessResponse is the success response envelope for a category list.
type CategoryListSuccessResponse struct {
	Data  []*domain.Category `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// CreateCategory godoc
// @Summary Create a category
// @Description Category names are unique within a family. Requires the admin or owner role.
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param familyID path string true "Family ID (UUID)"
// @Param body body controllers.CategoryRequest true "Category fields"
// @Success 201 {object} controllers.CategorySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: permission_denied"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (name already in use)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/{familyID}/categories [post]
func (c *CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
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
	var req CategoryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	cat := &domain.Category{
		FamilyID: familyID,
		Name:     req.Name,
		Type:     domain.TransactionType(req.Type),
	}
	created, err := c.Service.CreateCategory(r.Context(), userID, cat)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// ListCategories godoc
// @Summary List a family's categories
// @Description Requires family membership.
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param familyID path string true "Family ID (UUID)"
// @Success 200 {object} controllers.CategoryListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: permission_denied"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/{familyID}/categories [get]
func (c *CategoryController) ListCategories(w http.ResponseWriter, r *http.Request) {
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
	categories, err := c.Service.ListCategories(r.Context(), familyID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, categories)
}

// UpdateCategory godoc
// @Summary Update a category
// @Description Requires the admin or owner role.
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param familyID path string true "Family ID (UUID)"
// @Param categoryID path string true "Category ID (UUID)"
// @Param body body controllers.CategoryRequest true "Category fields"
// @Success 200 {object} controllers.CategorySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: permission_denied"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (name already in use)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/{familyID}/categories/{categoryID} [put]
func (c *CategoryController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	familyID := r.PathValue("familyID")
	categoryID := r.PathValue("categoryID")
	if !uuidRegexp.MatchString(familyID) || !uuidRegexp.MatchString(categoryID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid ID")
		return
	}
	var req CategoryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	cat := &domain.Category{
		ID:       categoryID,
		FamilyID: familyID,
		Name:     req.Name,
		Type:     domain.TransactionType(req.Type),
	}
	updated, err := c.Service.UpdateCategory(r.Context(), userID, cat)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, updated)
}

// DeleteCategory godoc
// @Summary Delete a category
// @Description Requires the admin or owner role. Transactions keep a null category afterwards.
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param familyID path string true "Family ID (UUID)"
// @Param categoryID path string true "Category ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: permission_denied"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/{familyID}/categories/{categoryID} [delete]
func (c *CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	familyID := r.PathValue("familyID")
	categoryID := r.PathValue("categoryID")
	if !uuidRegexp.MatchString(familyID) || !uuidRegexp.MatchString(categoryID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid ID")
		return
	}
	if err := c.Service.DeleteCategory(r.Context(), familyID, userID, categoryID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
