package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"householdledger/internal/delivery/http/helpers"
	"householdledger/internal/delivery/http/middleware"
	"householdledger/internal/domain"
)

type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

// GetMeSuccessResponse is the success response envelope for GET /users/me (200).
type GetMeSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetMe godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.GetMeSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me [get]
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.Service.GetByID(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// UpdateMeRequest is the request body for PUT /users/me.
type UpdateMeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Validate implements helpers.Validator.
func (r *UpdateMeRequest) Validate() []string {
	if strings.TrimSpace(r.Email) == "" && strings.TrimSpace(r.Name) == "" {
		return []string{"nothing to update"}
	}
	return nil
}

// UpdateMe godoc
// @Summary Update the current user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.UpdateMeRequest true "Profile fields"
// @Success 200 {object} controllers.GetMeSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email already in use)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me [put]
func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpdateMeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	user, err := c.Service.GetByID(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if strings.TrimSpace(req.Email) != "" {
		user.Email = req.Email
	}
	if strings.TrimSpace(req.Name) != "" {
		user.Name = req.Name
	}
	if err := c.Service.Update(r.Context(), user); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// GetSettingsSuccessResponse is the success response envelope for GET /users/me/settings (200).
type GetSettingsSuccessResponse struct {
	Data  *domain.UserSettings `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// GetSettings godoc
// @Summary Get the current user's settings
// @Description Returns stored settings, or defaults when the user has never saved any.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.GetSettingsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/settings [get]
func (c *UserController) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	settings, err := c.Service.GetSettings(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, settings)
}

// UpdateSettingsRequest is the request body for PUT /users/me/settings.
type UpdateSettingsRequest struct {
	Currency string `json:"currency"`
	Locale   string `json:"locale"`
	DarkMode bool   `json:"dark_mode"`
}

// Validate implements helpers.Validator.
func (r *UpdateSettingsRequest) Validate() []string {
	if len(strings.TrimSpace(r.Currency)) != 3 {
		return []string{"currency must be a 3-letter code"}
	}
	return nil
}

// UpdateSettings godoc
// @Summary Update the current user's settings
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.UpdateSettingsRequest true "Settings"
// @Success 200 {object} controllers.GetSettingsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/me/settings [put]
func (c *UserController) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpdateSettingsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	settings := &domain.UserSettings{
		UserID:   userID,
		Currency: req.Currency,
		Locale:   req.Locale,
		DarkMode: req.DarkMode,
	}
	if err := c.Service.UpdateSettings(r.Context(), settings); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, settings)
}
