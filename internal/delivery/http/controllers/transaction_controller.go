package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"householdledger/internal/delivery/http/helpers"
	"householdledger/internal/delivery/http/middleware"
	"householdledger/internal/domain"
)

type TransactionController struct {
	Logger  *slog.Logger
	Service domain.TransactionService
}

func NewTransactionController(logger *slog.Logger, svc domain.TransactionService) *TransactionController {
	return &TransactionController{
		Logger:  logger,
		Service: svc,
	}
}

// TransactionRequest is the request body for creating or updating a transaction.
type TransactionRequest struct {
	CategoryID *string `json:"category_id"`
	Type       string  `json:"type"`
	Amount     int64   `json:"amount"`
	Note       string  `json:"note"`
	OccurredOn string  `json:"occurred_on"`
}

// Validate implements helpers.Validator.
func (r *TransactionRequest) Validate() []string {
	var errs []string
	if _, err := domain.ParseTransactionType(r.Type); err != nil {
		errs = append(errs, "type must be income or expense")
	}
	if r.Amount <= 0 {
		errs = append(errs, "amount must be positive")
	}
	if _, err := time.Parse("2006-01-02", r.OccurredOn); err != nil {
		errs = append(errs, "occurred_on must be a date in YYYY-MM-DD format")
	}
	if r.CategoryID != nil && !uuidRegexp.MatchString(*r.CategoryID) {
		errs = append(errs, "category_id must be a UUID")
	}
	return errs
}

// TransactionSuccessResponse is the success response envelope for a single transaction.
type TransactionSuccessResponse struct {
	Data  *domain.Transaction `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// TransactionListData is the data payload for a paginated transaction list.
type TransactionListData struct {
	Transactions []*domain.Transaction  `json:"transactions"`
	Pagination   helpers.PaginationMeta `json:"pagination"`
}

// TransactionListSuccessResponse is the success response envelope for a paginated transaction list.
type TransactionListSuccessResponse struct {
	Data  *TransactionListData `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// SummarySuccessResponse is the success response envelope for a monthly summary.
type SummarySuccessResponse struct {
	Data  *domain.MonthlySummary `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// CreateTransaction godoc
// @Summary Record a transaction
// @Description Records an income or expense for the family. Amount is in minor currency units. Requires family membership.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param familyID path string true "Family ID (UUID)"
// @Param body body controllers.TransactionRequest true "Transaction fields"
// @Success 201 {object} controllers.TransactionSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: permission_denied"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (family or category)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/{familyID}/transactions [post]
func (c *TransactionController) CreateTransaction(w http.ResponseWriter, r *http.Request) {
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
	var req TransactionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	occurredOn, _ := time.Parse("2006-01-02", req.OccurredOn)
	tx := &domain.Transaction{
		FamilyID:   familyID,
		CategoryID: req.CategoryID,
		Type:       domain.TransactionType(req.Type),
		Amount:     req.Amount,
		Note:       req.Note,
		OccurredOn: occurredOn,
	}
	created, err := c.Service.CreateTransaction(r.Context(), userID, tx)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// ListTransactions godoc
// @Summary List a family's transactions
// @Description Requires family membership. Supports occurred_on date bounds and pagination.
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param familyID path string true "Family ID (UUID)"
// @Param from query string false "Lower occurred_on bound (YYYY-MM-DD, inclusive)"
// @Param to query string false "Upper occurred_on bound (YYYY-MM-DD, inclusive)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.TransactionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: permission_denied"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/{familyID}/transactions [get]
func (c *TransactionController) ListTransactions(w http.ResponseWriter, r *http.Request) {
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

	var filter domain.TransactionFilter
	if s := r.URL.Query().Get("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "from must be a date in YYYY-MM-DD format")
			return
		}
		filter.From = t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "to must be a date in YYYY-MM-DD format")
			return
		}
		// Inclusive upper bound: the repository compares occurred_on < To.
		filter.To = t.AddDate(0, 0, 1)
	}
	params := helpers.ParsePagination(r)

	transactions, total, err := c.Service.ListTransactions(r.Context(), familyID, userID, filter, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &TransactionListData{
		Transactions: transactions,
		Pagination:   helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Description Only the transaction's author or a family admin may update it.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param familyID path string true "Family ID (UUID)"
// @Param transactionID path string true "Transaction ID (UUID)"
// @Param body body controllers.TransactionRequest true "Transaction fields"
// @Success 200 {object} controllers.TransactionSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: permission_denied or forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/{familyID}/transactions/{transactionID} [put]
func (c *TransactionController) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	familyID := r.PathValue("familyID")
	transactionID := r.PathValue("transactionID")
	if !uuidRegexp.MatchString(familyID) || !uuidRegexp.MatchString(transactionID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid ID")
		return
	}
	var req TransactionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	occurredOn, _ := time.Parse("2006-01-02", req.OccurredOn)
	tx := &domain.Transaction{
		ID:         transactionID,
		FamilyID:   familyID,
		CategoryID: req.CategoryID,
		Type:       domain.TransactionType(req.Type),
		Amount:     req.Amount,
		Note:       req.Note,
		OccurredOn: occurredOn,
	}
	updated, err := c.Service.UpdateTransaction(r.Context(), userID, tx)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, updated)
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Description Only the transaction's author or a family admin may delete it.
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param familyID path string true "Family ID (UUID)"
// @Param transactionID path string true "Transaction ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: permission_denied or forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/{familyID}/transactions/{transactionID} [delete]
func (c *TransactionController) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	familyID := r.PathValue("familyID")
	transactionID := r.PathValue("transactionID")
	if !uuidRegexp.MatchString(familyID) || !uuidRegexp.MatchString(transactionID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid ID")
		return
	}
	if err := c.Service.DeleteTransaction(r.Context(), familyID, userID, transactionID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "transaction deleted"})
}

// MonthlySummary godoc
// @Summary Get a family's monthly summary
// @Description Aggregates income, expenses, and per-category expense totals for one calendar month. Requires family membership.
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param familyID path string true "Family ID (UUID)"
// @Param month query string true "Month to summarize (YYYY-MM)"
// @Success 200 {object} controllers.SummarySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: permission_denied"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /families/{familyID}/summary [get]
func (c *TransactionController) MonthlySummary(w http.ResponseWriter, r *http.Request) {
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
	month, err := time.Parse("2006-01", r.URL.Query().Get("month"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "month must be in YYYY-MM format")
		return
	}
	summary, err := c.Service.MonthlySummary(r.Context(), familyID, userID, month)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}
