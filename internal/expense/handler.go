package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/settleup/internal/group"
	"github.com/fkhayef/settleup/internal/ledger"
	"github.com/fkhayef/settleup/internal/lock"
	"github.com/fkhayef/settleup/pkg/middleware"
	"github.com/fkhayef/settleup/pkg/response"
	"github.com/fkhayef/settleup/pkg/validate"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints, mounted under /groups/{groupId}/expenses
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{expenseId}", h.GetByID)

	return r
}

func writeError(w http.ResponseWriter, err error, fallback string) {
	if rej, ok := ledger.AsRejection(err); ok {
		response.BadRequest(w, rej.Error())
		return
	}
	if errors.Is(err, ErrExpenseNotFound) {
		response.NotFound(w, err.Error())
		return
	}
	if errors.Is(err, lock.ErrNotObtained) {
		response.ServiceUnavailable(w, "Group is busy, please retry")
		return
	}
	if group.WriteError(w, err) {
		return
	}
	response.InternalError(w, fallback)
}

// Create handles POST /groups/{groupId}/expenses
// @Summary      Add an expense
// @Description  Record an expense paid by one member and split equally among the included members
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId}/expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := group.ParseGroupID(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if fields := validate.Struct(req); fields != nil {
		response.ValidationFailed(w, fields)
		return
	}

	expense, err := h.service.Create(r.Context(), groupID, userID, &req)
	if err != nil {
		writeError(w, err, "Failed to create expense")
		return
	}

	expenseResp := expense.ToResponse()
	expenseResp.Entries = NewEntryResponses(ledger.DeriveEntries(expense.Ledger()))

	response.JSON(w, http.StatusCreated, expenseResp)
}

// GetByID handles GET /groups/{groupId}/expenses/{expenseId}
// @Summary      Get expense by ID
// @Description  Get an expense with the debts derived from it
// @Tags         expenses
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        expenseId path int true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId}/expenses/{expenseId} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := group.ParseGroupID(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "expenseId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	expense, entries, err := h.service.Get(r.Context(), groupID, id, userID)
	if err != nil {
		writeError(w, err, "Failed to get expense")
		return
	}

	expenseResp := expense.ToResponse()
	expenseResp.Entries = NewEntryResponses(entries)

	response.JSON(w, http.StatusOK, expenseResp)
}

// List handles GET /groups/{groupId}/expenses
// @Summary      List group expenses
// @Description  Get a paginated list of a group's expenses, newest first
// @Tags         expenses
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Router       /groups/{groupId}/expenses [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := group.ParseGroupID(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	expenses, total, err := h.service.List(r.Context(), groupID, userID, page, perPage)
	if err != nil {
		writeError(w, err, "Failed to list expenses")
		return
	}

	expenseResponses := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		expenseResponses[i] = e.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, expenseResponses, meta)
}
