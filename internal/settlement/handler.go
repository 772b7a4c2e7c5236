package settlement

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/settleup/internal/group"
	"github.com/fkhayef/settleup/internal/ledger"
	"github.com/fkhayef/settleup/pkg/middleware"
	"github.com/fkhayef/settleup/pkg/response"
	"github.com/fkhayef/settleup/pkg/validate"
)

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for settlement endpoints, mounted under /groups/{groupId}/settlements
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/balances/{userId}", h.BalanceWith)

	return r
}

// Create handles POST /groups/{groupId}/settlements
// @Summary      Record a settlement
// @Description  Record a payment from the caller to another member. Paying more than is owed is rejected.
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        request body CreateSettlementRequest true "Settlement request"
// @Success      201 {object} response.APIResponse{data=SettlementResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Failure      503 {object} response.APIResponse
// @Router       /groups/{groupId}/settlements [post]
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

	var req CreateSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if fields := validate.Struct(req); fields != nil {
		response.ValidationFailed(w, fields)
		return
	}

	settlement, err := h.service.Record(r.Context(), groupID, userID, &req)
	if err != nil {
		if rej, ok := ledger.AsRejection(err); ok {
			if errors.Is(rej, ledger.ErrOverpayment) {
				response.Unprocessable(w, "OVERPAYMENT", rej.Error(), map[string]string{
					"max_payable": rej.MaxPayable.StringFixed(2),
				})
				return
			}
			response.BadRequest(w, rej.Error())
			return
		}
		if isBusy(err) {
			response.ServiceUnavailable(w, "Group is busy, please retry")
			return
		}
		if group.WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to record settlement")
		return
	}

	response.JSON(w, http.StatusCreated, settlement.ToResponse())
}

// List handles GET /groups/{groupId}/settlements
// @Summary      List group settlements
// @Description  Get a paginated list of a group's settlements, newest first
// @Tags         settlements
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]SettlementResponse}
// @Router       /groups/{groupId}/settlements [get]
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

	settlements, total, err := h.service.List(r.Context(), groupID, userID, page, perPage)
	if err != nil {
		if group.WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to list settlements")
		return
	}

	settlementResponses := make([]*SettlementResponse, len(settlements))
	for i, s := range settlements {
		settlementResponses[i] = s.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, settlementResponses, meta)
}

// BalanceWith handles GET /groups/{groupId}/settlements/balances/{userId}
// @Summary      Get balance with a member
// @Description  Get the net balance between the caller and another member, including the most the caller can pay them
// @Tags         settlements
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        userId path int true "User ID"
// @Success      200 {object} response.APIResponse{data=BalanceResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId}/settlements/balances/{userId} [get]
func (h *Handler) BalanceWith(w http.ResponseWriter, r *http.Request) {
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

	otherUserID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	balance, err := h.service.BalanceWith(r.Context(), groupID, userID, otherUserID)
	if err != nil {
		if errors.Is(err, ErrSelfBalance) {
			response.BadRequest(w, err.Error())
			return
		}
		if group.WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to get balance")
		return
	}

	response.JSON(w, http.StatusOK, balance.ToResponse())
}
