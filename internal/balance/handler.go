package balance

import (
	"net/http"

	"github.com/fkhayef/settleup/internal/group"
	"github.com/fkhayef/settleup/pkg/middleware"
	"github.com/fkhayef/settleup/pkg/response"
)

// Handler handles HTTP requests for balance summaries
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Summary handles GET /groups/{groupId}/summary
// @Summary      Settle-up summary
// @Description  What the caller owes and is owed by each counterpart in the group, after netting
// @Tags         balances
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=SummaryResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId}/summary [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
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

	summary, err := h.service.SettleSummary(r.Context(), groupID, userID)
	if err != nil {
		if group.WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to compute summary")
		return
	}

	response.JSON(w, http.StatusOK, summary.ToResponse())
}
