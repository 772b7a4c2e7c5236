package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/settleup/pkg/middleware"
	"github.com/fkhayef/settleup/pkg/response"
)

// Handler handles HTTP requests for notification operations
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for notification endpoints.
// Every endpoint accepts an optional group_id query parameter to scope it to one group.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/unread-count", h.UnreadCount)
	r.Post("/{id}/read", h.MarkAsRead)
	r.Post("/read-all", h.MarkAllAsRead)

	return r
}

// groupParam reads the optional group_id query parameter
func groupParam(r *http.Request) (*int64, error) {
	raw := r.URL.Query().Get("group_id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return nil, errors.New("invalid group_id")
	}
	return &id, nil
}

// List handles GET /notifications
// @Summary      List notifications
// @Description  Get the caller's notifications, newest first, optionally for one group
// @Tags         notifications
// @Produce      json
// @Param        group_id query int false "Only notifications from this group"
// @Param        unread_only query bool false "Only unread notifications"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]NotificationResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /notifications [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := groupParam(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}
	filter := Filter{
		GroupID:    groupID,
		UnreadOnly: r.URL.Query().Get("unread_only") == "true",
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	notifications, total, err := h.service.List(r.Context(), userID, filter, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list notifications")
		return
	}

	notificationResponses := make([]*NotificationResponse, len(notifications))
	for i, n := range notifications {
		notificationResponses[i] = n.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, notificationResponses, meta)
}

// UnreadCount handles GET /notifications/unread-count
// @Summary      Count unread notifications
// @Description  Get the caller's unread count. Without group_id the count is also split by group.
// @Tags         notifications
// @Produce      json
// @Param        group_id query int false "Only count this group"
// @Success      200 {object} response.APIResponse{data=UnreadCountResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /notifications/unread-count [get]
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := groupParam(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	total, byGroup, err := h.service.UnreadCount(r.Context(), userID, groupID)
	if err != nil {
		response.InternalError(w, "Failed to get unread count")
		return
	}

	response.JSON(w, http.StatusOK, newUnreadCountResponse(total, byGroup))
}

// MarkAsRead handles POST /notifications/{id}/read
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Param        id path int true "Notification ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /notifications/{id}/read [post]
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid notification ID")
		return
	}

	if err := h.service.MarkAsRead(r.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, ErrNotificationNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNotRecipient):
			response.Forbidden(w, err.Error())
		default:
			response.InternalError(w, "Failed to mark notification as read")
		}
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// MarkAllAsRead handles POST /notifications/read-all
// @Summary      Mark all notifications as read
// @Description  Mark the caller's unread notifications as read, optionally only one group's
// @Tags         notifications
// @Produce      json
// @Param        group_id query int false "Only mark this group's notifications"
// @Success      200 {object} response.APIResponse{data=ReadAllResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /notifications/read-all [post]
func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := groupParam(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	marked, err := h.service.MarkAllAsRead(r.Context(), userID, groupID)
	if err != nil {
		response.InternalError(w, "Failed to mark all notifications as read")
		return
	}

	response.JSON(w, http.StatusOK, &ReadAllResponse{Marked: marked})
}
