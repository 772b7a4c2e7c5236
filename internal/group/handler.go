package group

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/settleup/internal/lock"
	"github.com/fkhayef/settleup/pkg/middleware"
	"github.com/fkhayef/settleup/pkg/response"
	"github.com/fkhayef/settleup/pkg/validate"
)

// Handler handles HTTP requests for group operations
type Handler struct {
	service *Service
}

// NewHandler creates a new group handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for group endpoints.
// Group-scoped features mount their own routers under /{groupId}.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Post("/join/{token}", h.Join)
	r.Get("/{groupId}", h.GetByID)
	r.Put("/{groupId}", h.Update)
	r.Delete("/{groupId}", h.Delete)

	// Member management
	r.Post("/{groupId}/members", h.AddMember)
	r.Put("/{groupId}/members/{userId}", h.UpdateMember)
	r.Delete("/{groupId}/members/{userId}", h.RemoveMember)
	r.Post("/{groupId}/leave", h.Leave)
	r.Get("/{groupId}/invite", h.Invite)

	return r
}

// WriteError maps group errors onto HTTP responses. It reports false for errors it does not know.
func WriteError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, ErrGroupNotFound), errors.Is(err, ErrMemberNotFound), errors.Is(err, ErrUserNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotMember), errors.Is(err, ErrNotAuthorized):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrMemberAlreadyExists), errors.Is(err, ErrLastAdmin), errors.Is(err, ErrOutstandingBalances):
		response.Conflict(w, err.Error())
	case errors.Is(err, lock.ErrNotObtained):
		response.ServiceUnavailable(w, "Group is busy, please retry")
	case errors.Is(err, ErrRemoveSelf), errors.Is(err, ErrInvalidInvite):
		response.BadRequest(w, err.Error())
	default:
		return false
	}
	return true
}

// ParseGroupID reads the {groupId} URL parameter
func ParseGroupID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
}

// Create handles POST /groups
// @Summary      Create a new group
// @Description  Create a new group and add creator as admin
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if fields := validate.Struct(req); fields != nil {
		response.ValidationFailed(w, fields)
		return
	}

	group, err := h.service.Create(r.Context(), creatorID, &req)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to create group")
		return
	}

	response.JSON(w, http.StatusCreated, group.ToResponse())
}

// GetByID handles GET /groups/{groupId}
// @Summary      Get group by ID
// @Description  Get a group with all its members
// @Tags         groups
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := ParseGroupID(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	group, members, err := h.service.GetWithMembers(r.Context(), id, userID)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to get group")
		return
	}

	groupResponse := group.ToResponse()
	groupResponse.Members = make([]*MemberResponse, len(members))
	for i, m := range members {
		groupResponse.Members[i] = m.ToResponse()
	}

	response.JSON(w, http.StatusOK, groupResponse)
}

// List handles GET /groups
// @Summary      List my groups
// @Description  Get a paginated list of groups the current user belongs to
// @Tags         groups
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]GroupResponse}
// @Router       /groups [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
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

	groups, total, err := h.service.ListByUserID(r.Context(), userID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list groups")
		return
	}

	groupResponses := make([]*GroupResponse, len(groups))
	for i, g := range groups {
		groupResponses[i] = g.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, groupResponses, meta)
}

// Update handles PUT /groups/{groupId}
// @Summary      Update a group
// @Description  Rename a group or change its category (admins only)
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        request body UpdateGroupRequest true "Group update request"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := ParseGroupID(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	var req UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if fields := validate.Struct(req); fields != nil {
		response.ValidationFailed(w, fields)
		return
	}

	group, err := h.service.Update(r.Context(), id, userID, &req)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to update group")
		return
	}

	response.JSON(w, http.StatusOK, group.ToResponse())
}

// Delete handles DELETE /groups/{groupId}
// @Summary      Delete a group
// @Description  Delete a group with its expenses and settlements (admins only). Refused while balances are unsettled.
// @Tags         groups
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Failure      503 {object} response.APIResponse
// @Router       /groups/{groupId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := ParseGroupID(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to delete group")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Group deleted successfully"})
}

// AddMember handles POST /groups/{groupId}/members
// @Summary      Add member to group
// @Description  Add a user to a group (admins only)
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        request body AddMemberRequest true "Add member request"
// @Success      201 {object} response.APIResponse{data=MemberResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{groupId}/members [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := ParseGroupID(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if fields := validate.Struct(req); fields != nil {
		response.ValidationFailed(w, fields)
		return
	}

	member, err := h.service.AddMember(r.Context(), groupID, userID, &req)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to add member")
		return
	}

	response.JSON(w, http.StatusCreated, member.ToResponse())
}

// UpdateMember handles PUT /groups/{groupId}/members/{userId}
// @Summary      Change a member's role
// @Description  Promote a member to admin or demote an admin (admins only). The last admin cannot be demoted.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        userId path int true "User ID"
// @Param        request body UpdateMemberRequest true "Role update request"
// @Success      200 {object} response.APIResponse{data=MemberResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{groupId}/members/{userId} [put]
func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := ParseGroupID(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if fields := validate.Struct(req); fields != nil {
		response.ValidationFailed(w, fields)
		return
	}

	member, err := h.service.UpdateMember(r.Context(), groupID, actorID, userID, &req)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to update member")
		return
	}

	response.JSON(w, http.StatusOK, member.ToResponse())
}

// RemoveMember handles DELETE /groups/{groupId}/members/{userId}
// @Summary      Remove member from group
// @Description  Remove a user from a group (admins only). Their balances are kept.
// @Tags         groups
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        userId path int true "User ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId}/members/{userId} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := ParseGroupID(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.service.RemoveMember(r.Context(), groupID, actorID, userID); err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to remove member")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Member removed successfully"})
}

// Leave handles POST /groups/{groupId}/leave
// @Summary      Leave a group
// @Description  Leave a group. If the caller is its last admin, the longest-standing member becomes admin.
// @Tags         groups
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=LeaveResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{groupId}/leave [post]
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := ParseGroupID(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	newAdmin, err := h.service.Leave(r.Context(), groupID, userID)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to leave group")
		return
	}

	resp := &LeaveResponse{Message: "Left group successfully"}
	if newAdmin != nil {
		resp.Message = "Left group, new admin assigned"
		resp.NewAdmin = newAdmin.ToResponse()
	}
	response.JSON(w, http.StatusOK, resp)
}

// Invite handles GET /groups/{groupId}/invite
// @Summary      Get invite token
// @Description  Get the token other users can join the group with
// @Tags         groups
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=InviteResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{groupId}/invite [get]
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := ParseGroupID(r)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	token, err := h.service.InviteToken(r.Context(), groupID, userID)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to get invite token")
		return
	}

	response.JSON(w, http.StatusOK, &InviteResponse{Token: token, JoinPath: "/api/v1/groups/join/" + token})
}

// Join handles POST /groups/join/{token}
// @Summary      Join a group
// @Description  Join the group an invite token belongs to
// @Tags         groups
// @Produce      json
// @Param        token path string true "Invite token"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /groups/join/{token} [post]
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	group, err := h.service.JoinByToken(r.Context(), chi.URLParam(r, "token"), userID)
	if err != nil {
		if WriteError(w, err) {
			return
		}
		response.InternalError(w, "Failed to join group")
		return
	}

	response.JSON(w, http.StatusOK, group.ToResponse())
}
