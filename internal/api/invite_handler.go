package api

import (
	"errors"
	"net/http"

	"cleoaura/careteam-app/internal/access"
	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/service"

	"github.com/gin-gonic/gin"
)

type InviteHandler struct {
	inviteService service.InviteService
}

func NewInviteHandler(inviteService service.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// --- DTOs ---

type CreateInviteRequest struct {
	Role        domain.Role `json:"role" binding:"required,oneof=trainer nutritionist counsellor"`
	TargetEmail string      `json:"targetEmail" binding:"omitempty,email"`
}

type AcceptInviteRequest struct {
	DisplayName string `json:"displayName"`
}

// --- Handler Methods ---

// CreateInvite godoc
// @Summary Create a care-team invite
// @Description Issues a role-scoped, 7-day invite code plus a shareable link. Trainee only.
// @Tags Invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee ID"
// @Param invite body CreateInviteRequest true "Invite details"
// @Success 201 {object} service.CreatedInvite "Invite created"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Not the owning trainee"
// @Router /trainees/{traineeId}/invites [post]
func (h *InviteHandler) CreateInvite(c *gin.Context) {
	var req CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return
	}

	created, err := h.inviteService.CreateInvite(c.Request.Context(), requester, c.Param("traineeId"), req.Role, req.TargetEmail)
	if err != nil {
		mapInviteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListInvites godoc
// @Summary List the trainee's issued invites
// @Tags Invites
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee ID"
// @Success 200 {array} domain.Invite
// @Failure 403 {object} gin.H "Not the owning trainee"
// @Router /trainees/{traineeId}/invites [get]
func (h *InviteHandler) ListInvites(c *gin.Context) {
	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return
	}

	invites, err := h.inviteService.ListInvites(c.Request.Context(), requester, c.Param("traineeId"))
	if err != nil {
		mapInviteError(c, err)
		return
	}

	if invites == nil {
		invites = []domain.Invite{}
	}
	c.JSON(http.StatusOK, invites)
}

// AcceptInvite godoc
// @Summary Accept a care-team invite
// @Description Consumes a pending invite; on success the professional joins the care team with an all-off grant.
// @Tags Invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee ID"
// @Param code path string true "Invite code"
// @Success 200 {object} gin.H "Invite accepted"
// @Failure 400 {object} gin.H "Malformed code"
// @Failure 404 {object} gin.H "Invite not found"
// @Failure 409 {object} gin.H "Invite no longer acceptable"
// @Router /trainees/{traineeId}/invites/{code}/accept [post]
func (h *InviteHandler) AcceptInvite(c *gin.Context) {
	var req AcceptInviteRequest
	// DisplayName is optional; ignore body parse errors for an empty body.
	_ = c.ShouldBindJSON(&req)

	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return
	}

	user := service.AcceptingUser{
		UID:         requester.UID,
		Role:        requester.Role,
		Email:       requester.Email,
		DisplayName: req.DisplayName,
	}

	if err := h.inviteService.AcceptInvite(c.Request.Context(), c.Param("traineeId"), c.Param("code"), user); err != nil {
		mapInviteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

// RevokeInvite godoc
// @Summary Revoke a pending invite
// @Tags Invites
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee ID"
// @Param code path string true "Invite code"
// @Success 200 {object} gin.H "Invite revoked"
// @Failure 403 {object} gin.H "Not the owning trainee"
// @Failure 409 {object} gin.H "Invite not pending"
// @Router /trainees/{traineeId}/invites/{code}/revoke [post]
func (h *InviteHandler) RevokeInvite(c *gin.Context) {
	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return
	}

	if err := h.inviteService.RevokeInvite(c.Request.Context(), requester, c.Param("traineeId"), c.Param("code")); err != nil {
		mapInviteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}

// ListIncomingInvites godoc
// @Summary Pending invites addressed to the caller
// @Description Cross-trainee inbox of pending invites targeting the caller's verified email. Professionals only.
// @Tags Invites
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Invite
// @Router /invites/incoming [get]
func (h *InviteHandler) ListIncomingInvites(c *gin.Context) {
	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return
	}

	invites, err := h.inviteService.ListIncomingInvites(c.Request.Context(), requester.Email)
	if err != nil {
		mapInviteError(c, err)
		return
	}

	if invites == nil {
		invites = []domain.Invite{}
	}
	c.JSON(http.StatusOK, invites)
}

// mapInviteError maps invite service errors to HTTP status codes.
func mapInviteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInviteNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInviteInactive),
		errors.Is(err, service.ErrInviteExpired),
		errors.Is(err, service.ErrRoleMismatch),
		errors.Is(err, service.ErrEmailMismatch):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, access.ErrPermissionDenied):
		abortWithError(c, http.StatusForbidden, "You do not have access to this data")
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
