package api

import (
	"errors"
	"net/http"

	"cleoaura/careteam-app/internal/access"
	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/service"

	"github.com/gin-gonic/gin"
)

type TeamHandler struct {
	grantService  service.GrantService
	rosterService service.RosterService
}

func NewTeamHandler(grantService service.GrantService, rosterService service.RosterService) *TeamHandler {
	return &TeamHandler{grantService: grantService, rosterService: rosterService}
}

// --- DTOs ---

type ToggleModuleRequest struct {
	Module  domain.ModuleKey `json:"module" binding:"required"`
	Enabled *bool            `json:"enabled" binding:"required"`
}

type SetGrantActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// --- Handler Methods ---

// ListTeam godoc
// @Summary List the trainee's care team
// @Description Returns every team member joined with their grant. Trainee only.
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee ID"
// @Success 200 {array} service.TeamView
// @Failure 403 {object} gin.H "Not the owning trainee"
// @Router /trainees/{traineeId}/team [get]
func (h *TeamHandler) ListTeam(c *gin.Context) {
	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return
	}

	team, err := h.grantService.ListTeam(c.Request.Context(), requester, c.Param("traineeId"))
	if err != nil {
		mapTeamError(c, err)
		return
	}

	if team == nil {
		team = []service.TeamView{}
	}
	c.JSON(http.StatusOK, team)
}

// ToggleModule godoc
// @Summary Toggle one module on a member's grant
// @Description Flips a single module flag. Any toggle also re-enables a paused grant.
// @Tags Team
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee ID"
// @Param memberUid path string true "Team member UID"
// @Param toggle body ToggleModuleRequest true "Module and desired state"
// @Success 200 {object} gin.H "Grant updated"
// @Failure 400 {object} gin.H "Unknown module key"
// @Failure 403 {object} gin.H "Not the owning trainee"
// @Failure 404 {object} gin.H "No grant for member"
// @Router /trainees/{traineeId}/team/{memberUid}/modules [put]
func (h *TeamHandler) ToggleModule(c *gin.Context) {
	var req ToggleModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return
	}

	err = h.grantService.ToggleModule(c.Request.Context(), requester, c.Param("traineeId"), c.Param("memberUid"), req.Module, *req.Enabled)
	if err != nil {
		mapTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// SetGrantActive godoc
// @Summary Pause or resume a member's grant
// @Description Sets the grant-wide active flag without touching per-module choices.
// @Tags Team
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee ID"
// @Param memberUid path string true "Team member UID"
// @Param state body SetGrantActiveRequest true "Desired active state"
// @Success 200 {object} gin.H "Grant updated"
// @Failure 403 {object} gin.H "Not the owning trainee"
// @Failure 404 {object} gin.H "No grant for member"
// @Router /trainees/{traineeId}/team/{memberUid}/active [put]
func (h *TeamHandler) SetGrantActive(c *gin.Context) {
	var req SetGrantActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return
	}

	err = h.grantService.SetGrantActive(c.Request.Context(), requester, c.Param("traineeId"), c.Param("memberUid"), *req.Active)
	if err != nil {
		mapTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// RevokeAccess godoc
// @Summary Remove a member from the care team
// @Description Deletes the membership and its grant. Safe to repeat.
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee ID"
// @Param memberUid path string true "Team member UID"
// @Success 200 {object} gin.H "Member removed"
// @Failure 403 {object} gin.H "Not the owning trainee"
// @Router /trainees/{traineeId}/team/{memberUid} [delete]
func (h *TeamHandler) RevokeAccess(c *gin.Context) {
	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return
	}

	err = h.grantService.RevokeAccess(c.Request.Context(), requester, c.Param("traineeId"), c.Param("memberUid"))
	if err != nil {
		mapTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}

// ListClients godoc
// @Summary The caller's client roster
// @Description Reverse lookup of every grant naming the caller, with active
// client counts per module. Professionals only.
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Roster
// @Router /clients [get]
func (h *TeamHandler) ListClients(c *gin.Context) {
	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return
	}

	roster, err := h.rosterService.ListClients(c.Request.Context(), requester.UID)
	if err != nil {
		mapTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, roster)
}

func mapTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGrantNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, access.ErrPermissionDenied):
		abortWithError(c, http.StatusForbidden, "You do not have access to this data")
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
