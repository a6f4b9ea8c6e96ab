package api

import (
	"errors"
	"net/http"
	"time"

	"cleoaura/careteam-app/internal/access"
	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService service.SessionService
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// --- DTOs ---

type SessionOfferRequest struct {
	Title       string                 `json:"title" binding:"required,min=3"`
	Description string                 `json:"description" binding:"required,min=3"`
	Audience    domain.SessionAudience `json:"audience" binding:"required,oneof=trainee trainer nutritionist counsellor all"`
	ScheduledAt time.Time              `json:"scheduledAt" binding:"required"`
	DisplayName string                 `json:"displayName"`
}

func (r SessionOfferRequest) draft() service.SessionDraft {
	return service.SessionDraft{
		Title:       r.Title,
		Description: r.Description,
		Audience:    r.Audience,
		ScheduledAt: r.ScheduledAt,
	}
}

// --- Handler Methods ---

// CreateOffer godoc
// @Summary Post a session offer
// @Description Professionals only. The offer is stamped with the caller's role.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param offer body SessionOfferRequest true "Session details"
// @Success 201 {object} domain.SessionOffer
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Not a professional"
// @Router /sessions [post]
func (h *SessionHandler) CreateOffer(c *gin.Context) {
	var req SessionOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return
	}

	offer, err := h.sessionService.CreateOffer(c.Request.Context(), requester, req.DisplayName, req.draft())
	if err != nil {
		mapSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, offer)
}

// UpdateOffer godoc
// @Summary Edit a session offer
// @Description Only the creator may edit.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Param offer body SessionOfferRequest true "Updated details"
// @Success 200 {object} domain.SessionOffer
// @Failure 403 {object} gin.H "Not the creator"
// @Failure 404 {object} gin.H "Session not found"
// @Router /sessions/{sessionId} [put]
func (h *SessionHandler) UpdateOffer(c *gin.Context) {
	var req SessionOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return
	}

	offer, err := h.sessionService.UpdateOffer(c.Request.Context(), requester, c.Param("sessionId"), req.draft())
	if err != nil {
		mapSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// ListOffers godoc
// @Summary Browse session offers
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.SessionOffer
// @Router /sessions [get]
func (h *SessionHandler) ListOffers(c *gin.Context) {
	offers, err := h.sessionService.ListOffers(c.Request.Context())
	if err != nil {
		mapSessionError(c, err)
		return
	}

	if offers == nil {
		offers = []domain.SessionOffer{}
	}
	c.JSON(http.StatusOK, offers)
}

// Enroll godoc
// @Summary Enroll in a session
// @Description Trainees only. Enrolling twice is a no-op.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} domain.Enrollment
// @Failure 403 {object} gin.H "Not a trainee"
// @Failure 404 {object} gin.H "Session not found"
// @Router /sessions/{sessionId}/enroll [post]
func (h *SessionHandler) Enroll(c *gin.Context) {
	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return
	}

	enrollment, err := h.sessionService.Enroll(c.Request.Context(), requester, c.Param("sessionId"))
	if err != nil {
		mapSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// Withdraw godoc
// @Summary Withdraw from a session
// @Description Removes the caller's own enrollment. Safe to repeat.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {object} gin.H "Withdrawn"
// @Failure 403 {object} gin.H "Not a trainee"
// @Router /sessions/{sessionId}/enroll [delete]
func (h *SessionHandler) Withdraw(c *gin.Context) {
	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return
	}

	if err := h.sessionService.Withdraw(c.Request.Context(), requester, c.Param("sessionId")); err != nil {
		mapSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "withdrawn"})
}

// ListEnrollments godoc
// @Summary List a session's enrollments
// @Description Only the session's creator may see who enrolled.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Success 200 {array} domain.Enrollment
// @Failure 403 {object} gin.H "Not the creator"
// @Failure 404 {object} gin.H "Session not found"
// @Router /sessions/{sessionId}/enrollments [get]
func (h *SessionHandler) ListEnrollments(c *gin.Context) {
	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return
	}

	enrollments, err := h.sessionService.ListEnrollments(c.Request.Context(), requester, c.Param("sessionId"))
	if err != nil {
		mapSessionError(c, err)
		return
	}

	if enrollments == nil {
		enrollments = []domain.Enrollment{}
	}
	c.JSON(http.StatusOK, enrollments)
}

func mapSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, access.ErrPermissionDenied):
		abortWithError(c, http.StatusForbidden, "You do not have access to this data")
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
