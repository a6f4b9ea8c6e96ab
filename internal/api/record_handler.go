package api

import (
	"errors"
	"net/http"

	"cleoaura/careteam-app/internal/access"
	"cleoaura/careteam-app/internal/domain"
	"cleoaura/careteam-app/internal/service"

	"github.com/gin-gonic/gin"
)

type RecordHandler struct {
	recordService service.RecordService
}

func NewRecordHandler(recordService service.RecordService) *RecordHandler {
	return &RecordHandler{recordService: recordService}
}

// --- DTOs ---

type PutRecordRequest struct {
	RecordID string                 `json:"recordId" binding:"required"`
	Date     string                 `json:"date"`
	Data     map[string]interface{} `json:"data" binding:"required"`
}

type ProgressPhotoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// --- Handler Methods ---

// PutRecord godoc
// @Summary Write one module record
// @Description Upserts one entry of a trainee sub-collection. Owner only.
// @Tags Records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee ID"
// @Param collection path string true "Sub-collection name" Enums(workouts, recovery, nutritionDays, wellbeingDays, progressMeasurements, wearablesSummary)
// @Param record body PutRecordRequest true "Record payload"
// @Success 200 {object} gin.H "Record stored"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Access denied"
// @Router /trainees/{traineeId}/data/{collection} [put]
func (h *RecordHandler) PutRecord(c *gin.Context) {
	var req PutRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	requester, collection, ok := recordRequestScope(c)
	if !ok {
		return
	}

	record := &domain.ModuleRecord{
		RecordID: req.RecordID,
		Date:     req.Date,
		Data:     req.Data,
	}
	if err := h.recordService.PutRecord(c.Request.Context(), requester, c.Param("traineeId"), collection, record); err != nil {
		mapRecordError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "stored"})
}

// ListRecords godoc
// @Summary List a trainee sub-collection
// @Description Returns all records of one sub-collection. Non-owners need an
// active grant covering the gating module.
// @Tags Records
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee ID"
// @Param collection path string true "Sub-collection name"
// @Success 200 {array} domain.ModuleRecord
// @Failure 403 {object} gin.H "Access denied"
// @Router /trainees/{traineeId}/data/{collection} [get]
func (h *RecordHandler) ListRecords(c *gin.Context) {
	requester, collection, ok := recordRequestScope(c)
	if !ok {
		return
	}

	records, err := h.recordService.ListRecords(c.Request.Context(), requester, c.Param("traineeId"), collection)
	if err != nil {
		mapRecordError(c, err)
		return
	}

	if records == nil {
		records = []domain.ModuleRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// GetRecord godoc
// @Summary Read one module record
// @Tags Records
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee ID"
// @Param collection path string true "Sub-collection name"
// @Param recordId path string true "Record ID"
// @Success 200 {object} domain.ModuleRecord
// @Failure 403 {object} gin.H "Access denied"
// @Failure 404 {object} gin.H "Record not found"
// @Router /trainees/{traineeId}/data/{collection}/{recordId} [get]
func (h *RecordHandler) GetRecord(c *gin.Context) {
	requester, collection, ok := recordRequestScope(c)
	if !ok {
		return
	}

	record, err := h.recordService.GetRecord(c.Request.Context(), requester, c.Param("traineeId"), collection, c.Param("recordId"))
	if err != nil {
		mapRecordError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// DeleteRecord godoc
// @Summary Delete one module record
// @Tags Records
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee ID"
// @Param collection path string true "Sub-collection name"
// @Param recordId path string true "Record ID"
// @Success 200 {object} gin.H "Record deleted"
// @Failure 403 {object} gin.H "Access denied"
// @Router /trainees/{traineeId}/data/{collection}/{recordId} [delete]
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	requester, collection, ok := recordRequestScope(c)
	if !ok {
		return
	}

	if err := h.recordService.DeleteRecord(c.Request.Context(), requester, c.Param("traineeId"), collection, c.Param("recordId")); err != nil {
		mapRecordError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// RequestProgressPhotoUpload godoc
// @Summary Pre-signed upload URL for a progress photo
// @Description Returns a short-lived PUT URL into the trainee's progress
// photo namespace. Owner only.
// @Tags Records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee ID"
// @Param upload body ProgressPhotoUploadRequest true "Upload details"
// @Success 200 {object} service.UploadURLResponse
// @Failure 400 {object} gin.H "Invalid content type"
// @Failure 403 {object} gin.H "Access denied"
// @Router /trainees/{traineeId}/progress-photos/upload-url [post]
func (h *RecordHandler) RequestProgressPhotoUpload(c *gin.Context) {
	var req ProgressPhotoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return
	}

	resp, err := h.recordService.RequestProgressPhotoUploadURL(c.Request.Context(), requester, c.Param("traineeId"), req.ContentType)
	if err != nil {
		mapRecordError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetProgressPhotoURL godoc
// @Summary Pre-signed download URL for a progress photo
// @Description Gated by the progress module grant like any progress data.
// @Tags Records
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee ID"
// @Param objectKey query string true "Stored object key"
// @Success 200 {object} gin.H "downloadUrl"
// @Failure 400 {object} gin.H "Key outside trainee namespace"
// @Failure 403 {object} gin.H "Access denied"
// @Router /trainees/{traineeId}/progress-photos/download-url [get]
func (h *RecordHandler) GetProgressPhotoURL(c *gin.Context) {
	objectKey := c.Query("objectKey")
	if objectKey == "" {
		abortWithError(c, http.StatusBadRequest, "objectKey query parameter is required")
		return
	}

	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return
	}

	downloadURL, err := h.recordService.GetProgressPhotoURL(c.Request.Context(), requester, c.Param("traineeId"), objectKey)
	if err != nil {
		mapRecordError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"downloadUrl": downloadURL})
}

// recordRequestScope pulls the caller identity and the collection path
// parameter, rejecting unknown collection names before the service runs.
func recordRequestScope(c *gin.Context) (access.Identity, access.Collection, bool) {
	requester, err := getIdentityFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify requester from token.")
		return access.Identity{}, "", false
	}

	collection := access.Collection(c.Param("collection"))
	if _, known := access.ModuleForCollection(collection); !known {
		abortWithError(c, http.StatusNotFound, "Unknown collection")
		return access.Identity{}, "", false
	}
	return requester, collection, true
}

func mapRecordError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUploadURLError):
		abortWithError(c, http.StatusInternalServerError, err.Error())
	case errors.Is(err, access.ErrPermissionDenied):
		abortWithError(c, http.StatusForbidden, "You do not have access to this data")
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
