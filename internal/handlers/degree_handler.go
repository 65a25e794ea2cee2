package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/SAP-F-2025/advising-service/internal/repositories"
	"github.com/SAP-F-2025/advising-service/internal/services"
	"github.com/SAP-F-2025/advising-service/internal/utils"
	"github.com/SAP-F-2025/advising-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type DegreeHandler struct {
	BaseHandler
	degreeService services.DegreeService
	exportService services.ExportService
	validator     *validator.Validator
}

func NewDegreeHandler(
	degreeService services.DegreeService,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *DegreeHandler {
	return &DegreeHandler{
		BaseHandler:   NewBaseHandler(logger),
		degreeService: degreeService,
		exportService: exportService,
		validator:     validator,
	}
}

// CreateDegree creates a new degree with its curriculum
// @Summary Create degree
// @Description Creates a degree document; the name must not already exist
// @Tags degrees
// @Accept json
// @Produce json
// @Param degree body services.CreateDegreeRequest true "Degree data"
// @Success 201 {object} services.DegreeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /degrees [post]
func (h *DegreeHandler) CreateDegree(c *gin.Context) {
	var req services.CreateDegreeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	degree, err := h.degreeService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, degree)
}

// GetDegree retrieves a degree by name
// @Summary Get degree
// @Tags degrees
// @Produce json
// @Param name path string true "Degree name"
// @Success 200 {object} services.DegreeResponse
// @Failure 404 {object} ErrorResponse
// @Router /degrees/{name} [get]
func (h *DegreeHandler) GetDegree(c *gin.Context) {
	name, ok := h.requireNameParam(c, "name")
	if !ok {
		return
	}

	h.LogRequest(c, "Getting degree", "name", name)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	degree, err := h.degreeService.GetByName(c.Request.Context(), name, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, degree)
}

// ListDegrees lists degrees with pagination and sorting
// @Summary List degrees
// @Tags degrees
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} services.DegreeListResponse
// @Router /degrees [get]
func (h *DegreeHandler) ListDegrees(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := repositories.DegreeFilters{
		Limit:     parsePageSize(c),
		Offset:    parseOffset(c),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}

	degrees, err := h.degreeService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, degrees)
}

// UpdateSubjects applies partial subject updates to a degree curriculum
// @Summary Update degree subjects
// @Description Merges partial subject patches matched by subject name; names without a match are reported back, never inserted
// @Tags degrees
// @Accept json
// @Produce json
// @Param name path string true "Degree name"
// @Param subjects body services.UpdateSubjectsRequest true "Subject updates"
// @Success 200 {object} services.SubjectsUpdateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /degrees/{name}/subjects [patch]
func (h *DegreeHandler) UpdateSubjects(c *gin.Context) {
	name, ok := h.requireNameParam(c, "name")
	if !ok {
		return
	}

	h.LogRequest(c, "Updating degree subjects", "name", name)

	var req services.UpdateSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	result, err := h.degreeService.UpdateSubjects(c.Request.Context(), name, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteSubjects removes named subjects from a degree curriculum
// @Summary Delete degree subjects
// @Tags degrees
// @Accept json
// @Produce json
// @Param name path string true "Degree name"
// @Param names body services.DeleteSubjectsRequest true "Subject names"
// @Success 200 {object} services.SubjectsDeleteResponse
// @Failure 404 {object} ErrorResponse
// @Router /degrees/{name}/subjects [delete]
func (h *DegreeHandler) DeleteSubjects(c *gin.Context) {
	name, ok := h.requireNameParam(c, "name")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting degree subjects", "name", name)

	var req services.DeleteSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	result, err := h.degreeService.DeleteSubjects(c.Request.Context(), name, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteDegree deletes a whole degree document
// @Summary Delete degree
// @Tags degrees
// @Param name path string true "Degree name"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /degrees/{name} [delete]
func (h *DegreeHandler) DeleteDegree(c *gin.Context) {
	name, ok := h.requireNameParam(c, "name")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting degree", "name", name)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.degreeService.Delete(c.Request.Context(), name, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ExportDegree downloads the degree curriculum as an xlsx workbook
// @Summary Export degree subjects
// @Tags degrees
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param name path string true "Degree name"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /degrees/{name}/export [get]
func (h *DegreeHandler) ExportDegree(c *gin.Context) {
	name, ok := h.requireNameParam(c, "name")
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting degree", "name", name)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	data, filename, err := h.exportService.ExportDegreeSubjects(c.Request.Context(), name, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ===== HELPER METHODS =====

func parsePageSize(c *gin.Context) int {
	size := 10
	if sizeStr := c.Query("size"); sizeStr != "" {
		if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
			size = s
		}
	}
	return size
}

func parseOffset(c *gin.Context) int {
	page := 1
	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	return (page - 1) * parsePageSize(c)
}

func parseDateFilter(c *gin.Context, key string) *time.Time {
	if raw := c.Query(key); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return &t
		}
	}
	return nil
}
