package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/advising-service/internal/repositories"
	"github.com/SAP-F-2025/advising-service/internal/services"
	"github.com/SAP-F-2025/advising-service/internal/utils"
	"github.com/SAP-F-2025/advising-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type RoadmapHandler struct {
	BaseHandler
	roadmapService services.RoadmapService
	validator      *validator.Validator
}

func NewRoadmapHandler(
	roadmapService services.RoadmapService,
	validator *validator.Validator,
	logger utils.Logger,
) *RoadmapHandler {
	return &RoadmapHandler{
		BaseHandler:    NewBaseHandler(logger),
		roadmapService: roadmapService,
		validator:      validator,
	}
}

// CreateRoadmap creates a new career roadmap
// @Summary Create roadmap
// @Tags roadmaps
// @Accept json
// @Produce json
// @Param roadmap body services.CreateRoadmapRequest true "Roadmap data"
// @Success 201 {object} services.RoadmapResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /roadmaps [post]
func (h *RoadmapHandler) CreateRoadmap(c *gin.Context) {
	var req services.CreateRoadmapRequest
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

	roadmap, err := h.roadmapService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, roadmap)
}

// GetRoadmap retrieves a roadmap by name
// @Summary Get roadmap
// @Tags roadmaps
// @Produce json
// @Param name path string true "Roadmap name"
// @Success 200 {object} services.RoadmapResponse
// @Failure 404 {object} ErrorResponse
// @Router /roadmaps/{name} [get]
func (h *RoadmapHandler) GetRoadmap(c *gin.Context) {
	name, ok := h.requireNameParam(c, "name")
	if !ok {
		return
	}

	h.LogRequest(c, "Getting roadmap", "name", name)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	roadmap, err := h.roadmapService.GetByName(c.Request.Context(), name, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, roadmap)
}

// ListRoadmaps lists roadmaps with pagination and sorting
// @Summary List roadmaps
// @Tags roadmaps
// @Produce json
// @Success 200 {object} services.RoadmapListResponse
// @Router /roadmaps [get]
func (h *RoadmapHandler) ListRoadmaps(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := repositories.RoadmapFilters{
		Limit:     parsePageSize(c),
		Offset:    parseOffset(c),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		DateFrom:  parseDateFilter(c, "date_from"),
		DateTo:    parseDateFilter(c, "date_to"),
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}

	roadmaps, err := h.roadmapService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, roadmaps)
}

// PatchSection merges topic updates into one roadmap section
// @Summary Patch roadmap section
// @Description Topics named in the patch replace stored topics wholesale; sections are never created implicitly
// @Tags roadmaps
// @Accept json
// @Produce json
// @Param name path string true "Roadmap name"
// @Param section path string true "Section name"
// @Param topics body services.PatchSectionRequest true "Topic updates"
// @Success 200 {object} services.SectionChangeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /roadmaps/{name}/sections/{section} [patch]
func (h *RoadmapHandler) PatchSection(c *gin.Context) {
	name, ok := h.requireNameParam(c, "name")
	if !ok {
		return
	}
	section, ok := h.requireNameParam(c, "section")
	if !ok {
		return
	}

	h.LogRequest(c, "Patching roadmap section", "name", name, "section", section)

	var req services.PatchSectionRequest
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

	result, err := h.roadmapService.PatchSection(c.Request.Context(), name, section, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteSection removes a whole section from a roadmap
// @Summary Delete roadmap section
// @Tags roadmaps
// @Produce json
// @Param name path string true "Roadmap name"
// @Param section path string true "Section name"
// @Success 200 {object} services.SectionChangeResponse
// @Failure 404 {object} ErrorResponse
// @Router /roadmaps/{name}/sections/{section} [delete]
func (h *RoadmapHandler) DeleteSection(c *gin.Context) {
	name, ok := h.requireNameParam(c, "name")
	if !ok {
		return
	}
	section, ok := h.requireNameParam(c, "section")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting roadmap section", "name", name, "section", section)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	result, err := h.roadmapService.DeleteSection(c.Request.Context(), name, section, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteRoadmap deletes a whole roadmap document
// @Summary Delete roadmap
// @Tags roadmaps
// @Param name path string true "Roadmap name"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /roadmaps/{name} [delete]
func (h *RoadmapHandler) DeleteRoadmap(c *gin.Context) {
	name, ok := h.requireNameParam(c, "name")
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting roadmap", "name", name)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.roadmapService.Delete(c.Request.Context(), name, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
