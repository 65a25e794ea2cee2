package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/advising-service/internal/services"
	"github.com/SAP-F-2025/advising-service/internal/utils"
	"github.com/SAP-F-2025/advising-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	BaseHandler
	profileService services.ProfileService
	validator      *validator.Validator
}

func NewProfileHandler(
	profileService services.ProfileService,
	validator *validator.Validator,
	logger utils.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    NewBaseHandler(logger),
		profileService: profileService,
		validator:      validator,
	}
}

// GetMyMetadata returns the caller's profile metadata
// @Summary Get my profile metadata
// @Description Returns the metadata fields visible to the caller's current role
// @Tags profiles
// @Produce json
// @Success 200 {object} services.MetadataResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /profiles/me/metadata [get]
func (h *ProfileHandler) GetMyMetadata(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	metadata, err := h.profileService.GetMetadata(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, metadata)
}

// UpdateMyMetadata merges a partial metadata payload into the caller's profile
// @Summary Update my profile metadata
// @Description All-or-nothing partial update; every field is checked against the whitelist for the caller's live role
// @Tags profiles
// @Accept json
// @Produce json
// @Param metadata body map[string]interface{} true "Metadata fields"
// @Success 200 {object} services.MetadataUpdateResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /profiles/me/metadata [patch]
func (h *ProfileHandler) UpdateMyMetadata(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Updating profile metadata", "user_id", userID)

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.profileService.UpdateMetadata(c.Request.Context(), userID, payload)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteMyMetadata removes whole fields from the caller's profile metadata
// @Summary Delete my profile metadata fields
// @Tags profiles
// @Accept json
// @Produce json
// @Param fields body services.DeleteMetadataRequest true "Field names"
// @Success 200 {object} services.MetadataDeleteResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /profiles/me/metadata [delete]
func (h *ProfileHandler) DeleteMyMetadata(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting profile metadata fields", "user_id", userID)

	var req services.DeleteMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.profileService.DeleteMetadata(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
