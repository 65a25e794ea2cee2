package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/advising-service/internal/repositories"
	"github.com/SAP-F-2025/advising-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	BaseHandler
	userRepo repositories.UserRepository
}

func NewUserHandler(userRepo repositories.UserRepository, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userRepo:    userRepo,
	}
}

// GetMe returns the caller's identity with the live role
// @Summary Get current user
// @Description Returns the authenticated user as resolved from the identity store, including the current role
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetUser retrieves a user by ID
// @Summary Get user by ID
// @Description Get user information by ID
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "User ID is required",
		})
		return
	}

	h.LogRequest(c, "Getting user", "user_id", userID)

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "User not found",
			})
			return
		}
		h.LogError(c, err, "Failed to get user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to get user",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}
