package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/advising-service/internal/services"
	"github.com/SAP-F-2025/advising-service/internal/utils"
	"github.com/SAP-F-2025/advising-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the pieces every handler needs: logging and the shared
// service error mapping.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	utils.FromContext(c, h.logger).Error(msg, append(args, "error", err)...)
}

// handleServiceError translates service errors to HTTP responses. A metadata
// field rejected for the caller's role is an authorization failure (403), not
// a malformed request.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, ve := range verrs {
			if ve.Rule == validator.RuleFieldNotAllowed {
				c.JSON(http.StatusForbidden, ErrorResponse{
					Error:   "field_not_allowed",
					Message: "Field is not writable by your role",
					Details: verrs,
				})
				return
			}
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "Request payload failed validation",
			Details: verrs,
		})
		return
	}

	if errors.Is(err, services.ErrIdentityNotFound) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Identity no longer exists",
		})
		return
	}

	if services.IsPermissionError(err) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: err.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrDegreeNotFound),
		errors.Is(err, services.ErrRoadmapNotFound),
		errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrSectionNotFound),
		errors.Is(err, services.ErrNothingToDelete):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrDegreeExists),
		errors.Is(err, services.ErrRoadmapExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "already_exists",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrWriteConflict):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "write_conflict",
			Message: "Document was modified concurrently, please retry",
		})
	case errors.Is(err, services.ErrNoValidFields):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "no_valid_fields",
			Message: "No valid fields to update",
		})
	default:
		h.logger.Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error",
		})
	}
}

// requireUserID pulls the authenticated user id from context, answering 401
// when the auth middleware did not run or rejected the request.
func (h *BaseHandler) requireUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
		return "", false
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
		return "", false
	}
	return id, true
}

// requireNameParam reads a non-empty :name path parameter.
func (h *BaseHandler) requireNameParam(c *gin.Context, param string) (string, bool) {
	name := c.Param(param)
	if name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Missing " + param + " parameter",
		})
		return "", false
	}
	return name, true
}
