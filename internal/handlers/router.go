package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/advising-service/internal/config"
	"github.com/SAP-F-2025/advising-service/internal/models"
	"github.com/SAP-F-2025/advising-service/internal/repositories"
	"github.com/SAP-F-2025/advising-service/internal/services"
	"github.com/SAP-F-2025/advising-service/internal/utils"
	"github.com/SAP-F-2025/advising-service/internal/validator"
)

type HandlerManager struct {
	degreeHandler  *DegreeHandler
	roadmapHandler *RoadmapHandler
	profileHandler *ProfileHandler
	userHandler    *UserHandler
	authMiddleware *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		degreeHandler:  NewDegreeHandler(serviceManager.Degree(), serviceManager.Export(), validator, logger),
		roadmapHandler: NewRoadmapHandler(serviceManager.Roadmap(), validator, logger),
		profileHandler: NewProfileHandler(serviceManager.Profile(), validator, logger),
		userHandler:    NewUserHandler(userRepo, logger),
		authMiddleware: authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware()) // Apply authentication to all API routes
	{
		// Degree routes
		degrees := v1.Group("/degrees")
		{
			// Curriculum mutations - Admins only
			degrees.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.degreeHandler.CreateDegree)
			degrees.PATCH("/:name/subjects", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.degreeHandler.UpdateSubjects)
			degrees.DELETE("/:name/subjects", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.degreeHandler.DeleteSubjects)
			degrees.DELETE("/:name", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.degreeHandler.DeleteDegree)

			// View degrees - All authenticated users
			degrees.GET("", hm.degreeHandler.ListDegrees)
			degrees.GET("/:name", hm.degreeHandler.GetDegree)
			degrees.GET("/:name/export", hm.degreeHandler.ExportDegree)
		}

		// Roadmap routes
		roadmaps := v1.Group("/roadmaps")
		{
			// Roadmap mutations - Admins only
			roadmaps.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.roadmapHandler.CreateRoadmap)
			roadmaps.PATCH("/:name/sections/:section", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.roadmapHandler.PatchSection)
			roadmaps.DELETE("/:name/sections/:section", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.roadmapHandler.DeleteSection)
			roadmaps.DELETE("/:name", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.roadmapHandler.DeleteRoadmap)

			// View roadmaps - All authenticated users
			roadmaps.GET("", hm.roadmapHandler.ListRoadmaps)
			roadmaps.GET("/:name", hm.roadmapHandler.GetRoadmap)
		}

		// Profile metadata routes - each user works on their own document;
		// the whitelist inside the service decides which fields their role
		// may touch
		profiles := v1.Group("/profiles")
		{
			profiles.GET("/me/metadata", hm.profileHandler.GetMyMetadata)
			profiles.PATCH("/me/metadata", hm.profileHandler.UpdateMyMetadata)
			profiles.DELETE("/me/metadata", hm.profileHandler.DeleteMyMetadata)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/me", hm.userHandler.GetMe)
			users.GET("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.userHandler.GetUser)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "advising-service",
		})
	})
}
