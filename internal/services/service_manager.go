package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/advising-service/internal/events"
	"github.com/SAP-F-2025/advising-service/internal/repositories"
	"github.com/SAP-F-2025/advising-service/internal/validator"
	"gorm.io/gorm"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	EnableDebugLogging bool
	LogLevel           slog.Level

	// Service-specific configurations
	Degree  ServiceConfig
	Roadmap ServiceConfig
	Profile ServiceConfig

	// Global settings
	DefaultTimeout time.Duration
	MaxRetries     int
}

type ServiceConfig struct {
	Enabled      bool
	CacheEnabled bool
	CacheTTL     time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	config    ServiceManagerConfig

	// Service instances
	degreeService  DegreeService
	roadmapService RoadmapService
	profileService ProfileService
	exportService  ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		config:    config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ServiceManager {
	config := ServiceManagerConfig{
		EnableDebugLogging: false,
		LogLevel:           slog.LevelInfo,

		Degree: ServiceConfig{
			Enabled:      true,
			CacheEnabled: true,
			CacheTTL:     10 * time.Minute,
		},
		Roadmap: ServiceConfig{
			Enabled:      true,
			CacheEnabled: true,
			CacheTTL:     10 * time.Minute,
		},
		Profile: ServiceConfig{
			Enabled:      true,
			CacheEnabled: false, // stale snapshots would defeat the conditional write cycle
			CacheTTL:     0,
		},

		DefaultTimeout: 30 * time.Second,
		MaxRetries:     maxWriteRetries,
	}

	return NewServiceManager(db, repo, logger, validator, publisher, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if sm.config.Degree.Enabled {
		sm.degreeService = NewDegreeService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
		sm.logger.Info("Degree service initialized")
	}

	if sm.config.Roadmap.Enabled {
		sm.roadmapService = NewRoadmapService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
		sm.logger.Info("Roadmap service initialized")
	}

	if sm.config.Profile.Enabled {
		sm.profileService = NewProfileService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
		sm.logger.Info("Profile service initialized")
	}

	sm.exportService = NewExportService(sm.repo, sm.logger)
	sm.logger.Info("Export service initialized")

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Degree() DegreeService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Degree.Enabled && sm.degreeService != nil {
		return sm.degreeService
	}

	panic("degree service not enabled or not initialized")
}

func (sm *serviceManager) Roadmap() RoadmapService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Roadmap.Enabled && sm.roadmapService != nil {
		return sm.roadmapService
	}

	panic("roadmap service not enabled or not initialized")
}

func (sm *serviceManager) Profile() ProfileService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Profile.Enabled && sm.profileService != nil {
		return sm.profileService
	}

	panic("profile service not enabled or not initialized")
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.exportService != nil {
		return sm.exportService
	}

	panic("export service not initialized")
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if repoManager, ok := sm.repo.(repositories.RepositoryManager); ok {
		if err := repoManager.Shutdown(ctx); err != nil {
			sm.logger.Error("Failed to shutdown repository manager", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// ===== UTILITY METHODS =====

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}

// IsInitialized returns whether the service manager has been initialized
func (sm *serviceManager) IsInitialized() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.initialized
}
