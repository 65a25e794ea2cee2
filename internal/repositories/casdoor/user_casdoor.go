package casdoor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/advising-service/internal/models"
	"github.com/SAP-F-2025/advising-service/internal/repositories"
)

// CasdoorConfig holds the configuration for Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

// UserCasdoor resolves live identities from Casdoor. The role returned here
// is the authoritative one for every authorization decision; token claims
// are never consulted for it.
type UserCasdoor struct {
	client *casdoorsdk.Client
	redis  *redis.Client
	config CasdoorConfig

	// Cache settings
	cachePrefix string
	cacheTTL    time.Duration
}

func NewUserCasdoor(config CasdoorConfig, redisClient *redis.Client) repositories.UserRepository {
	client := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)

	return &UserCasdoor{
		client:      client,
		redis:       redisClient,
		config:      config,
		cachePrefix: "user:",
		cacheTTL:    time.Minute, // Short TTL: roles must be re-resolved promptly after a demotion
	}
}

// ===== CACHE METHODS =====

func (u *UserCasdoor) getCacheKey(key string) string {
	return fmt.Sprintf("%s%s", u.cachePrefix, key)
}

func (u *UserCasdoor) getUserFromCache(ctx context.Context, key string) (*models.User, error) {
	if u.redis == nil {
		return nil, nil // Cache not available
	}

	cacheKey := u.getCacheKey(key)
	data, err := u.redis.Get(ctx, cacheKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Not found in cache
		}
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached user: %w", err)
	}

	return &user, nil
}

func (u *UserCasdoor) setUserCache(ctx context.Context, key string, user *models.User) error {
	if u.redis == nil {
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user for cache: %w", err)
	}

	cacheKey := u.getCacheKey(key)
	return u.redis.Set(ctx, cacheKey, data, u.cacheTTL).Err()
}

// ===== CONVERSION METHODS =====

func (u *UserCasdoor) convertCasdoorUserToModel(casdoorUser *casdoorsdk.User) *models.User {
	if casdoorUser == nil {
		return nil
	}

	var createdAt, updatedAt time.Time
	if casdoorUser.CreatedTime != "" {
		createdAt, _ = time.Parse(time.RFC3339, casdoorUser.CreatedTime)
	}
	if casdoorUser.UpdatedTime != "" {
		updatedAt, _ = time.Parse(time.RFC3339, casdoorUser.UpdatedTime)
	}

	return &models.User{
		ID:            casdoorUser.Id,
		FullName:      casdoorUser.DisplayName,
		Email:         casdoorUser.Email,
		Role:          u.convertCasdoorRolesToModel(casdoorUser),
		AvatarURL:     &casdoorUser.Avatar,
		EmailVerified: casdoorUser.EmailVerified,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

func (u *UserCasdoor) convertCasdoorRolesToModel(casdoorUser *casdoorsdk.User) models.UserRole {
	if casdoorUser.IsAdmin {
		return models.RoleAdmin
	}

	for _, casdoorRole := range casdoorUser.Roles {
		switch u.mapSingleCasdoorRoleToUserRole(casdoorRole.Name) {
		case models.RoleAdmin:
			return models.RoleAdmin
		case models.RoleTeacher:
			return models.RoleTeacher
		}
	}

	for _, casdoorRole := range casdoorUser.Roles {
		if u.mapSingleCasdoorRoleToUserRole(casdoorRole.Name) == models.RoleStudent {
			return models.RoleStudent
		}
	}

	return models.RoleStudent // Default role
}

func (u *UserCasdoor) mapSingleCasdoorRoleToUserRole(casdoorType string) models.UserRole {
	switch strings.ToLower(casdoorType) {
	case "student", "learner":
		return models.RoleStudent
	case "teacher", "instructor", "advisor":
		return models.RoleTeacher
	case "admin", "administrator":
		return models.RoleAdmin
	default:
		return models.RoleStudent // Default role
	}
}

// ===== BASIC READ OPERATIONS =====

// GetByID retrieves a user by ID. A missing user maps to
// repositories.ErrNotFound so the access gate can reject stale identities.
func (u *UserCasdoor) GetByID(ctx context.Context, id string) (*models.User, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	if cachedUser, err := u.getUserFromCache(ctx, cacheKey); err == nil && cachedUser != nil {
		return cachedUser, nil
	}

	casdoorUser, err := u.client.GetUserByUserId(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
	}

	if casdoorUser == nil {
		return nil, repositories.ErrNotFound
	}

	user := u.convertCasdoorUserToModel(casdoorUser)
	if user == nil {
		return nil, fmt.Errorf("failed to convert Casdoor user")
	}

	u.setUserCache(ctx, cacheKey, user)
	u.setUserCache(ctx, fmt.Sprintf("email:%s", user.Email), user)

	return user, nil
}

// GetByEmail retrieves a user by email
func (u *UserCasdoor) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	cacheKey := fmt.Sprintf("email:%s", email)
	if cachedUser, err := u.getUserFromCache(ctx, cacheKey); err == nil && cachedUser != nil {
		return cachedUser, nil
	}

	casdoorUser, err := u.client.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email from Casdoor: %w", err)
	}

	if casdoorUser == nil {
		return nil, repositories.ErrNotFound
	}

	user := u.convertCasdoorUserToModel(casdoorUser)
	if user == nil {
		return nil, fmt.Errorf("failed to convert Casdoor user")
	}

	u.setUserCache(ctx, cacheKey, user)
	u.setUserCache(ctx, fmt.Sprintf("id:%s", user.ID), user)

	return user, nil
}

// ===== VALIDATION AND CHECKS =====

// ExistsByID checks if a user exists by ID
func (u *UserCasdoor) ExistsByID(ctx context.Context, id string) (bool, error) {
	cacheKey := fmt.Sprintf("exists:id:%s", id)
	if u.redis != nil {
		exists, err := u.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			return exists == "true", nil
		}
	}

	user, err := u.client.GetUser(id)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	exists := user != nil

	if u.redis != nil {
		u.redis.Set(ctx, cacheKey, fmt.Sprintf("%t", exists), 1*time.Minute)
	}

	return exists, nil
}

// HasRole checks if a user's live role matches the given role
func (u *UserCasdoor) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	user, err := u.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return role == user.Role, nil
}
