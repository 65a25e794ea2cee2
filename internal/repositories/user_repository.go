package repositories

import (
	"context"

	"github.com/SAP-F-2025/advising-service/internal/models"
)

// UserRepository interface for identity operations (advising service is not
// owner of user data; it reads live identities from Casdoor). The role on
// the returned user is the authoritative one for authorization decisions.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Validation and checks
	ExistsByID(ctx context.Context, id string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)
}
