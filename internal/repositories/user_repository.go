package repositories

import (
	"context"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
)

// UserRepository resolves identity records from the external identity
// provider. User data is owned elsewhere, so the surface is read only.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}
