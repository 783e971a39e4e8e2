package casdoor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
	"github.com/eduzayn/lms-edunexia-sub001/internal/repositories"
)

// CasdoorConfig holds the connection settings for the Casdoor instance
// that owns user accounts.
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

const (
	userCachePrefix = "user:id:"
	userCacheTTL    = 15 * time.Minute
)

// UserDirectory implements repositories.UserRepository on top of the
// Casdoor SDK with a Redis read-through cache. A nil Redis client turns
// every lookup into a direct Casdoor call.
type UserDirectory struct {
	client *casdoorsdk.Client
	cache  *redis.Client
}

func NewUserDirectory(config CasdoorConfig, redisClient *redis.Client) repositories.UserRepository {
	client := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)

	return &UserDirectory{client: client, cache: redisClient}
}

// GetByID returns the user with the given Casdoor ID. Unknown IDs yield
// an error satisfying repositories.IsNotFoundError.
func (d *UserDirectory) GetByID(ctx context.Context, id string) (*models.User, error) {
	if cached := d.readCached(ctx, id); cached != nil {
		return cached, nil
	}

	casdoorUser, err := d.client.GetUserByUserId(id)
	if err != nil {
		return nil, fmt.Errorf("casdoor lookup for user %s: %w", id, err)
	}
	if casdoorUser == nil {
		return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}

	user := userFromCasdoor(casdoorUser)
	d.writeCached(ctx, id, user)

	return user, nil
}

// readCached returns nil on a miss or any cache failure. Cache errors
// never surface to callers.
func (d *UserDirectory) readCached(ctx context.Context, id string) *models.User {
	if d.cache == nil {
		return nil
	}

	data, err := d.cache.Get(ctx, userCachePrefix+id).Bytes()
	if err != nil {
		return nil
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil
	}

	return &user
}

func (d *UserDirectory) writeCached(ctx context.Context, id string, user *models.User) {
	if d.cache == nil || user == nil {
		return
	}

	data, err := json.Marshal(user)
	if err != nil {
		return
	}

	d.cache.Set(ctx, userCachePrefix+id, data, userCacheTTL)
}

func userFromCasdoor(cu *casdoorsdk.User) *models.User {
	var createdAt, updatedAt time.Time
	if cu.CreatedTime != "" {
		createdAt, _ = time.Parse(time.RFC3339, cu.CreatedTime)
	}
	if cu.UpdatedTime != "" {
		updatedAt, _ = time.Parse(time.RFC3339, cu.UpdatedTime)
	}

	avatarURL := cu.Avatar

	return &models.User{
		ID:            cu.Id,
		FullName:      cu.DisplayName,
		Email:         cu.Email,
		Role:          primaryRole(cu),
		AvatarURL:     &avatarURL,
		EmailVerified: cu.EmailVerified,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

// primaryRole collapses the Casdoor role list to one role with the
// precedence admin > teacher > student. Users without recognized roles
// are students.
func primaryRole(cu *casdoorsdk.User) models.UserRole {
	if cu.IsAdmin {
		return models.RoleAdmin
	}

	teacher := false
	for _, role := range cu.Roles {
		switch mapRoleName(role.Name) {
		case models.RoleAdmin:
			return models.RoleAdmin
		case models.RoleTeacher:
			teacher = true
		}
	}

	if teacher {
		return models.RoleTeacher
	}
	return models.RoleStudent
}

func mapRoleName(name string) models.UserRole {
	switch strings.ToLower(name) {
	case "admin", "administrator":
		return models.RoleAdmin
	case "teacher", "instructor", "educator":
		return models.RoleTeacher
	default:
		return models.RoleStudent
	}
}
