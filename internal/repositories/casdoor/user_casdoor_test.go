package casdoor

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
)

func casdoorRoles(names ...string) []*casdoorsdk.Role {
	roles := make([]*casdoorsdk.Role, 0, len(names))
	for _, name := range names {
		roles = append(roles, &casdoorsdk.Role{Name: name})
	}
	return roles
}

func TestPrimaryRole(t *testing.T) {
	tests := []struct {
		name string
		user casdoorsdk.User
		want models.UserRole
	}{
		{"admin flag wins", casdoorsdk.User{IsAdmin: true, Roles: casdoorRoles("student")}, models.RoleAdmin},
		{"admin role name", casdoorsdk.User{Roles: casdoorRoles("student", "administrator")}, models.RoleAdmin},
		{"teacher over student", casdoorsdk.User{Roles: casdoorRoles("student", "instructor")}, models.RoleTeacher},
		{"unknown roles fall back to student", casdoorsdk.User{Roles: casdoorRoles("auditor")}, models.RoleStudent},
		{"no roles", casdoorsdk.User{}, models.RoleStudent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := primaryRole(&tt.user); got != tt.want {
				t.Errorf("primaryRole() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserFromCasdoor(t *testing.T) {
	cu := &casdoorsdk.User{
		Id:            "user-42",
		DisplayName:   "Maria Souza",
		Email:         "maria@example.com",
		Avatar:        "https://cdn.example.com/maria.png",
		EmailVerified: true,
		CreatedTime:   "2025-03-01T10:00:00Z",
		Roles:         casdoorRoles("teacher"),
	}

	user := userFromCasdoor(cu)

	if user.ID != "user-42" {
		t.Errorf("ID = %q, want user-42", user.ID)
	}
	if user.FullName != "Maria Souza" {
		t.Errorf("FullName = %q", user.FullName)
	}
	if user.Role != models.RoleTeacher {
		t.Errorf("Role = %q, want teacher", user.Role)
	}
	if user.AvatarURL == nil || *user.AvatarURL != cu.Avatar {
		t.Error("AvatarURL not carried over")
	}
	if !user.EmailVerified {
		t.Error("EmailVerified should be true")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreatedAt should be parsed from CreatedTime")
	}
	if !user.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should stay zero when UpdatedTime is empty")
	}
}

func TestUserDirectoryCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	d := &UserDirectory{cache: client}
	ctx := context.Background()

	if got := d.readCached(ctx, "user-1"); got != nil {
		t.Fatalf("readCached on empty cache = %+v, want nil", got)
	}

	user := &models.User{ID: "user-1", FullName: "Joao Lima", Role: models.RoleStudent}
	d.writeCached(ctx, "user-1", user)

	if !mr.Exists(userCachePrefix + "user-1") {
		t.Fatal("writeCached did not store the user")
	}

	got := d.readCached(ctx, "user-1")
	if got == nil {
		t.Fatal("readCached returned nil after writeCached")
	}
	if got.ID != user.ID || got.FullName != user.FullName {
		t.Errorf("readCached = %+v, want %+v", got, user)
	}
}

func TestUserDirectoryNilCache(t *testing.T) {
	d := &UserDirectory{}
	ctx := context.Background()

	if got := d.readCached(ctx, "user-1"); got != nil {
		t.Errorf("readCached with nil cache = %+v, want nil", got)
	}

	// Must not panic.
	d.writeCached(ctx, "user-1", &models.User{ID: "user-1"})
}
