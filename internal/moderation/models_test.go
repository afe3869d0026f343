package moderation

import (
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestPermissionsFor(t *testing.T) {
	t.Run("user holds nothing", func(t *testing.T) {
		assert.Empty(t, PermissionsFor([]models.Role{models.RoleUser}))
	})

	t.Run("moderator cannot ban", func(t *testing.T) {
		perms := PermissionsFor([]models.Role{models.RoleUser, models.RoleModerator})
		assert.Contains(t, perms, PermissionRestrictContent)
		assert.Contains(t, perms, PermissionViewAuditLog)
		assert.NotContains(t, perms, PermissionBanUser)
		assert.NotContains(t, perms, PermissionUnbanUser)
	})

	t.Run("admin holds everything once", func(t *testing.T) {
		perms := PermissionsFor([]models.Role{models.RoleModerator, models.RoleAdmin})
		assert.ElementsMatch(t, AllPermissions(), perms)
	})
}

func TestHasPermission(t *testing.T) {
	mod := &models.User{ID: "m", Roles: []models.Role{models.RoleModerator}}
	assert.True(t, HasPermission(mod, PermissionAllowContent))
	assert.False(t, HasPermission(mod, PermissionBanUser))
	assert.False(t, HasPermission(nil, PermissionAllowContent))

	mod.Banned = &models.BannedProps{Reason: "rogue"}
	assert.False(t, HasPermission(mod, PermissionAllowContent))
}
