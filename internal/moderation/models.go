package moderation

import (
	"time"

	"agora/internal/models"
)

// Permission represents a moderation action that can be performed
type Permission string

const (
	PermissionAllowContent      Permission = "allow_content"
	PermissionRestrictContent   Permission = "restrict_content"
	PermissionUnrestrictContent Permission = "unrestrict_content"
	PermissionDeleteContent     Permission = "delete_content"
	PermissionRestoreContent    Permission = "restore_content"
	PermissionBanUser           Permission = "ban_user"
	PermissionUnbanUser         Permission = "unban_user"
	PermissionViewAuditLog      Permission = "view_audit_log"
	PermissionViewPending       Permission = "view_pending"
)

// AllPermissions returns all available permissions
func AllPermissions() []Permission {
	return []Permission{
		PermissionAllowContent,
		PermissionRestrictContent,
		PermissionUnrestrictContent,
		PermissionDeleteContent,
		PermissionRestoreContent,
		PermissionBanUser,
		PermissionUnbanUser,
		PermissionViewAuditLog,
		PermissionViewPending,
	}
}

// rolePermissions maps forum roles to what they may do. USER holds nothing.
var rolePermissions = map[models.Role][]Permission{
	models.RoleModerator: {
		PermissionAllowContent,
		PermissionRestrictContent,
		PermissionUnrestrictContent,
		PermissionDeleteContent,
		PermissionRestoreContent,
		PermissionViewAuditLog,
		PermissionViewPending,
	},
	models.RoleAdmin: AllPermissions(),
}

// PermissionsFor returns the union of permissions granted by roles.
func PermissionsFor(roles []models.Role) []Permission {
	seen := make(map[Permission]bool)
	var perms []Permission
	for _, role := range roles {
		for _, p := range rolePermissions[role] {
			if !seen[p] {
				seen[p] = true
				perms = append(perms, p)
			}
		}
	}
	return perms
}

// HasPermission reports whether user holds perm through any of their roles.
// Banned users hold no permissions.
func HasPermission(user *models.User, perm Permission) bool {
	if user == nil || user.IsBanned() {
		return false
	}
	for _, p := range PermissionsFor(user.Roles) {
		if p == perm {
			return true
		}
	}
	return false
}

// AuditAction represents a type of moderation action
type AuditAction string

const (
	AuditActionAllow      AuditAction = "allow"
	AuditActionRestrict   AuditAction = "restrict"
	AuditActionUnrestrict AuditAction = "unrestrict"
	AuditActionDelete     AuditAction = "delete"
	AuditActionRestore    AuditAction = "restore"
	AuditActionBan        AuditAction = "ban"
	AuditActionUnban      AuditAction = "unban"
)

// AuditTargetUser is the target kind recorded for ban and unban.
const AuditTargetUser = "user"

// AuditEntry represents a logged moderation action
type AuditEntry struct {
	ID          string      `json:"id"`
	Action      AuditAction `json:"action"`
	ModeratorID string      `json:"moderator_id"`
	TargetKind  string      `json:"target_kind"` // post, comment or user
	TargetID    string      `json:"target_id"`
	Reason      string      `json:"reason,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// RestrictPayload carries a restriction request.
type RestrictPayload struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// DeletePayload carries a soft-delete request.
type DeletePayload struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BanPayload carries a ban request.
type BanPayload struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// PendingQueue is the moderator review queue.
type PendingQueue struct {
	Posts    []*models.Post    `json:"posts"`
	Comments []*models.Comment `json:"comments"`
}
