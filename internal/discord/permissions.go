package discord

import (
	"slices"

	"github.com/bwmarrin/discordgo"
)

// PermissionChecker validates that a Discord user may run administrative
// slash commands such as /autodaily.
type PermissionChecker struct {
	adminRoleID string
}

// NewPermissionChecker creates a PermissionChecker with the given admin
// role ID.
func NewPermissionChecker(adminRoleID string) *PermissionChecker {
	return &PermissionChecker{adminRoleID: adminRoleID}
}

// IsAdmin checks whether the interaction author has the configured admin
// role or the guild's Administrator or Manage Server permission.
// If adminRoleID is empty, all guild members are treated as admins (useful
// for development). Returns false if the interaction has no Member (e.g.,
// DM channel interactions).
func (p *PermissionChecker) IsAdmin(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	if p.adminRoleID == "" {
		return true
	}
	if i.Member.Permissions&(discordgo.PermissionAdministrator|discordgo.PermissionManageGuild) != 0 {
		return true
	}
	return slices.Contains(i.Member.Roles, p.adminRoleID)
}
