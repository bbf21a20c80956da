package common

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// GetMember looks up a guild member in the state cache, falling back to the API
func GetMember(s *discordgo.Session, guildID, userID string) (*discordgo.Member, error) {
	if member, err := s.State.Member(guildID, userID); err == nil {
		return member, nil
	}
	return s.GuildMember(guildID, userID)
}

// GetDisplayName returns the server-specific display name for a user.
// Falls back to the global name, then username, then "Unknown".
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := GetMember(s, guildID, userID)
	if err == nil && member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			if member.User.GlobalName != "" {
				return member.User.GlobalName
			}
			return member.User.Username
		}
	}

	user, err := s.User(userID)
	if err == nil && user != nil {
		return user.Username
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"userID":  userID,
	}).Debug("Could not resolve display name")
	return "Unknown"
}

// GetDisplayNameInt64 is a convenience wrapper that accepts int64 user IDs
func GetDisplayNameInt64(s *discordgo.Session, guildID, userID int64) string {
	return GetDisplayName(s, Snowflake(guildID), Snowflake(userID))
}

// HasAnyRoleNamed reports whether member holds a role whose name contains
// one of names
func HasAnyRoleNamed(s *discordgo.Session, guildID string, member *discordgo.Member, names []string) bool {
	if member == nil {
		return false
	}
	for _, roleID := range member.Roles {
		role, err := s.State.Role(guildID, roleID)
		if err != nil {
			continue
		}
		if RoleNameMatches(role.Name, names) {
			return true
		}
	}
	return false
}

// RoleNameMatches reports whether roleName contains any of names
func RoleNameMatches(roleName string, names []string) bool {
	for _, name := range names {
		if name != "" && strings.Contains(roleName, name) {
			return true
		}
	}
	return false
}
