// Package perms resolves a user's permission level inside a guild from
// statically configured role tables and a bot-owner allowlist.
package perms

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Level is an integer permission rank. Levels 1-4 are role-attainable and
// totally ordered; level 0 is reserved for the bot-owner allowlist and is
// never granted through roles, not even to role-level-4 users.
type Level int

const (
	LevelOwnerOnly Level = 0
	LevelUser      Level = 1
	LevelModerator Level = 2
	LevelAdmin     Level = 3
	LevelOwner     Level = 4
)

// String returns the display name used in denial messages.
func (l Level) String() string {
	switch l {
	case LevelOwnerOnly:
		return "Bot Owner"
	case LevelUser:
		return "User"
	case LevelModerator:
		return "Moderator"
	case LevelAdmin:
		return "Administrator"
	case LevelOwner:
		return "Owner"
	}
	return "Unknown"
}

// Valid reports whether l is a level a command may require.
func (l Level) Valid() bool { return l >= LevelOwnerOnly && l <= LevelOwner }

// RoleTable maps a level to the role IDs that grant it in one guild.
type RoleTable map[Level][]string

// MemberFetcher is the slice of the gateway client the resolver needs.
// *discordgo.Session satisfies it.
type MemberFetcher interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
}

// Resolver computes permission levels. It is safe for concurrent use; the
// owner set and role tables are immutable after construction.
type Resolver struct {
	fetch  MemberFetcher
	owners map[string]struct{}
	tables map[string]RoleTable
	log    *zap.Logger
}

// NewResolver builds a Resolver from the static owner allowlist and the
// per-guild role tables.
func NewResolver(fetch MemberFetcher, owners []string, tables map[string]RoleTable, log *zap.Logger) *Resolver {
	set := make(map[string]struct{}, len(owners))
	for _, id := range owners {
		set[id] = struct{}{}
	}
	return &Resolver{fetch: fetch, owners: set, tables: tables, log: log}
}

// IsOwner reports whether userID is in the bot-owner allowlist.
func (r *Resolver) IsOwner(userID string) bool {
	_, ok := r.owners[userID]
	return ok
}

// ResolveLevel returns the user's level in the given guild. Bot owners always
// resolve to LevelOwner regardless of guild. Outside a guild, or in a guild
// with no configured role table, everyone is LevelUser. Any member-fetch
// failure also degrades to LevelUser: permission resolution fails low, never
// open.
func (r *Resolver) ResolveLevel(userID, guildID string) Level {
	if r.IsOwner(userID) {
		return LevelOwner
	}
	if guildID == "" {
		return LevelUser
	}

	table, ok := r.tables[guildID]
	if !ok {
		return LevelUser
	}

	member, err := r.fetch.GuildMember(guildID, userID)
	if err != nil {
		r.log.Warn("member fetch failed, defaulting to user level",
			zap.String("user", userID),
			zap.String("guild", guildID),
			zap.Error(err))
		return LevelUser
	}

	held := make(map[string]struct{}, len(member.Roles))
	for _, id := range member.Roles {
		held[id] = struct{}{}
	}

	highest := LevelUser
	for level, roles := range table {
		if level <= highest {
			continue
		}
		for _, id := range roles {
			if _, ok := held[id]; ok {
				highest = level
				break
			}
		}
	}
	return highest
}

// HasLevel reports whether the user satisfies the required level. Level 0
// bypasses role resolution entirely: only allowlist membership passes.
func (r *Resolver) HasLevel(userID, guildID string, required Level) bool {
	if required == LevelOwnerOnly {
		return r.IsOwner(userID)
	}
	return r.ResolveLevel(userID, guildID) >= required
}
