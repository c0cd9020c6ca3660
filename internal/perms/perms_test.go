package perms

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	roles map[string][]string // userID -> role IDs
	err   error
}

func (f *fakeFetcher) GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &discordgo.Member{Roles: f.roles[userID]}, nil
}

func testTables() map[string]RoleTable {
	return map[string]RoleTable{
		"guild-1": {
			LevelOwner:     {"role-owner"},
			LevelAdmin:     {"role-admin-a", "role-admin-b"},
			LevelModerator: {"role-mod"},
			LevelUser:      {"role-user"},
		},
	}
}

func TestResolveLevelOwnerShortCircuits(t *testing.T) {
	// Owner resolution must not depend on any guild role configuration.
	fetch := &fakeFetcher{err: errors.New("must not be called")}
	r := NewResolver(fetch, []string{"owner-1"}, testTables(), zap.NewNop())

	assert.Equal(t, LevelOwner, r.ResolveLevel("owner-1", "guild-1"))
	assert.Equal(t, LevelOwner, r.ResolveLevel("owner-1", ""))
	assert.Equal(t, LevelOwner, r.ResolveLevel("owner-1", "unconfigured"))
}

func TestResolveLevelHighestIntersection(t *testing.T) {
	fetch := &fakeFetcher{roles: map[string][]string{
		"u-mod":   {"role-user", "role-mod"},
		"u-admin": {"role-admin-b", "junk"},
		"u-none":  {"junk"},
	}}
	r := NewResolver(fetch, nil, testTables(), zap.NewNop())

	assert.Equal(t, LevelModerator, r.ResolveLevel("u-mod", "guild-1"))
	assert.Equal(t, LevelAdmin, r.ResolveLevel("u-admin", "guild-1"))
	assert.Equal(t, LevelUser, r.ResolveLevel("u-none", "guild-1"))
}

func TestResolveLevelDefaultsToUser(t *testing.T) {
	fetch := &fakeFetcher{}
	r := NewResolver(fetch, nil, testTables(), zap.NewNop())

	// Direct message (no guild).
	assert.Equal(t, LevelUser, r.ResolveLevel("u", ""))
	// Guild without a role table.
	assert.Equal(t, LevelUser, r.ResolveLevel("u", "guild-2"))
}

func TestResolveLevelFetchFailureFailsLow(t *testing.T) {
	fetch := &fakeFetcher{err: errors.New("network down")}
	r := NewResolver(fetch, nil, testTables(), zap.NewNop())

	assert.Equal(t, LevelUser, r.ResolveLevel("u", "guild-1"))
}

func TestHasLevelOwnerOnlyGate(t *testing.T) {
	// A role-granted Owner who is not in the allowlist must fail level 0.
	fetch := &fakeFetcher{roles: map[string][]string{"u-roleowner": {"role-owner"}}}
	r := NewResolver(fetch, []string{"owner-1"}, testTables(), zap.NewNop())

	assert.Equal(t, LevelOwner, r.ResolveLevel("u-roleowner", "guild-1"))
	assert.False(t, r.HasLevel("u-roleowner", "guild-1", LevelOwnerOnly))
	assert.True(t, r.HasLevel("owner-1", "guild-1", LevelOwnerOnly))
}

func TestHasLevelMonotonic(t *testing.T) {
	fetch := &fakeFetcher{roles: map[string][]string{"u-admin": {"role-admin-a"}}}
	r := NewResolver(fetch, nil, testTables(), zap.NewNop())

	for required := LevelUser; required <= LevelAdmin; required++ {
		assert.True(t, r.HasLevel("u-admin", "guild-1", required), "level %d", required)
	}
	assert.False(t, r.HasLevel("u-admin", "guild-1", LevelOwner))
}

func TestLevelNames(t *testing.T) {
	assert.Equal(t, "Bot Owner", LevelOwnerOnly.String())
	assert.Equal(t, "User", LevelUser.String())
	assert.Equal(t, "Moderator", LevelModerator.String())
	assert.Equal(t, "Administrator", LevelAdmin.String())
	assert.Equal(t, "Owner", LevelOwner.String())
	assert.Equal(t, "Unknown", Level(9).String())
}
