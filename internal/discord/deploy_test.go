package discord

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"portiere/internal/command"
	"portiere/pkg/retrylimit"
)

type fakeAPI struct {
	overwrites map[string][]string // guildID ("" = global) -> command names
	fail       map[string]error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{overwrites: make(map[string][]string), fail: make(map[string]error)}
}

func (f *fakeAPI) ApplicationCommandBulkOverwrite(_ string, guildID string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	if err := f.fail[guildID]; err != nil {
		return nil, err
	}
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.Name)
	}
	f.overwrites[guildID] = names
	return commands, nil
}

type scopedCmd struct {
	*testCmd
	scope command.Scope
}

func (c *scopedCmd) Scope() command.Scope { return c.scope }

func guildCmd(name string, guildIDs ...string) command.Command {
	return &scopedCmd{
		testCmd: &testCmd{name: name},
		scope:   command.Scope{GuildIDs: guildIDs},
	}
}

func newDeployer(t *testing.T, api *fakeAPI, defaultGuild string, joined []string, cmds ...command.Command) *Deployer {
	t.Helper()
	log := zap.NewNop()
	reg := command.NewRegistry(log)
	require.Equal(t, len(cmds), reg.RegisterAll(cmds...))
	d := NewDeployer(api, reg, "app-1", defaultGuild, func() []string { return joined }, log)
	// Keep tests fast: no pacing between overwrites.
	d.lim = retrylimit.NewAdaptiveLimiter(1000, 1000, 1000, 0, 1)
	return d
}

func TestDeployAllPartitionsGlobalAndGuild(t *testing.T) {
	api := newFakeAPI()
	d := newDeployer(t, api, "guild-1", []string{"guild-1", "guild-2"},
		&testCmd{name: "ping"}, // no Scoped capability: global
		guildCmd("serverinfo", command.GuildAll),
		guildCmd("talk"), // empty targets: default guild
	)

	require.NoError(t, d.DeployAll(context.Background()))

	assert.Equal(t, []string{"ping"}, api.overwrites[""])
	assert.ElementsMatch(t, []string{"serverinfo", "talk"}, api.overwrites["guild-1"])
	assert.Equal(t, []string{"serverinfo"}, api.overwrites["guild-2"])
	// Guild-scoped commands never leak into the global set.
	assert.NotContains(t, api.overwrites[""], "serverinfo")
}

func TestDeployAllSkipsUnroutableCommand(t *testing.T) {
	api := newFakeAPI()
	// No default guild configured and no explicit targets.
	d := newDeployer(t, api, "", []string{"guild-1"}, guildCmd("talk"))

	require.NoError(t, d.DeployAll(context.Background()))

	for guildID, names := range api.overwrites {
		assert.NotContains(t, names, "talk", "guild %q", guildID)
	}
}

func TestDeployAllContinuesPastFailedGuild(t *testing.T) {
	api := newFakeAPI()
	api.fail["guild-1"] = assert.AnError
	d := newDeployer(t, api, "", []string{"guild-1", "guild-2"},
		guildCmd("serverinfo", command.GuildAll),
	)

	err := d.DeployAll(context.Background())
	assert.Error(t, err)
	assert.Equal(t, []string{"serverinfo"}, api.overwrites["guild-2"])
}

func TestDeployGuildReturnsCount(t *testing.T) {
	api := newFakeAPI()
	d := newDeployer(t, api, "guild-1", []string{"guild-1", "guild-2"},
		&testCmd{name: "ping"},
		guildCmd("serverinfo", command.GuildAll),
		guildCmd("whois", command.GuildAll),
	)

	n, err := d.DeployGuild(context.Background(), "guild-2")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"serverinfo", "whois"}, api.overwrites["guild-2"])
}

func TestDeployGuildDeduplicatesTargets(t *testing.T) {
	api := newFakeAPI()
	d := newDeployer(t, api, "guild-1", []string{"guild-1"},
		guildCmd("serverinfo", "guild-1", command.GuildAll),
	)

	n, err := d.DeployGuild(context.Background(), "guild-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestJoinedGuildCount(t *testing.T) {
	d := newDeployer(t, newFakeAPI(), "", []string{"a", "b", "c"})
	assert.Equal(t, 3, d.JoinedGuildCount())
}
