package report

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"portiere/internal/config"
)

type sent struct {
	channelID string
	embed     *discordgo.MessageEmbed
}

type fakeSender struct {
	sent []sent
	err  error
}

func (f *fakeSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, sent{channelID, embed})
	return &discordgo.Message{}, f.err
}

func testGuilds() *config.GuildFile {
	return &config.GuildFile{
		Owners: []string{"1"},
		Guilds: map[string]config.GuildConfig{
			"100": {Channels: config.Channels{BotLogs: "100-bot", ErrorLogs: "100-err"}},
			"200": {Channels: config.Channels{BotLogs: "200-bot", ErrorLogs: "200-err"}},
		},
	}
}

func TestCommandFaultPostsToGuildErrorChannel(t *testing.T) {
	f := &fakeSender{}
	r := New(f, testGuilds(), "100", zap.NewNop())

	r.CommandFault("200", "deploy", "42", errors.New("boom"), nil)

	require.Len(t, f.sent, 1)
	assert.Equal(t, "200-err", f.sent[0].channelID)
	assert.Contains(t, f.sent[0].embed.Description, "boom")
}

func TestFaultFallsBackToDefaultGuild(t *testing.T) {
	f := &fakeSender{}
	r := New(f, testGuilds(), "100", zap.NewNop())

	// Guild 300 has no channel configuration.
	r.CommandFault("300", "ping", "42", errors.New("boom"), nil)

	require.Len(t, f.sent, 1)
	assert.Equal(t, "100-err", f.sent[0].channelID)
}

func TestFaultTruncatesLongError(t *testing.T) {
	f := &fakeSender{}
	r := New(f, testGuilds(), "100", zap.NewNop())

	r.CommandFault("100", "ping", "42", errors.New(strings.Repeat("x", 5000)), nil)

	require.Len(t, f.sent, 1)
	assert.Less(t, len(f.sent[0].embed.Description), 2000)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	// Multi-byte runes straddling every possible cut point.
	s := strings.Repeat("è", 2000)
	for _, n := range []int{1, 2, 3, maxErrorLen} {
		out := truncate(s, n)
		assert.True(t, utf8.ValidString(out), "cut at %d", n)
		assert.LessOrEqual(t, len(out), n+len("…"))
	}
	assert.Equal(t, "short", truncate("short", 100))
}

func TestSendFailureDoesNotPanic(t *testing.T) {
	f := &fakeSender{err: errors.New("channel gone")}
	r := New(f, testGuilds(), "100", zap.NewNop())

	assert.NotPanics(t, func() {
		r.EventFault("100", "guild-join", errors.New("boom"))
	})
}

func TestAuditRendersSubcommandAndOptions(t *testing.T) {
	f := &fakeSender{}
	r := New(f, testGuilds(), "100", zap.NewNop())

	e := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "100",
		ChannelID: "555",
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "deploy",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{
				Name: "this-guild",
				Type: discordgo.ApplicationCommandOptionSubCommand,
			}},
		},
	}}

	r.Audit(e, "deploy", "42", "ada")

	require.Len(t, f.sent, 1)
	assert.Equal(t, "100-bot", f.sent[0].channelID)
	assert.Contains(t, f.sent[0].embed.Description, "deploy this-guild")
}

func TestPanicError(t *testing.T) {
	cause := errors.New("nil deref")
	err := PanicError(cause)
	assert.True(t, errors.Is(err, cause))

	err = PanicError("not an error")
	assert.Contains(t, err.Error(), "not an error")
}
