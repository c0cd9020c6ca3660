// Package report posts operational faults and audit lines to the guild log
// channels configured in the guild file. Every report also goes to the
// structured log, so a missing or broken channel never hides a failure.
package report

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"portiere/internal/config"
)

const (
	errorColor = 0xd83c3e
	auditColor = 0x5865f2

	// Discord caps embed descriptions at 4096; keep well under it.
	maxErrorLen = 1800
	maxStackLen = 1000
)

// ChannelSender is the slice of discordgo.Session the reporter needs.
type ChannelSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Reporter fans faults out to the error-logs channel and command usage to
// the bot-logs channel of the guild the event came from, falling back to
// the default guild's channels when the source guild has none configured.
type Reporter struct {
	send           ChannelSender
	guilds         *config.GuildFile
	defaultGuildID string
	log            *zap.Logger
}

func New(send ChannelSender, guilds *config.GuildFile, defaultGuildID string, log *zap.Logger) *Reporter {
	return &Reporter{send: send, guilds: guilds, defaultGuildID: defaultGuildID, log: log}
}

// CommandFault reports a failed or panicked command execution.
func (r *Reporter) CommandFault(guildID, command, userID string, cause error, stack []byte) {
	r.log.Error("command failed",
		zap.String("command", command),
		zap.String("guild", guildID),
		zap.String("user", userID),
		zap.Error(cause),
	)

	embed := &discordgo.MessageEmbed{
		Title: "Command error",
		Color: errorColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Command", Value: "/" + command, Inline: true},
			{Name: "User", Value: mention(userID), Inline: true},
			{Name: "Guild", Value: orDM(guildID), Inline: true},
		},
		Description: codeBlock(truncate(cause.Error(), maxErrorLen)),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if len(stack) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Stack",
			Value: codeBlock(truncate(string(stack), maxStackLen)),
		})
	}
	r.post(r.guilds.ErrorLogsChannel(guildID, r.defaultGuildID), embed)
}

// EventFault reports a failure outside any command, e.g. a gateway event
// handler or a scheduled job.
func (r *Reporter) EventFault(guildID, source string, cause error) {
	r.log.Error("event handler failed",
		zap.String("source", source),
		zap.String("guild", guildID),
		zap.Error(cause),
	)

	embed := &discordgo.MessageEmbed{
		Title: "Event error",
		Color: errorColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Source", Value: source, Inline: true},
			{Name: "Guild", Value: orDM(guildID), Inline: true},
		},
		Description: codeBlock(truncate(cause.Error(), maxErrorLen)),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	r.post(r.guilds.ErrorLogsChannel(guildID, r.defaultGuildID), embed)
}

// Audit records a command invocation in the bot-logs channel.
func (r *Reporter) Audit(e *discordgo.InteractionCreate, command, userID, username string) {
	r.log.Info("command used",
		zap.String("command", command),
		zap.String("guild", e.GuildID),
		zap.String("user", username),
	)

	embed := &discordgo.MessageEmbed{
		Color:       auditColor,
		Description: fmt.Sprintf("%s used `/%s`", mention(userID), formatInvocation(e, command)),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Channel", Value: channelMention(e.ChannelID), Inline: true},
			{Name: "Guild", Value: orDM(e.GuildID), Inline: true},
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	r.post(r.guilds.BotLogsChannel(e.GuildID, r.defaultGuildID), embed)
}

// PanicError turns a recovered panic value into an error.
func PanicError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", recovered)
}

func (r *Reporter) post(channelID string, embed *discordgo.MessageEmbed) {
	if channelID == "" {
		return
	}
	if _, err := r.send.ChannelMessageSendEmbed(channelID, embed); err != nil {
		r.log.Warn("failed to post to log channel",
			zap.String("channel", channelID),
			zap.Error(err),
		)
	}
}

// formatInvocation renders the command with its subcommand and options,
// e.g. "deploy this-guild" or "talk message:hello".
func formatInvocation(e *discordgo.InteractionCreate, command string) string {
	parts := []string{command}
	opts := e.ApplicationCommandData().Options
	if len(opts) == 1 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		parts = append(parts, opts[0].Name)
		opts = opts[0].Options
	}
	for _, o := range opts {
		parts = append(parts, fmt.Sprintf("%s:%v", o.Name, o.Value))
	}
	return strings.Join(parts, " ")
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

func codeBlock(s string) string {
	return "```\n" + s + "\n```"
}

func mention(userID string) string {
	if userID == "" {
		return "unknown"
	}
	return "<@" + userID + ">"
}

func channelMention(channelID string) string {
	if channelID == "" {
		return "unknown"
	}
	return "<#" + channelID + ">"
}

func orDM(guildID string) string {
	if guildID == "" {
		return "DM"
	}
	return guildID
}
