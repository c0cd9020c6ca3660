package core

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"portiere/internal/command"
	"portiere/internal/discord"
	"portiere/internal/perms"
)

type ServerInfo struct{}

func (c *ServerInfo) Name() string               { return "serverinfo" }
func (c *ServerInfo) Description() string        { return "Show details about this server" }
func (c *ServerInfo) Cooldown() time.Duration    { return 10 * time.Second }
func (c *ServerInfo) RequiredLevel() perms.Level { return perms.LevelUser }

func (c *ServerInfo) Scope() command.Scope {
	return command.Scope{GuildIDs: []string{command.GuildAll}}
}

func (c *ServerInfo) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *ServerInfo) Run(ctx *command.Context) error {
	// Outside a guild there is nothing to describe; a DM invocation is an
	// expected refusal, not a fault.
	if ctx.Event.GuildID == "" {
		return discord.RespondEphemeral(ctx.Session, ctx.Event,
			"This command only works inside a server.")
	}

	guild, err := ctx.Session.State.Guild(ctx.Event.GuildID)
	if err != nil {
		guild, err = ctx.Session.Guild(ctx.Event.GuildID)
		if err != nil {
			return fmt.Errorf("fetch guild %s: %w", ctx.Event.GuildID, err)
		}
	}

	created, _ := discordgo.SnowflakeTimestamp(guild.ID)
	embed := &discordgo.MessageEmbed{
		Title: guild.Name,
		Color: discord.EmbedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "ID", Value: guild.ID, Inline: true},
			{Name: "Owner", Value: "<@" + guild.OwnerID + ">", Inline: true},
			{Name: "Created", Value: created.UTC().Format("2006-01-02"), Inline: true},
			{Name: "Members", Value: fmt.Sprintf("%d", guild.MemberCount), Inline: true},
			{Name: "Roles", Value: fmt.Sprintf("%d", len(guild.Roles)), Inline: true},
			{Name: "Channels", Value: fmt.Sprintf("%d", len(guild.Channels)), Inline: true},
		},
	}
	if guild.Icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: guild.IconURL("128")}
	}
	return discord.RespondEmbedEphemeral(ctx.Session, ctx.Event, embed)
}
