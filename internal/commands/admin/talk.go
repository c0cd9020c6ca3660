// Package admin holds the owner-gated operational commands.
package admin

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"portiere/internal/command"
	"portiere/internal/discord"
	"portiere/internal/perms"
)

// Talk makes the bot post a message as itself in a chosen channel.
type Talk struct{}

func (c *Talk) Name() string               { return "talk" }
func (c *Talk) Description() string        { return "Speak through the bot" }
func (c *Talk) Cooldown() time.Duration    { return 5 * time.Second }
func (c *Talk) RequiredLevel() perms.Level { return perms.LevelOwnerOnly }

func (c *Talk) Scope() command.Scope {
	return command.Scope{} // default guild only
}

func (c *Talk) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "message",
				Description: "What the bot should say",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "channel",
				Description: "Where to say it (defaults to this channel)",
				ChannelTypes: []discordgo.ChannelType{
					discordgo.ChannelTypeGuildText,
				},
			},
		},
	}
}

func (c *Talk) Run(ctx *command.Context) error {
	message := command.StringOption(ctx.Event, "message")
	channelID := command.ChannelOption(ctx.Event, "channel")
	if channelID == "" {
		channelID = ctx.Event.ChannelID
	}

	if _, err := ctx.Session.ChannelMessageSend(channelID, message); err != nil {
		return fmt.Errorf("send to channel %s: %w", channelID, err)
	}
	return discord.RespondEphemeral(ctx.Session, ctx.Event, fmt.Sprintf("Sent to <#%s>.", channelID))
}
