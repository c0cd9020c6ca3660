// Package core holds the commands every guild gets: health checks and
// lookups with no side effects.
package core

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"portiere/internal/command"
	"portiere/internal/discord"
)

type Ping struct{}

func (c *Ping) Name() string            { return "ping" }
func (c *Ping) Description() string     { return "Check that the bot is alive and how fast it answers" }
func (c *Ping) Cooldown() time.Duration { return 3 * time.Second }

func (c *Ping) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *Ping) Run(ctx *command.Context) error {
	latency := ctx.Session.HeartbeatLatency().Milliseconds()
	return discord.RespondEmbed(ctx.Session, ctx.Event, &discordgo.MessageEmbed{
		Title:       "Pong!",
		Description: fmt.Sprintf("Gateway latency: `%dms`", latency),
		Color:       discord.EmbedColor,
	})
}
