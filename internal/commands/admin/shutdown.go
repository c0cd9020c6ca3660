package admin

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"portiere/internal/command"
	"portiere/internal/discord"
	"portiere/internal/perms"
)

// Shutdown stops the process gracefully. The confirmation option guards
// against muscle-memory invocations.
type Shutdown struct{}

func (c *Shutdown) Name() string               { return "shutdown" }
func (c *Shutdown) Description() string        { return "Stop the bot" }
func (c *Shutdown) Cooldown() time.Duration    { return 60 * time.Second }
func (c *Shutdown) RequiredLevel() perms.Level { return perms.LevelOwnerOnly }

func (c *Shutdown) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "confirm",
				Description: "Type CONFIRM to proceed",
				Required:    true,
			},
		},
	}
}

func (c *Shutdown) Run(ctx *command.Context) error {
	if command.StringOption(ctx.Event, "confirm") != "CONFIRM" {
		return discord.RespondEphemeral(ctx.Session, ctx.Event,
			"Not shutting down. Pass `confirm: CONFIRM` if you mean it.")
	}

	if err := discord.RespondEphemeral(ctx.Session, ctx.Event, "Shutting down. Goodbye."); err != nil {
		ctx.Log.Warn("failed to acknowledge shutdown")
	}
	ctx.Shutdown()
	return nil
}
