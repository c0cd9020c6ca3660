package admin

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"portiere/internal/command"
	"portiere/internal/discord"
	"portiere/internal/perms"
)

// Deploy re-pushes slash command definitions without a restart.
type Deploy struct{}

func (c *Deploy) Name() string               { return "deploy" }
func (c *Deploy) Description() string        { return "Re-deploy slash commands" }
func (c *Deploy) Cooldown() time.Duration    { return 30 * time.Second }
func (c *Deploy) RequiredLevel() perms.Level { return perms.LevelOwnerOnly }

func (c *Deploy) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "this-guild",
				Description: "Re-deploy this guild's commands",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "all-guilds",
				Description: "Re-deploy the global set and every guild's commands",
			},
		},
	}
}

func (c *Deploy) Run(ctx *command.Context) error {
	// Pushing command sets can take a while under rate limits.
	if err := discord.RespondDeferredEphemeral(ctx.Session, ctx.Event); err != nil {
		return fmt.Errorf("defer response: %w", err)
	}

	switch command.Subcommand(ctx.Event) {
	case "this-guild":
		if ctx.Event.GuildID == "" {
			return discord.FollowupEphemeral(ctx.Session, ctx.Event, "This subcommand only works inside a guild.")
		}
		n, err := ctx.Deployer.DeployGuild(ctx, ctx.Event.GuildID)
		if err != nil {
			return fmt.Errorf("deploy guild: %w", err)
		}
		return discord.FollowupEphemeral(ctx.Session, ctx.Event,
			fmt.Sprintf("Deployed %d command(s) to this guild.", n))

	case "all-guilds":
		if err := ctx.Deployer.DeployAll(ctx); err != nil {
			return fmt.Errorf("deploy all: %w", err)
		}
		return discord.FollowupEphemeral(ctx.Session, ctx.Event,
			fmt.Sprintf("Deployed the global set and command sets across %d guild(s).", ctx.Deployer.JoinedGuildCount()))

	default:
		return discord.FollowupEphemeral(ctx.Session, ctx.Event, "Unknown subcommand.")
	}
}
