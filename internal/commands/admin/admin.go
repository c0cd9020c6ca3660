package admin

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"portiere/internal/command"
	"portiere/internal/discord"
	"portiere/internal/perms"
)

// Admin toggles a user's stored admin flag.
type Admin struct{}

func (c *Admin) Name() string               { return "admin" }
func (c *Admin) Description() string        { return "Grant or revoke a user's admin flag" }
func (c *Admin) Cooldown() time.Duration    { return 5 * time.Second }
func (c *Admin) RequiredLevel() perms.Level { return perms.LevelOwnerOnly }

func (c *Admin) Scope() command.Scope {
	return command.Scope{} // default guild only
}

func (c *Admin) Definition() *discordgo.ApplicationCommand {
	userOption := func(desc string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: desc,
			Required:    true,
		}
	}
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "grant",
				Description: "Mark a user as admin",
				Options:     []*discordgo.ApplicationCommandOption{userOption("Who to promote")},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "revoke",
				Description: "Remove a user's admin flag",
				Options:     []*discordgo.ApplicationCommandOption{userOption("Who to demote")},
			},
		},
	}
}

func (c *Admin) Run(ctx *command.Context) error {
	var grant bool
	switch command.Subcommand(ctx.Event) {
	case "grant":
		grant = true
	case "revoke":
		grant = false
	default:
		return discord.RespondEphemeral(ctx.Session, ctx.Event, "Unknown subcommand.")
	}

	target := command.UserOption(ctx.Event, ctx.Session, "user")
	if target == nil {
		return discord.RespondEphemeral(ctx.Session, ctx.Event, "Could not resolve that user.")
	}

	// The flag lives on the users row; make sure one exists first.
	if _, err := ctx.DB.EnsureUser(ctx, target.ID, target.Username); err != nil {
		return fmt.Errorf("ensure user %s: %w", target.ID, err)
	}
	if err := ctx.DB.SetAdmin(ctx, target.ID, grant); err != nil {
		return fmt.Errorf("set admin flag for %s: %w", target.ID, err)
	}

	verb := "revoked from"
	if grant {
		verb = "granted to"
	}
	return discord.RespondEphemeral(ctx.Session, ctx.Event,
		fmt.Sprintf("Admin flag %s <@%s>.", verb, target.ID))
}
