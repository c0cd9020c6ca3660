package requests

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"portiere/internal/command"
	"portiere/internal/db"
	"portiere/internal/discord"
)

type Citizenship struct{}

func (c *Citizenship) Name() string            { return "citizenship" }
func (c *Citizenship) Description() string     { return "Apply for full membership" }
func (c *Citizenship) Cooldown() time.Duration { return 60 * time.Second }

func (c *Citizenship) Scope() command.Scope {
	return command.Scope{} // default guild only
}

func (c *Citizenship) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "notes",
				Description: "Anything you want the reviewers to know",
			},
		},
	}
}

func (c *Citizenship) Run(ctx *command.Context) error {
	id, err := ctx.DB.SubmitCitizenship(ctx, ctx.UserID(), ctx.Username(), db.CitizenshipDetail{
		AdditionalNotes: command.StringOption(ctx.Event, "notes"),
	})
	if err != nil {
		return fmt.Errorf("submit citizenship application: %w", err)
	}
	announce(ctx, id, db.RequestCitizenship,
		fmt.Sprintf("<@%s> applied for citizenship", ctx.UserID()))
	return discord.RespondEphemeral(ctx.Session, ctx.Event,
		fmt.Sprintf("Application #%d received. Reviews usually take a few days.", id))
}
