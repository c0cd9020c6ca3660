package requests

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"portiere/internal/command"
	"portiere/internal/db"
	"portiere/internal/discord"
)

type Report struct{}

func (c *Report) Name() string            { return "report" }
func (c *Report) Description() string     { return "Report one or more users for breaking the rules" }
func (c *Report) Cooldown() time.Duration { return 30 * time.Second }

func (c *Report) Scope() command.Scope {
	return command.Scope{GuildIDs: []string{command.GuildAll}}
}

func (c *Report) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "users",
				Description: "Usernames of the people you are reporting, separated by spaces",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "incident",
				Description: "What happened",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "evidence",
				Description: "Links to evidence, separated by spaces",
			},
		},
	}
}

func (c *Report) Run(ctx *command.Context) error {
	reported := splitLinks(command.StringOption(ctx.Event, "users"))
	if len(reported) == 0 {
		return discord.RespondEphemeral(ctx.Session, ctx.Event, "Name at least one user to report.")
	}

	id, err := ctx.DB.SubmitReport(ctx, ctx.UserID(), ctx.Username(), db.ReportDetail{
		ReportedUsernames:   reported,
		IncidentDescription: command.StringOption(ctx.Event, "incident"),
		EvidenceLinks:       splitLinks(command.StringOption(ctx.Event, "evidence")),
	})
	if err != nil {
		return fmt.Errorf("submit report: %w", err)
	}
	announce(ctx, id, db.RequestReport, fmt.Sprintf("<@%s> reported: %s",
		ctx.UserID(), strings.Join(reported, ", ")))
	return discord.RespondEphemeral(ctx.Session, ctx.Event,
		fmt.Sprintf("Report #%d received. Thank you; a moderator will take a look.", id))
}
