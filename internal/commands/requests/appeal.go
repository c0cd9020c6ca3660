// Package requests holds the commands around user-submitted requests:
// sanction appeals, user reports, citizenship applications, and the
// moderator review queue.
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

// splitLinks turns a free-form "a, b c" option value into a clean list.
func splitLinks(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

type Appeal struct{}

func (c *Appeal) Name() string            { return "appeal" }
func (c *Appeal) Description() string     { return "Appeal a sanction you received" }
func (c *Appeal) Cooldown() time.Duration { return 30 * time.Second }

func (c *Appeal) Scope() command.Scope {
	return command.Scope{GuildIDs: []string{command.GuildAll}}
}

func (c *Appeal) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "sanction",
				Description: "Which sanction you are appealing",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "reason",
				Description: "Why the sanction should be lifted",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "media",
				Description: "Links to supporting screenshots or clips, separated by spaces",
			},
		},
	}
}

func (c *Appeal) Run(ctx *command.Context) error {
	id, err := ctx.DB.SubmitAppeal(ctx, ctx.UserID(), ctx.Username(), db.AppealDetail{
		SanctionDescription: command.StringOption(ctx.Event, "sanction"),
		AppealDescription:   command.StringOption(ctx.Event, "reason"),
		MediaLinks:          splitLinks(command.StringOption(ctx.Event, "media")),
	})
	if err != nil {
		return fmt.Errorf("submit appeal: %w", err)
	}
	announce(ctx, id, db.RequestAppeal, fmt.Sprintf("<@%s> is appealing: %s",
		ctx.UserID(), command.StringOption(ctx.Event, "sanction")))
	return discord.RespondEphemeral(ctx.Session, ctx.Event,
		fmt.Sprintf("Appeal #%d received. A moderator will review it.", id))
}
