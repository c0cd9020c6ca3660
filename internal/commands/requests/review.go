package requests

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"portiere/internal/command"
	"portiere/internal/db"
	"portiere/internal/discord"
	"portiere/internal/perms"
)

const listLimit = 25

// Review is the moderator side: list the pending queue and decide requests.
type Review struct{}

func (c *Review) Name() string               { return "requests" }
func (c *Review) Description() string        { return "Review pending appeals, reports, and applications" }
func (c *Review) Cooldown() time.Duration    { return 5 * time.Second }
func (c *Review) RequiredLevel() perms.Level { return perms.LevelModerator }

func (c *Review) Scope() command.Scope {
	return command.Scope{} // default guild only
}

func (c *Review) Definition() *discordgo.ApplicationCommand {
	idOption := func(desc string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "id",
			Description: desc,
			Required:    true,
		}
	}
	notesOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "notes",
		Description: "Notes for the record",
	}
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "Show the pending queue, oldest first",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "accept",
				Description: "Accept a pending request",
				Options: []*discordgo.ApplicationCommandOption{
					idOption("The request to accept"),
					notesOption,
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "reject",
				Description: "Reject a pending request",
				Options: []*discordgo.ApplicationCommandOption{
					idOption("The request to reject"),
					notesOption,
				},
			},
		},
	}
}

func (c *Review) Run(ctx *command.Context) error {
	switch command.Subcommand(ctx.Event) {
	case "list":
		return c.list(ctx)
	case "accept":
		return c.decide(ctx, true)
	case "reject":
		return c.decide(ctx, false)
	default:
		return discord.RespondEphemeral(ctx.Session, ctx.Event, "Unknown subcommand.")
	}
}

func (c *Review) list(ctx *command.Context) error {
	pending, err := ctx.DB.PendingRequests(ctx, listLimit)
	if err != nil {
		return fmt.Errorf("list pending requests: %w", err)
	}
	if len(pending) == 0 {
		return discord.RespondEphemeral(ctx.Session, ctx.Event, "The queue is empty.")
	}

	var b strings.Builder
	for _, r := range pending {
		fmt.Fprintf(&b, "`#%d` **%s** from <@%s> · %s\n",
			r.ID, r.Type, r.RequesterDiscordID, r.CreatedAt.UTC().Format("2006-01-02 15:04"))
	}
	return discord.RespondEmbedEphemeral(ctx.Session, ctx.Event, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Pending requests (%d)", len(pending)),
		Description: b.String(),
		Color:       discord.EmbedColor,
	})
}

func (c *Review) decide(ctx *command.Context, accept bool) error {
	id := command.IntOption(ctx.Event, "id")
	notes := command.StringOption(ctx.Event, "notes")

	err := ctx.DB.ReviewRequest(ctx, id, ctx.UserID(), ctx.Username(), accept, notes)
	if errors.Is(err, db.ErrNotPending) {
		return discord.RespondEphemeral(ctx.Session, ctx.Event,
			fmt.Sprintf("Request #%d is not pending; it may already be decided or never existed.", id))
	}
	if err != nil {
		return fmt.Errorf("review request %d: %w", id, err)
	}

	verdict := "rejected"
	if accept {
		verdict = "accepted"
	}
	return discord.RespondEphemeral(ctx.Session, ctx.Event,
		fmt.Sprintf("Request #%d %s.", id, verdict))
}
