package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"portiere/internal/command"
	"portiere/internal/discord"
)

type Whois struct{}

func (c *Whois) Name() string            { return "whois" }
func (c *Whois) Description() string     { return "Look up a member's account and guild details" }
func (c *Whois) Cooldown() time.Duration { return 10 * time.Second }

func (c *Whois) Scope() command.Scope {
	return command.Scope{GuildIDs: []string{command.GuildAll}}
}

func (c *Whois) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "The member to look up",
				Required:    true,
			},
		},
	}
}

func (c *Whois) Run(ctx *command.Context) error {
	// Member lookups can hit the API, so acknowledge first.
	if err := discord.RespondDeferredEphemeral(ctx.Session, ctx.Event); err != nil {
		return fmt.Errorf("defer response: %w", err)
	}

	target := command.UserOption(ctx.Event, ctx.Session, "user")
	if target == nil {
		return discord.FollowupEphemeral(ctx.Session, ctx.Event, "Could not resolve that user.")
	}

	created, _ := discordgo.SnowflakeTimestamp(target.ID)
	fields := []*discordgo.MessageEmbedField{
		{Name: "ID", Value: target.ID, Inline: true},
		{Name: "Account created", Value: created.UTC().Format("2006-01-02"), Inline: true},
	}

	member, err := ctx.Session.GuildMember(ctx.Event.GuildID, target.ID)
	if err == nil {
		joined := member.JoinedAt.UTC().Format("2006-01-02")
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Joined", Value: joined, Inline: true})
		if len(member.Roles) > 0 {
			mentions := make([]string, len(member.Roles))
			for i, r := range member.Roles {
				mentions[i] = "<@&" + r + ">"
			}
			fields = append(fields, &discordgo.MessageEmbedField{
				Name:  "Roles",
				Value: strings.Join(mentions, " "),
			})
		}
	}
	if ctx.DB != nil {
		if u, dbErr := ctx.DB.UserByDiscordID(ctx, target.ID); dbErr == nil && u != nil {
			fields = append(fields, &discordgo.MessageEmbedField{
				Name:   "First seen",
				Value:  u.CreatedAt.UTC().Format("2006-01-02"),
				Inline: true,
			})
		}
	}

	return discord.FollowupEmbedEphemeral(ctx.Session, ctx.Event, &discordgo.MessageEmbed{
		Title:     target.Username,
		Color:     discord.EmbedColor,
		Fields:    fields,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: target.AvatarURL("128")},
	})
}
