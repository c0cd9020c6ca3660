package discord

import (
	"github.com/bwmarrin/discordgo"
)

const EmbedColor = 0x5865f2

// Replier is the slice of discordgo.Session the dispatcher uses to answer
// interactions. Split out so dispatch tests can capture replies.
type Replier interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Respond sends a public message response to an interaction.
func Respond(r Replier, i *discordgo.InteractionCreate, content string) error {
	return r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
}

// RespondEphemeral sends an ephemeral message response to an interaction.
func RespondEphemeral(r Replier, i *discordgo.InteractionCreate, content string) error {
	return r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// RespondEmbed sends a public embed response to an interaction.
func RespondEmbed(r Replier, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}},
	})
}

// RespondEmbedEphemeral sends an ephemeral embed response to an interaction.
func RespondEmbedEphemeral(r Replier, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:  discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// RespondDeferredEphemeral acknowledges an interaction ephemerally without an
// immediate reply. Follow up within fifteen minutes.
func RespondDeferredEphemeral(r Replier, i *discordgo.InteractionCreate) error {
	return r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

// FollowupEphemeral sends an ephemeral followup message.
func FollowupEphemeral(r Replier, i *discordgo.InteractionCreate, content string) error {
	_, err := r.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: content})
	return err
}

// FollowupEmbedEphemeral sends an ephemeral embed followup message.
func FollowupEmbedEphemeral(r Replier, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	_, err := r.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	return err
}

// FollowupEmbed sends a public embed followup message.
func FollowupEmbed(r Replier, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	_, err := r.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	return err
}
