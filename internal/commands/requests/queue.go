package requests

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"portiere/internal/command"
	"portiere/internal/db"
	"portiere/internal/discord"
)

// announce posts a queue notice to the bot-logs channel and records the
// message id on the request, so a reviewer's decision can be traced back to
// the notice later. Failures here never fail the submission itself.
func announce(ctx *command.Context, id int64, typ db.RequestType, summary string) {
	channelID := ctx.Guilds.BotLogsChannel(ctx.Event.GuildID, ctx.DefaultGuildID)
	if channelID == "" {
		return
	}

	msg, err := ctx.Session.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("New %s · #%d", typ, id),
		Description: summary,
		Color:       discord.EmbedColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("/requests accept id:%d", id)},
	})
	if err != nil {
		ctx.Log.Warn("failed to post queue notice", zap.Int64("request", id), zap.Error(err))
		return
	}
	if err := ctx.DB.SetCachedMessage(ctx, id, msg.ID); err != nil {
		ctx.Log.Warn("failed to record queue notice", zap.Int64("request", id), zap.Error(err))
	}
}
