package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// onFirstReady is subscribed with AddHandlerOnce: the initial deploy runs on
// the first connect only, never again on reconnects.
func (b *Bot) onFirstReady(s *discordgo.Session, r *discordgo.Ready) {
	go func() {
		if err := b.deployer.DeployAll(b.ctx); err != nil {
			b.reporter.EventFault("", "startup deploy", err)
		}
	}()
}

// onReady fires on every gateway (re)connect.
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("gateway ready",
		zap.String("user", r.User.Username),
		zap.Int("guilds", len(r.Guilds)),
	)

	// Seed the known-guild set so the flood of GuildCreate events that
	// follows a connect is not mistaken for new invites.
	b.mu.Lock()
	for _, g := range r.Guilds {
		b.guilds[g.ID] = struct{}{}
	}
	b.mu.Unlock()

	b.setPresence(s)
}

// onGuildCreate fires for every guild on connect and again when the bot is
// invited somewhere new. Only the latter needs a deploy.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Unavailable {
		return
	}
	b.mu.Lock()
	_, known := b.guilds[g.ID]
	b.guilds[g.ID] = struct{}{}
	b.mu.Unlock()
	if known {
		return
	}

	b.log.Info("joined guild", zap.String("guild", g.ID), zap.String("name", g.Name))

	n, err := b.deployer.DeployGuild(b.ctx, g.ID)
	if err != nil {
		b.reporter.EventFault(g.ID, "guild join deploy", err)
		return
	}
	b.log.Info("guild ready", zap.String("guild", g.ID), zap.Int("commands", n))
}

func (b *Bot) onGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	b.mu.Lock()
	delete(b.guilds, g.ID)
	b.mu.Unlock()
	b.log.Info("left guild", zap.String("guild", g.ID))
}

func (b *Bot) setPresence(s *discordgo.Session) {
	status := fmt.Sprintf("over %d guilds", len(s.State.Guilds))
	if err := s.UpdateWatchStatus(0, status); err != nil {
		b.log.Warn("failed to set presence", zap.Error(err))
	}
}
