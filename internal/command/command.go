// Package command defines the command contract and the registry the
// dispatcher resolves against. Commands are plain structs registered from a
// static list at startup; there is no runtime plugin discovery.
package command

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"portiere/internal/config"
	"portiere/internal/db"
	"portiere/internal/perms"
)

// GuildAll is the sentinel guild id meaning "every guild the bot is in".
const GuildAll = "-1"

// Command is the minimal contract: identity, a slash definition, and an
// executable body. Cooldowns, permission gating, and deployment scope are
// optional capabilities declared through the interfaces below.
type Command interface {
	Name() string
	Description() string
	Definition() *discordgo.ApplicationCommand
	Run(ctx *Context) error
}

// Cooled commands enforce a minimum interval between uses per user.
type Cooled interface {
	Cooldown() time.Duration
}

// Gated commands require a permission level. Commands without this
// capability are public: the dispatcher skips the permission gate entirely.
type Gated interface {
	RequiredLevel() perms.Level
}

// Scope declares where a command is deployed. Absence of the Scoped
// capability means global.
type Scope struct {
	Global bool
	// GuildIDs are explicit deployment targets for non-global commands.
	// The GuildAll sentinel expands to every joined guild. An empty list
	// falls back to the configured default guild.
	GuildIDs []string
}

// Scoped commands override the default global deployment.
type Scoped interface {
	Scope() Scope
}

// Deployer is what the deploy command needs from the deployment manager.
type Deployer interface {
	DeployAll(ctx context.Context) error
	DeployGuild(ctx context.Context, guildID string) (int, error)
	JoinedGuildCount() int
}

// Context is handed to a command body. It carries the request-scoped context
// plus the injected collaborators a handler may use.
type Context struct {
	context.Context

	Session *discordgo.Session
	Event   *discordgo.InteractionCreate

	Log      *zap.Logger
	DB       *db.DB
	Deployer Deployer

	// Guilds is the static guild configuration (owners, role tables, log
	// channels); DefaultGuildID anchors its fallbacks.
	Guilds         *config.GuildFile
	DefaultGuildID string

	// Shutdown asks the process to stop gracefully.
	Shutdown func()
}

// UserID returns the invoking user's id for both guild and DM interactions.
func (c *Context) UserID() string {
	if c.Event.Member != nil && c.Event.Member.User != nil {
		return c.Event.Member.User.ID
	}
	if c.Event.User != nil {
		return c.Event.User.ID
	}
	return ""
}

// Username returns the invoking user's name, or "unknown".
func (c *Context) Username() string {
	if c.Event.Member != nil && c.Event.Member.User != nil {
		return c.Event.Member.User.Username
	}
	if c.Event.User != nil {
		return c.Event.User.Username
	}
	return "unknown"
}
