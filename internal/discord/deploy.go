package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"portiere/internal/command"
	"portiere/pkg/retrylimit"
)

// BulkOverwriter is the slice of discordgo.Session the deployer pushes
// command sets through.
type BulkOverwriter interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Deployer partitions the registry into a global set and per-guild sets and
// pushes each as a single bulk overwrite, so stale definitions disappear
// on every deploy. Guild pushes are paced by an adaptive limiter and
// retried on rate limits and server errors.
type Deployer struct {
	api            BulkOverwriter
	reg            *command.Registry
	appID          string
	defaultGuildID string
	// joinedGuilds lists the guilds the bot is currently in; wired to
	// session state.
	joinedGuilds func() []string
	lim          *retrylimit.AdaptiveLimiter
	log          *zap.Logger
}

func NewDeployer(api BulkOverwriter, reg *command.Registry, appID, defaultGuildID string, joinedGuilds func() []string, log *zap.Logger) *Deployer {
	return &Deployer{
		api:            api,
		reg:            reg,
		appID:          appID,
		defaultGuildID: defaultGuildID,
		joinedGuilds:   joinedGuilds,
		lim:            retrylimit.NewAdaptiveLimiter(2, 1, 5, rate.Limit(0.5), 0.5),
		log:            log,
	}
}

// partition splits registered commands into the global set and a map of
// guild id to that guild's set. The command.GuildAll sentinel expands to
// every joined guild; an empty target list falls back to the default
// guild, and commands with nowhere to go are skipped with a warning.
func (d *Deployer) partition() (global []*discordgo.ApplicationCommand, byGuild map[string][]*discordgo.ApplicationCommand) {
	byGuild = make(map[string][]*discordgo.ApplicationCommand)

	for _, cmd := range d.reg.All() {
		scope := command.Scope{Global: true}
		if scoped, ok := cmd.(command.Scoped); ok {
			scope = scoped.Scope()
		}

		if scope.Global {
			global = append(global, cmd.Definition())
			continue
		}

		targets := scope.GuildIDs
		if len(targets) == 0 {
			if d.defaultGuildID == "" {
				d.log.Warn("no deployment target for guild command",
					zap.String("command", cmd.Name()),
				)
				continue
			}
			targets = []string{d.defaultGuildID}
		}

		seen := make(map[string]struct{})
		for _, target := range targets {
			ids := []string{target}
			if target == command.GuildAll {
				ids = d.joinedGuilds()
			}
			for _, id := range ids {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				byGuild[id] = append(byGuild[id], cmd.Definition())
			}
		}
	}
	return global, byGuild
}

// DeployAll pushes the global set and every per-guild set.
func (d *Deployer) DeployAll(ctx context.Context) error {
	global, byGuild := d.partition()

	if err := d.overwrite(ctx, "", global); err != nil {
		return fmt.Errorf("deploy global commands: %w", err)
	}
	d.log.Info("deployed global commands", zap.Int("count", len(global)))

	guildIDs := make([]string, 0, len(byGuild))
	for id := range byGuild {
		guildIDs = append(guildIDs, id)
	}
	sort.Strings(guildIDs)

	var failed []string
	for _, id := range guildIDs {
		if err := d.overwrite(ctx, id, byGuild[id]); err != nil {
			// One unreachable guild must not block the rest.
			d.log.Warn("guild deploy failed", zap.String("guild", id), zap.Error(err))
			failed = append(failed, id)
			continue
		}
		d.log.Info("deployed guild commands",
			zap.String("guild", id),
			zap.Int("count", len(byGuild[id])),
		)
	}
	if len(failed) > 0 {
		return fmt.Errorf("deploy failed for %d of %d guilds", len(failed), len(byGuild))
	}
	return nil
}

// DeployGuild pushes the command set for one guild and reports how many
// commands it now carries.
func (d *Deployer) DeployGuild(ctx context.Context, guildID string) (int, error) {
	_, byGuild := d.partition()
	set := byGuild[guildID]
	if err := d.overwrite(ctx, guildID, set); err != nil {
		return 0, fmt.Errorf("deploy guild %s: %w", guildID, err)
	}
	d.log.Info("deployed guild commands",
		zap.String("guild", guildID),
		zap.Int("count", len(set)),
	)
	return len(set), nil
}

// JoinedGuildCount reports how many guilds the bot is in.
func (d *Deployer) JoinedGuildCount() int {
	return len(d.joinedGuilds())
}

func (d *Deployer) overwrite(ctx context.Context, guildID string, set []*discordgo.ApplicationCommand) error {
	cfg := retrylimit.DefaultConfig()
	cfg.Retryable = retryableAPIError
	cfg.OnRetry = func(attempt int, err error) {
		d.log.Warn("retrying command overwrite",
			zap.String("guild", guildID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return retrylimit.WithRetryConfig(ctx, func() error {
		_, err := d.api.ApplicationCommandBulkOverwrite(d.appID, guildID, set)
		return err
	}, d.lim, cfg)
}

// retryableAPIError retries rate limits and server-side errors; client
// errors such as a missing scope are permanent.
func retryableAPIError(err error) bool {
	var rl *discordgo.RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		return rest.Response.StatusCode >= http.StatusInternalServerError
	}
	return false
}
