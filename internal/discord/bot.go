package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"portiere/internal/command"
	"portiere/internal/config"
	"portiere/internal/cooldown"
	"portiere/internal/db"
	"portiere/internal/perms"
	"portiere/internal/report"
)

// Bot owns the gateway session and the collaborators behind it: the command
// registry, dispatcher, deployer, reporter, and the background scheduler.
type Bot struct {
	session    *discordgo.Session
	reg        *command.Registry
	dispatcher *Dispatcher
	deployer   command.Deployer
	reporter   *report.Reporter
	tracker    *cooldown.Tracker
	log        *zap.Logger

	ctx context.Context

	mu     sync.Mutex
	guilds map[string]struct{}
}

// New builds the full bot wiring from configuration and a command list.
// shutdown is invoked by commands that stop the process.
func New(
	ctx context.Context,
	cfg *config.Config,
	guilds *config.GuildFile,
	database *db.DB,
	cmds []command.Command,
	shutdown func(),
	log *zap.Logger,
) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	reg := command.NewRegistry(log)
	reg.RegisterAll(cmds...)

	resolver := perms.NewResolver(session, guilds.Owners, roleTables(guilds), log)
	tracker := cooldown.New()
	reporter := report.New(session, guilds, cfg.DefaultGuildID, log)

	b := &Bot{
		session:  session,
		reg:      reg,
		reporter: reporter,
		tracker:  tracker,
		log:      log,
		ctx:      ctx,
		guilds:   make(map[string]struct{}),
	}

	b.deployer = NewDeployer(session, reg, cfg.AppID, cfg.DefaultGuildID, b.joinedGuilds, log)
	b.dispatcher = NewDispatcher(ctx, reg, resolver, tracker, reporter, database, b.deployer, guilds, cfg.DefaultGuildID, shutdown, log)

	// The initial deploy is a fire-once subscription; the persistent ready
	// handler re-seeds guild state and presence on every reconnect.
	session.AddHandlerOnce(b.onFirstReady)
	session.AddHandler(b.onReady)
	session.AddHandler(b.onGuildCreate)
	session.AddHandler(b.onGuildDelete)
	session.AddHandler(b.dispatcher.Handle)

	return b, nil
}

// Run opens the gateway and blocks until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	if _, err := scheduler.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(b.tracker.Sweep),
	); err != nil {
		return fmt.Errorf("schedule cooldown sweep: %w", err)
	}
	if _, err := scheduler.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(func() { b.setPresence(b.session) }),
	); err != nil {
		return fmt.Errorf("schedule presence refresh: %w", err)
	}

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	scheduler.Start()

	<-ctx.Done()
	b.log.Info("shutting down")

	if err := scheduler.Shutdown(); err != nil {
		b.log.Warn("scheduler shutdown", zap.Error(err))
	}
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("close gateway: %w", err)
	}
	return nil
}

func (b *Bot) joinedGuilds() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.guilds))
	for id := range b.guilds {
		ids = append(ids, id)
	}
	return ids
}

// roleTables converts the guild file's level-to-roles mapping into the
// resolver's table form.
func roleTables(guilds *config.GuildFile) map[string]perms.RoleTable {
	tables := make(map[string]perms.RoleTable, len(guilds.Guilds))
	for id, g := range guilds.Guilds {
		table := make(perms.RoleTable, len(g.Roles))
		for level, roles := range g.Roles {
			table[perms.Level(level)] = roles
		}
		tables[id] = table
	}
	return tables
}
