package discord

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"portiere/internal/command"
	"portiere/internal/config"
	"portiere/internal/cooldown"
	"portiere/internal/db"
	"portiere/internal/perms"
	"portiere/internal/report"
)

// Dispatcher routes application-command interactions through the gate
// pipeline: lookup, permission check, cooldown check, then execution. Every
// invocation is audited; handler failures are reported and never crash the
// gateway goroutine.
type Dispatcher struct {
	reg            *command.Registry
	resolver       *perms.Resolver
	tracker        *cooldown.Tracker
	reporter       *report.Reporter
	db             *db.DB
	deployer       command.Deployer
	guilds         *config.GuildFile
	defaultGuildID string
	shutdown       func()
	log            *zap.Logger

	// baseCtx is the process context; command contexts derive from it so a
	// shutdown cancels in-flight handlers.
	baseCtx context.Context
}

func NewDispatcher(
	baseCtx context.Context,
	reg *command.Registry,
	resolver *perms.Resolver,
	tracker *cooldown.Tracker,
	reporter *report.Reporter,
	database *db.DB,
	deployer command.Deployer,
	guilds *config.GuildFile,
	defaultGuildID string,
	shutdown func(),
	log *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		reg:            reg,
		resolver:       resolver,
		tracker:        tracker,
		reporter:       reporter,
		db:             database,
		deployer:       deployer,
		guilds:         guilds,
		defaultGuildID: defaultGuildID,
		shutdown:       shutdown,
		log:            log,
		baseCtx:        baseCtx,
	}
}

// Handle is the InteractionCreate gateway handler.
func (d *Dispatcher) Handle(s *discordgo.Session, e *discordgo.InteractionCreate) {
	if e.Type != discordgo.InteractionApplicationCommand {
		return
	}
	d.dispatch(s, s, e)
}

// dispatch runs the pipeline. The session and the replier are separate
// parameters so tests can capture replies while handing commands a session.
func (d *Dispatcher) dispatch(s *discordgo.Session, r Replier, e *discordgo.InteractionCreate) {
	name := e.ApplicationCommandData().Name

	ctx := &command.Context{
		Context:        d.baseCtx,
		Session:        s,
		Event:          e,
		Log:            d.log.With(zap.String("command", name)),
		DB:             d.db,
		Deployer:       d.deployer,
		Guilds:         d.guilds,
		DefaultGuildID: d.defaultGuildID,
		Shutdown:       d.shutdown,
	}

	// Every inbound invocation is audited, including ones that resolve to
	// nothing.
	d.reporter.Audit(e, name, ctx.UserID(), ctx.Username())

	cmd, ok := d.reg.Get(name)
	if !ok {
		d.log.Warn("unknown command invoked",
			zap.String("command", name),
			zap.String("guild", e.GuildID),
		)
		d.reply(r, e, fmt.Sprintf("Unknown command `/%s`.", name))
		return
	}

	if gated, ok := cmd.(command.Gated); ok {
		if !d.allowed(e, ctx, gated.RequiredLevel()) {
			d.reply(r, e, d.denialMessage(e, ctx, name, gated.RequiredLevel()))
			return
		}
	}

	if cooled, ok := cmd.(command.Cooled); ok {
		res := d.tracker.Check(ctx.UserID(), name, cooled.Cooldown())
		if !res.Allowed {
			d.reply(r, e, fmt.Sprintf("Slow down. Try `/%s` again in %.1fs.", name, res.TimeLeft.Seconds()))
			return
		}
	}

	d.execute(r, e, cmd, ctx)
}

// execute runs the command body, converting panics and errors into a
// reported fault plus a generic user-facing notice.
func (d *Dispatcher) execute(r Replier, e *discordgo.InteractionCreate, cmd command.Command, ctx *command.Context) {
	var (
		err   error
		stack []byte
	)

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err = report.PanicError(rec)
				stack = debug.Stack()
			}
		}()
		err = cmd.Run(ctx)
	}()

	if err == nil {
		ctx.Log.Debug("command completed")
		return
	}

	d.reporter.CommandFault(e.GuildID, cmd.Name(), ctx.UserID(), err, stack)
	d.reply(r, e, fmt.Sprintf("Something went wrong running `/%s`. The incident has been logged.", cmd.Name()))
}

func (d *Dispatcher) allowed(e *discordgo.InteractionCreate, ctx *command.Context, required perms.Level) bool {
	return d.resolver.HasLevel(ctx.UserID(), e.GuildID, required)
}

func (d *Dispatcher) denialMessage(e *discordgo.InteractionCreate, ctx *command.Context, name string, required perms.Level) string {
	// Level 0 renders as "Bot Owner"; the format names both sides either way.
	have := d.resolver.ResolveLevel(ctx.UserID(), e.GuildID)
	return fmt.Sprintf("`/%s` requires %s permissions; you are %s.", name, required, have)
}

// reply answers ephemerally, falling back to a followup when the command
// already acknowledged the interaction. Reply failures are logged only;
// the detailed fault has already been reported.
func (d *Dispatcher) reply(r Replier, e *discordgo.InteractionCreate, content string) {
	if err := RespondEphemeral(r, e, content); err == nil {
		return
	}
	if err := FollowupEphemeral(r, e, content); err != nil {
		d.log.Warn("failed to answer interaction", zap.Error(err))
	}
}
