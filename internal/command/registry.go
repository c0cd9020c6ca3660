package command

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// ErrInvalidCommand tags registration failures so callers can match them.
var ErrInvalidCommand = errors.New("invalid command definition")

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9-]{0,31}$`)

// Registry indexes commands by name. It is populated once at startup and
// read-only afterwards; construct one per process (or per test) instead of
// sharing a package global.
type Registry struct {
	commands map[string]Command
	log      *zap.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{commands: make(map[string]Command), log: log}
}

// Register validates and indexes a command. A malformed definition is
// rejected with an error wrapping ErrInvalidCommand; the caller logs and
// moves on, so one bad command never aborts startup. Registering a name
// twice overwrites the earlier entry (last registered wins).
func (r *Registry) Register(cmd Command) error {
	if err := validate(cmd); err != nil {
		r.log.Warn("rejected command", zap.Error(err))
		return err
	}
	if _, exists := r.commands[cmd.Name()]; exists {
		r.log.Warn("command name already registered, overwriting", zap.String("command", cmd.Name()))
	}
	r.commands[cmd.Name()] = cmd
	r.log.Info("registered command", zap.String("command", cmd.Name()))
	return nil
}

// RegisterAll registers each command, skipping (not aborting on) invalid
// ones, and returns how many were accepted.
func (r *Registry) RegisterAll(cmds ...Command) int {
	n := 0
	for _, cmd := range cmds {
		if err := r.Register(cmd); err == nil {
			n++
		}
	}
	return n
}

// Get returns the command with the given name.
func (r *Registry) Get(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// All returns every registered command, sorted by name.
func (r *Registry) All() []Command {
	list := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		list = append(list, cmd)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// Len returns the number of registered commands.
func (r *Registry) Len() int { return len(r.commands) }

var validOptionTypes = map[discordgo.ApplicationCommandOptionType]bool{
	discordgo.ApplicationCommandOptionSubCommand:      true,
	discordgo.ApplicationCommandOptionSubCommandGroup: true,
	discordgo.ApplicationCommandOptionString:          true,
	discordgo.ApplicationCommandOptionInteger:         true,
	discordgo.ApplicationCommandOptionBoolean:         true,
	discordgo.ApplicationCommandOptionUser:            true,
	discordgo.ApplicationCommandOptionChannel:         true,
	discordgo.ApplicationCommandOptionRole:            true,
	discordgo.ApplicationCommandOptionMentionable:     true,
	discordgo.ApplicationCommandOptionNumber:          true,
	discordgo.ApplicationCommandOptionAttachment:      true,
}

func validate(cmd Command) error {
	if cmd == nil {
		return fmt.Errorf("%w: nil command", ErrInvalidCommand)
	}
	name := cmd.Name()
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: name %q must be lowercase/hyphenated", ErrInvalidCommand, name)
	}
	if cmd.Description() == "" {
		return fmt.Errorf("%w: %s has no description", ErrInvalidCommand, name)
	}

	def := cmd.Definition()
	if def == nil {
		return fmt.Errorf("%w: %s has no slash definition", ErrInvalidCommand, name)
	}
	if def.Name != name {
		return fmt.Errorf("%w: %s definition declares name %q", ErrInvalidCommand, name, def.Name)
	}
	for _, opt := range def.Options {
		if err := validateOption(name, opt); err != nil {
			return err
		}
	}

	if gated, ok := cmd.(Gated); ok && !gated.RequiredLevel().Valid() {
		return fmt.Errorf("%w: %s requires out-of-range level %d", ErrInvalidCommand, name, gated.RequiredLevel())
	}
	if cooled, ok := cmd.(Cooled); ok && cooled.Cooldown() < 0 {
		return fmt.Errorf("%w: %s has negative cooldown", ErrInvalidCommand, name)
	}
	return nil
}

func validateOption(cmdName string, opt *discordgo.ApplicationCommandOption) error {
	if opt == nil || opt.Name == "" {
		return fmt.Errorf("%w: %s has an unnamed option", ErrInvalidCommand, cmdName)
	}
	if !validOptionTypes[opt.Type] {
		return fmt.Errorf("%w: %s option %q has unknown type %d", ErrInvalidCommand, cmdName, opt.Name, opt.Type)
	}
	for _, sub := range opt.Options {
		if err := validateOption(cmdName, sub); err != nil {
			return err
		}
	}
	return nil
}
