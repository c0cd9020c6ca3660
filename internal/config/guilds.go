package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// GuildFile is the per-guild configuration: which roles map to which
// permission level and where the bot posts its log embeds. Loaded once at
// startup and treated as immutable afterwards.
type GuildFile struct {
	// Owners are user IDs with unconditional top-level access. They are also
	// the only users that pass owner-reserved (level 0) checks.
	Owners []string `yaml:"owners" validate:"required,min=1,dive,numeric"`

	Guilds map[string]GuildConfig `yaml:"guilds" validate:"dive"`
}

// GuildConfig configures one guild.
type GuildConfig struct {
	// Roles maps a permission level (1-4) to the role IDs that grant it.
	Roles map[int][]string `yaml:"roles" validate:"dive,keys,min=1,max=4,endkeys,dive,numeric"`

	Channels Channels `yaml:"channels"`
}

// Channels are the operational side channels of a guild.
type Channels struct {
	BotLogs   string `yaml:"bot_logs" validate:"omitempty,numeric"`
	ErrorLogs string `yaml:"error_logs" validate:"omitempty,numeric"`
}

// LoadGuilds reads and validates the guild configuration file.
func LoadGuilds(path string) (*GuildFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read guild config: %w", err)
	}

	var gf GuildFile
	if err := yaml.Unmarshal(raw, &gf); err != nil {
		return nil, fmt.Errorf("parse guild config: %w", err)
	}

	if err := validator.New().Struct(&gf); err != nil {
		return nil, fmt.Errorf("invalid guild config: %w", err)
	}
	return &gf, nil
}

// BotLogsChannel returns the bot-logs channel for a guild, falling back to
// the default guild's channel when the guild has none of its own.
func (g *GuildFile) BotLogsChannel(guildID, defaultGuildID string) string {
	if gc, ok := g.Guilds[guildID]; ok && gc.Channels.BotLogs != "" {
		return gc.Channels.BotLogs
	}
	return g.Guilds[defaultGuildID].Channels.BotLogs
}

// ErrorLogsChannel returns the error-logs channel for a guild, falling back
// to the default guild's channel.
func (g *GuildFile) ErrorLogsChannel(guildID, defaultGuildID string) string {
	if gc, ok := g.Guilds[guildID]; ok && gc.Channels.ErrorLogs != "" {
		return gc.Channels.ErrorLogs
	}
	return g.Guilds[defaultGuildID].Channels.ErrorLogs
}
