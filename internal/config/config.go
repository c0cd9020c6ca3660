package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all process-level configuration. A missing required value at
// startup is fatal; there is no partial-startup mode.
type Config struct {
	DiscordToken   string `env:"DISCORD_TOKEN,required"`
	AppID          string `env:"DISCORD_CLIENT_ID,required"`
	DefaultGuildID string `env:"DEFAULT_GUILD_ID"`

	GuildConfigPath string `env:"GUILD_CONFIG_PATH" envDefault:"guilds.yaml"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`

	Database Database `envPrefix:"DATABASE_"`
}

// Database is the connection config for the Postgres pool.
type Database struct {
	Host     string `env:"HOST,required"`
	Port     int    `env:"PORT,required"`
	User     string `env:"USER,required"`
	Password string `env:"PASSWORD,required"`
	Name     string `env:"NAME,required"`
	MaxConns int    `env:"MAX_CONNS" envDefault:"10"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (*Config, error) {
	// No .env file is fine; the system environment is used as-is.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
