// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken          string   `env:"DISCORD_TOKEN"`
	Prefix                string   `env:"COMMAND_PREFIX" envDefault:"!"`
	DeveloperIDs          []string `env:"DEVELOPER_IDS" envSeparator:","`
	StoragePath           string   `env:"STORAGE_PATH" envDefault:"datastore.json"`
	DiscordGuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
	InitSlashCommands     bool     `env:"INIT_SLASH_COMMANDS" envDefault:"true"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	// Per-user command rate: events per second and burst.
	CommandRate  float64 `env:"COMMAND_RATE" envDefault:"1"`
	CommandBurst int     `env:"COMMAND_BURST" envDefault:"3"`
}

// Load reads an optional .env file (files may be given explicitly) and then
// the process environment. It reports whether a .env file was found.
func Load(files ...string) (*Config, bool, error) {
	loaded := true
	if err := godotenv.Load(files...); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, false, fmt.Errorf("failed to load env file: %w", err)
		}
		loaded = false
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, loaded, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.Prefix == "" {
		return nil, loaded, errors.New("COMMAND_PREFIX must not be empty")
	}
	return &cfg, loaded, nil
}

// Validate checks settings the Discord entry point cannot run without.
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is not set")
	}
	return nil
}

// IsDeveloper reports whether the user may see and run developer-only commands.
func (c *Config) IsDeveloper(userID string) bool {
	return userID != "" && slices.Contains(c.DeveloperIDs, userID)
}

// IsGuildBlacklisted reports whether the bot should leave the guild.
func (c *Config) IsGuildBlacklisted(guildID string) bool {
	return slices.Contains(c.DiscordGuildBlacklist, guildID)
}
