package config

import (
	"fmt"

	"durak/internal/app"

	"github.com/caarlos0/env/v11"
)

// Storage backends selectable through durak_storage.
const (
	StorageNakama = "nakama"
	StorageSQL    = "sql"
	StorageMemory = "memory"
)

// SQL dialects selectable through durak_sql_dialect.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// maxHandSize keeps the nine-card setup deal within the deck for a full table.
const maxHandSize = 3

// Config is the module configuration read from the Nakama runtime environment.
type Config struct {
	Storage         string `env:"durak_storage"          envDefault:"nakama"`
	SQLDialect      string `env:"durak_sql_dialect"      envDefault:"postgres"`
	SQLDSN          string `env:"durak_sql_dsn"`
	HandSize        int    `env:"durak_hand_size"        envDefault:"3"`
	MinPlayers      int    `env:"durak_min_players"      envDefault:"2"`
	MaxPlayers      int    `env:"durak_max_players"      envDefault:"5"`
	ConflictRetries int    `env:"durak_conflict_retries" envDefault:"3"`
	LobbyListLimit  int    `env:"durak_lobby_list_limit" envDefault:"100"`
}

// Load parses cfg from vars, typically the runtime.RUNTIME_CTX_ENV map.
// Keys missing from vars take their defaults.
func Load(vars map[string]string) (Config, error) {
	var cfg Config
	if vars == nil {
		vars = map[string]string{}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and enum values.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageNakama, StorageMemory:
	case StorageSQL:
		switch c.SQLDialect {
		case DialectPostgres, DialectSQLite:
		default:
			return fmt.Errorf("durak_sql_dialect %q: want %s or %s", c.SQLDialect, DialectPostgres, DialectSQLite)
		}
	default:
		return fmt.Errorf("durak_storage %q: want %s, %s or %s", c.Storage, StorageNakama, StorageSQL, StorageMemory)
	}

	if c.HandSize < 1 || c.HandSize > maxHandSize {
		return fmt.Errorf("durak_hand_size %d out of range 1..%d", c.HandSize, maxHandSize)
	}
	if c.MinPlayers < 2 || c.MinPlayers > c.MaxPlayers {
		return fmt.Errorf("durak_min_players %d must be between 2 and durak_max_players", c.MinPlayers)
	}
	if c.MaxPlayers > app.MaxPlayersPerGame {
		return fmt.Errorf("durak_max_players %d exceeds %d", c.MaxPlayers, app.MaxPlayersPerGame)
	}
	if c.ConflictRetries < 0 {
		return fmt.Errorf("durak_conflict_retries must not be negative")
	}
	if c.LobbyListLimit < 1 {
		return fmt.Errorf("durak_lobby_list_limit must be positive")
	}
	return nil
}

// Rules converts the configuration into service limits.
func (c Config) Rules() app.Rules {
	rules := app.DefaultRules()
	rules.HandSize = c.HandSize
	rules.MinPlayers = c.MinPlayers
	rules.MaxPlayers = c.MaxPlayers
	rules.ConflictRetries = c.ConflictRetries
	rules.LobbyListLimit = c.LobbyListLimit
	return rules
}
