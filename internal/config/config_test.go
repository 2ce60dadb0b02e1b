package config

import (
	"strings"
	"testing"

	"durak/internal/app"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage != StorageNakama || cfg.SQLDialect != DialectPostgres {
		t.Fatalf("backend = %s/%s", cfg.Storage, cfg.SQLDialect)
	}
	if got, want := cfg.Rules(), app.DefaultRules(); got != want {
		t.Fatalf("rules = %+v, want %+v", got, want)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(map[string]string{
		"durak_storage":          "sql",
		"durak_sql_dialect":      "sqlite",
		"durak_sql_dsn":          "file:durak.db",
		"durak_hand_size":        "2",
		"durak_max_players":      "4",
		"durak_conflict_retries": "0",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rules := cfg.Rules()
	if rules.HandSize != 2 || rules.MaxPlayers != 4 || rules.ConflictRetries != 0 {
		t.Fatalf("rules = %+v", rules)
	}
	if cfg.SQLDSN != "file:durak.db" {
		t.Fatalf("dsn = %q", cfg.SQLDSN)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"unknown storage", map[string]string{"durak_storage": "redis"}, "durak_storage"},
		{"unknown dialect", map[string]string{"durak_storage": "sql", "durak_sql_dialect": "mysql"}, "durak_sql_dialect"},
		{"hand too big", map[string]string{"durak_hand_size": "4"}, "durak_hand_size"},
		{"min above max", map[string]string{"durak_min_players": "4", "durak_max_players": "3"}, "durak_min_players"},
		{"max above deck", map[string]string{"durak_max_players": "6"}, "durak_max_players"},
		{"not a number", map[string]string{"durak_hand_size": "three"}, "parse env"},
		{"zero list limit", map[string]string{"durak_lobby_list_limit": "0"}, "durak_lobby_list_limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.vars)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}
