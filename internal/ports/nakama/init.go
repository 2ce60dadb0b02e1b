package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"durak/internal/app"
	"durak/internal/config"
	"durak/internal/ports"
	"durak/internal/ports/memory"
	"durak/internal/ports/sqlstore"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires the lobby and game RPCs into the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	vars, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg, err := config.Load(vars)
	if err != nil {
		logger.Error("InitModule: Invalid configuration: %v", err)
		return err
	}

	store, err := newStore(ctx, cfg, db, nk)
	if err != nil {
		logger.Error("InitModule: Failed to set up %s storage: %v", cfg.Storage, err)
		return err
	}

	svc := app.NewService(store, NewNakamaAccountAdapter(nk), nil, cfg.Rules())
	if err := NewHandlers(svc).RegisterRPCs(initializer); err != nil {
		return err
	}
	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	rules := svc.Rules()
	logger.Info("Durak Go module loaded (storage=%s, players=%d..%d, hand=%d).", cfg.Storage, rules.MinPlayers, rules.MaxPlayers, rules.HandSize)
	return nil
}

// newStore picks the persistence backend. The sql backend reuses Nakama's own
// database unless a separate DSN is configured.
func newStore(ctx context.Context, cfg config.Config, db *sql.DB, nk runtime.NakamaModule) (ports.Store, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return memory.NewStore(), nil
	case config.StorageSQL:
		var store *sqlstore.Store
		if cfg.SQLDSN == "" {
			if db == nil {
				return nil, fmt.Errorf("no database handle and no durak_sql_dsn")
			}
			dialect, err := sqlstore.NewDialect(cfg.SQLDialect)
			if err != nil {
				return nil, err
			}
			store = sqlstore.New(db, dialect)
		} else {
			opened, err := sqlstore.Open(cfg.SQLDialect, cfg.SQLDSN)
			if err != nil {
				return nil, err
			}
			store = opened
		}
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return NewNakamaStore(nk), nil
	}
}
