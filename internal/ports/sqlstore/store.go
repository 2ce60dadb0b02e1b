// Package sqlstore implements the store port on a SQL database. Aggregates
// are kept as JSON documents next to an integer version column that every
// write compares and bumps.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"durak/internal/domain"
	"durak/internal/ports"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS durak_lobbies (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		version BIGINT NOT NULL,
		data TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS durak_lobbies_status_created ON durak_lobbies (status, created_at)`,
	`CREATE TABLE IF NOT EXISTS durak_games (
		id TEXT PRIMARY KEY,
		lobby_id TEXT NOT NULL,
		version BIGINT NOT NULL,
		data TEXT NOT NULL
	)`,
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists lobbies and games in two tables.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an existing connection, such as the one the Nakama runtime
// hands to InitModule. The pool settings of db are left alone.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Open connects to dsn with the named dialect and configures the pool.
func Open(dialectName, dsn string) (*Store, error) {
	dialect, err := NewDialect(dialectName)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := dialect.ConfigureConnection(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure connection: %w", err)
	}
	return New(db, dialect), nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the tables if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// LoadLobby returns the lobby with its version.
func (s *Store) LoadLobby(ctx context.Context, id string) (*domain.Lobby, error) {
	var (
		version int64
		data    string
	)
	err := s.db.QueryRowContext(ctx, s.q(`SELECT version, data FROM durak_lobbies WHERE id = ?`), id).Scan(&version, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load lobby %s: %w", id, err)
	}
	return decodeLobby(version, data)
}

// ListLobbies returns non-closed lobbies, newest first.
func (s *Store) ListLobbies(ctx context.Context, limit int) ([]*domain.Lobby, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT version, data FROM durak_lobbies
		WHERE status <> ?
		ORDER BY created_at DESC, id ASC
		LIMIT ?`), string(domain.LobbyClosed), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list lobbies: %w", err)
	}
	defer rows.Close()

	var out []*domain.Lobby
	for rows.Next() {
		var (
			version int64
			data    string
		)
		if err := rows.Scan(&version, &data); err != nil {
			return nil, fmt.Errorf("failed to scan lobby: %w", err)
		}
		lobby, err := decodeLobby(version, data)
		if err != nil {
			return nil, err
		}
		out = append(out, lobby)
	}
	return out, rows.Err()
}

// SaveLobby inserts or version-checked updates the lobby.
func (s *Store) SaveLobby(ctx context.Context, lobby *domain.Lobby) error {
	next, err := s.putLobby(ctx, s.db, lobby)
	if err != nil {
		return err
	}
	lobby.Version = next
	return nil
}

// LoadGame returns the game with its version.
func (s *Store) LoadGame(ctx context.Context, id string) (*domain.Game, error) {
	var (
		version int64
		data    string
	)
	err := s.db.QueryRowContext(ctx, s.q(`SELECT version, data FROM durak_games WHERE id = ?`), id).Scan(&version, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", id, err)
	}

	var game domain.Game
	if err := json.Unmarshal([]byte(data), &game); err != nil {
		return nil, fmt.Errorf("failed to decode game %s: %w", id, err)
	}
	game.Version = strconv.FormatInt(version, 10)
	return &game, nil
}

// SaveGame inserts or version-checked updates the game.
func (s *Store) SaveGame(ctx context.Context, game *domain.Game) error {
	next, err := s.putGame(ctx, s.db, game)
	if err != nil {
		return err
	}
	game.Version = next
	return nil
}

// StartGame writes the lobby and the new game in one transaction.
func (s *Store) StartGame(ctx context.Context, lobby *domain.Lobby, game *domain.Game) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	lobbyVersion, err := s.putLobby(ctx, tx, lobby)
	if err != nil {
		return err
	}
	gameVersion, err := s.putGame(ctx, tx, game)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit start: %w", err)
	}
	lobby.Version = lobbyVersion
	game.Version = gameVersion
	return nil
}

func (s *Store) putLobby(ctx context.Context, db dbtx, lobby *domain.Lobby) (string, error) {
	data, err := json.Marshal(lobby)
	if err != nil {
		return "", fmt.Errorf("failed to encode lobby %s: %w", lobby.ID, err)
	}
	if lobby.Version == "" {
		return s.insert(ctx, db, `
			INSERT INTO durak_lobbies (id, status, created_at, version, data)
			VALUES (?, ?, ?, 1, ?)
			ON CONFLICT (id) DO NOTHING`,
			lobby.ID, string(lobby.Status), lobby.CreatedAt.UnixNano(), string(data))
	}
	return s.update(ctx, db, `
		UPDATE durak_lobbies SET status = ?, data = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		lobby.Version, string(lobby.Status), string(data), lobby.ID)
}

func (s *Store) putGame(ctx context.Context, db dbtx, game *domain.Game) (string, error) {
	data, err := json.Marshal(game)
	if err != nil {
		return "", fmt.Errorf("failed to encode game %s: %w", game.ID, err)
	}
	if game.Version == "" {
		return s.insert(ctx, db, `
			INSERT INTO durak_games (id, lobby_id, version, data)
			VALUES (?, ?, 1, ?)
			ON CONFLICT (id) DO NOTHING`,
			game.ID, game.LobbyID, string(data))
	}
	return s.update(ctx, db, `
		UPDATE durak_games SET data = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		game.Version, string(data), game.ID)
}

// insert runs a create-only insert. An existing row is a version conflict.
func (s *Store) insert(ctx context.Context, db dbtx, query string, args ...any) (string, error) {
	res, err := db.ExecContext(ctx, s.q(query), args...)
	if err != nil {
		return "", fmt.Errorf("failed to insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to insert: %w", err)
	}
	if n == 0 {
		return "", ports.ErrVersionConflict
	}
	return "1", nil
}

// update runs a version-guarded update; the expected version is appended as
// the last argument.
func (s *Store) update(ctx context.Context, db dbtx, query, expected string, args ...any) (string, error) {
	current, err := strconv.ParseInt(expected, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid version %q: %w", expected, err)
	}
	res, err := db.ExecContext(ctx, s.q(query), append(args, current)...)
	if err != nil {
		return "", fmt.Errorf("failed to update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to update: %w", err)
	}
	if n == 0 {
		return "", ports.ErrVersionConflict
	}
	return strconv.FormatInt(current+1, 10), nil
}

func (s *Store) q(query string) string {
	return s.dialect.RewriteQuery(query)
}

func decodeLobby(version int64, data string) (*domain.Lobby, error) {
	var lobby domain.Lobby
	if err := json.Unmarshal([]byte(data), &lobby); err != nil {
		return nil, fmt.Errorf("failed to decode lobby: %w", err)
	}
	lobby.Version = strconv.FormatInt(version, 10)
	return &lobby, nil
}

var _ ports.Store = (*Store)(nil)
