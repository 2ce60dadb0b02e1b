package ports

import (
	"context"
	"errors"

	"durak/internal/domain"
)

var (
	// ErrNotFound is returned when no aggregate exists for the id.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned when the stored version no longer matches
	// the version the caller loaded. Callers re-read and retry.
	ErrVersionConflict = errors.New("version conflict")
)

// LobbyStore persists lobbies with optimistic concurrency.
type LobbyStore interface {
	// LoadLobby returns a private copy of the lobby with Version set.
	LoadLobby(ctx context.Context, id string) (*domain.Lobby, error)

	// ListLobbies returns lobbies that are not closed, newest first.
	ListLobbies(ctx context.Context, limit int) ([]*domain.Lobby, error)

	// SaveLobby writes the lobby if the stored version still equals
	// lobby.Version. An empty Version means the lobby must not exist yet.
	// On success lobby.Version is updated.
	SaveLobby(ctx context.Context, lobby *domain.Lobby) error
}

// GameStore persists games with optimistic concurrency.
type GameStore interface {
	// LoadGame returns a private copy of the game with Version set.
	LoadGame(ctx context.Context, id string) (*domain.Game, error)

	// SaveGame follows the same version contract as SaveLobby.
	SaveGame(ctx context.Context, game *domain.Game) error
}

// Store is the persistence collaborator of the lobby and game services.
type Store interface {
	LobbyStore
	GameStore

	// StartGame saves the lobby (checked against lobby.Version) and creates the
	// game in one atomic write. Neither is written if either check fails.
	StartGame(ctx context.Context, lobby *domain.Lobby, game *domain.Game) error
}
