// Package memory is an in-process implementation of the store port. It keeps
// encoded aggregates so callers can never alias stored state.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"durak/internal/domain"
	"durak/internal/ports"
)

type record struct {
	version int
	data    []byte
}

// Store is a versioned in-memory store for lobbies and games.
type Store struct {
	mutex   sync.RWMutex
	lobbies map[string]record
	games   map[string]record
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		lobbies: make(map[string]record),
		games:   make(map[string]record),
	}
}

// LoadLobby returns a copy of the lobby.
func (s *Store) LoadLobby(ctx context.Context, id string) (*domain.Lobby, error) {
	s.mutex.RLock()
	rec, ok := s.lobbies[id]
	s.mutex.RUnlock()
	if !ok {
		return nil, ports.ErrNotFound
	}
	return decodeLobby(rec)
}

// ListLobbies returns non-closed lobbies, newest first.
func (s *Store) ListLobbies(ctx context.Context, limit int) ([]*domain.Lobby, error) {
	s.mutex.RLock()
	out := make([]*domain.Lobby, 0, len(s.lobbies))
	for _, rec := range s.lobbies {
		lobby, err := decodeLobby(rec)
		if err != nil {
			s.mutex.RUnlock()
			return nil, err
		}
		if lobby.Status == domain.LobbyClosed {
			continue
		}
		out = append(out, lobby)
	}
	s.mutex.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SaveLobby writes the lobby if lobby.Version matches the stored version.
func (s *Store) SaveLobby(ctx context.Context, lobby *domain.Lobby) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	next, err := s.putLobby(lobby)
	if err != nil {
		return err
	}
	lobby.Version = next
	return nil
}

// LoadGame returns a copy of the game.
func (s *Store) LoadGame(ctx context.Context, id string) (*domain.Game, error) {
	s.mutex.RLock()
	rec, ok := s.games[id]
	s.mutex.RUnlock()
	if !ok {
		return nil, ports.ErrNotFound
	}

	var game domain.Game
	if err := json.Unmarshal(rec.data, &game); err != nil {
		return nil, fmt.Errorf("failed to decode game %s: %w", id, err)
	}
	game.Version = strconv.Itoa(rec.version)
	return &game, nil
}

// SaveGame writes the game if game.Version matches the stored version.
func (s *Store) SaveGame(ctx context.Context, game *domain.Game) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	next, err := s.putGame(game)
	if err != nil {
		return err
	}
	game.Version = next
	return nil
}

// StartGame updates the lobby and creates the game under one lock.
func (s *Store) StartGame(ctx context.Context, lobby *domain.Lobby, game *domain.Game) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := checkVersion(s.lobbies, lobby.ID, lobby.Version); err != nil {
		return err
	}
	if err := checkVersion(s.games, game.ID, game.Version); err != nil {
		return err
	}

	lobbyVersion, err := s.putLobby(lobby)
	if err != nil {
		return err
	}
	gameVersion, err := s.putGame(game)
	if err != nil {
		return err
	}
	lobby.Version = lobbyVersion
	game.Version = gameVersion
	return nil
}

func (s *Store) putLobby(lobby *domain.Lobby) (string, error) {
	if err := checkVersion(s.lobbies, lobby.ID, lobby.Version); err != nil {
		return "", err
	}
	data, err := json.Marshal(lobby)
	if err != nil {
		return "", fmt.Errorf("failed to encode lobby %s: %w", lobby.ID, err)
	}
	next := s.lobbies[lobby.ID].version + 1
	s.lobbies[lobby.ID] = record{version: next, data: data}
	return strconv.Itoa(next), nil
}

func (s *Store) putGame(game *domain.Game) (string, error) {
	if err := checkVersion(s.games, game.ID, game.Version); err != nil {
		return "", err
	}
	data, err := json.Marshal(game)
	if err != nil {
		return "", fmt.Errorf("failed to encode game %s: %w", game.ID, err)
	}
	next := s.games[game.ID].version + 1
	s.games[game.ID] = record{version: next, data: data}
	return strconv.Itoa(next), nil
}

func checkVersion(records map[string]record, id, expected string) error {
	rec, exists := records[id]
	if expected == "" {
		if exists {
			return ports.ErrVersionConflict
		}
		return nil
	}
	if !exists {
		return ports.ErrNotFound
	}
	if strconv.Itoa(rec.version) != expected {
		return ports.ErrVersionConflict
	}
	return nil
}

func decodeLobby(rec record) (*domain.Lobby, error) {
	var lobby domain.Lobby
	if err := json.Unmarshal(rec.data, &lobby); err != nil {
		return nil, fmt.Errorf("failed to decode lobby: %w", err)
	}
	lobby.Version = strconv.Itoa(rec.version)
	return &lobby, nil
}

var _ ports.Store = (*Store)(nil)
