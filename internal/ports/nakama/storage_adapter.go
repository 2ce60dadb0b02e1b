package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"durak/internal/domain"
	"durak/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaStore implements ports.Store on Nakama storage objects. The storage
// object version doubles as the aggregate version.
type NakamaStore struct {
	nk runtime.NakamaModule
}

// NewNakamaStore creates a new storage adapter.
func NewNakamaStore(nk runtime.NakamaModule) *NakamaStore {
	return &NakamaStore{nk: nk}
}

// LoadLobby reads one lobby object.
func (s *NakamaStore) LoadLobby(ctx context.Context, id string) (*domain.Lobby, error) {
	var lobby domain.Lobby
	version, err := s.read(ctx, lobbyCollection, id, &lobby)
	if err != nil {
		return nil, err
	}
	lobby.Version = version
	return &lobby, nil
}

// ListLobbies scans the lobby collection. Storage lists by key, so every page
// is read before sorting by creation time.
func (s *NakamaStore) ListLobbies(ctx context.Context, limit int) ([]*domain.Lobby, error) {
	var (
		out    []*domain.Lobby
		cursor string
	)
	for {
		objects, next, err := s.nk.StorageList(ctx, "", "", lobbyCollection, storageListPageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to list lobbies: %w", err)
		}
		for _, obj := range objects {
			var lobby domain.Lobby
			if err := json.Unmarshal([]byte(obj.GetValue()), &lobby); err != nil {
				return nil, fmt.Errorf("failed to decode lobby %s: %w", obj.GetKey(), err)
			}
			if lobby.Status == domain.LobbyClosed {
				continue
			}
			lobby.Version = obj.GetVersion()
			out = append(out, &lobby)
		}
		if next == "" || next == cursor {
			break
		}
		cursor = next
	}

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

// SaveLobby writes the lobby conditioned on its version.
func (s *NakamaStore) SaveLobby(ctx context.Context, lobby *domain.Lobby) error {
	write, err := storageWrite(lobbyCollection, lobby.ID, lobby.Version, lobby)
	if err != nil {
		return err
	}
	acks, err := s.write(ctx, write)
	if err != nil {
		return err
	}
	lobby.Version = acks[0].GetVersion()
	return nil
}

// LoadGame reads one game object.
func (s *NakamaStore) LoadGame(ctx context.Context, id string) (*domain.Game, error) {
	var game domain.Game
	version, err := s.read(ctx, gameCollection, id, &game)
	if err != nil {
		return nil, err
	}
	game.Version = version
	return &game, nil
}

// SaveGame writes the game conditioned on its version.
func (s *NakamaStore) SaveGame(ctx context.Context, game *domain.Game) error {
	write, err := storageWrite(gameCollection, game.ID, game.Version, game)
	if err != nil {
		return err
	}
	acks, err := s.write(ctx, write)
	if err != nil {
		return err
	}
	game.Version = acks[0].GetVersion()
	return nil
}

// StartGame writes the lobby and the new game in one storage batch, which
// Nakama applies in a single transaction.
func (s *NakamaStore) StartGame(ctx context.Context, lobby *domain.Lobby, game *domain.Game) error {
	lobbyWrite, err := storageWrite(lobbyCollection, lobby.ID, lobby.Version, lobby)
	if err != nil {
		return err
	}
	gameWrite, err := storageWrite(gameCollection, game.ID, game.Version, game)
	if err != nil {
		return err
	}
	acks, err := s.write(ctx, lobbyWrite, gameWrite)
	if err != nil {
		return err
	}
	for _, ack := range acks {
		switch ack.GetCollection() {
		case lobbyCollection:
			lobby.Version = ack.GetVersion()
		case gameCollection:
			game.Version = ack.GetVersion()
		}
	}
	return nil
}

func (s *NakamaStore) read(ctx context.Context, collection, key string, dst any) (string, error) {
	objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{{Collection: collection, Key: key}})
	if err != nil {
		return "", fmt.Errorf("failed to read %s/%s: %w", collection, key, err)
	}
	if len(objects) == 0 {
		return "", ports.ErrNotFound
	}
	if err := json.Unmarshal([]byte(objects[0].GetValue()), dst); err != nil {
		return "", fmt.Errorf("failed to decode %s/%s: %w", collection, key, err)
	}
	return objects[0].GetVersion(), nil
}

func (s *NakamaStore) write(ctx context.Context, writes ...*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	acks, err := s.nk.StorageWrite(ctx, writes)
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return nil, ports.ErrVersionConflict
		}
		return nil, fmt.Errorf("failed to write storage: %w", err)
	}
	if len(acks) != len(writes) {
		return nil, fmt.Errorf("storage acknowledged %d of %d writes", len(acks), len(writes))
	}
	return acks, nil
}

// storageWrite builds a system-owned write. An empty version becomes "*",
// which Nakama treats as create-only.
func storageWrite(collection, key, version string, value any) (*runtime.StorageWrite, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s/%s: %w", collection, key, err)
	}
	if version == "" {
		version = "*"
	}
	return &runtime.StorageWrite{
		Collection:      collection,
		Key:             key,
		Value:           string(data),
		Version:         version,
		PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}, nil
}

var _ ports.Store = (*NakamaStore)(nil)
