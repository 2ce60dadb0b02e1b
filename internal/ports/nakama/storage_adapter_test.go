package nakama

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"durak/internal/domain"
	"durak/internal/ports"
)

func TestNakamaStoreLobbyVersions(t *testing.T) {
	ctx := context.Background()
	store := NewNakamaStore(newFakeNakama())

	lobby := domain.NewLobby("l1", "table", "owner", time.Unix(1, 0))
	if err := store.SaveLobby(ctx, lobby); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.SaveLobby(ctx, domain.NewLobby("l1", "dup", "owner", time.Unix(1, 0))); !errors.Is(err, ports.ErrVersionConflict) {
		t.Fatalf("duplicate create err = %v", err)
	}

	a, _ := store.LoadLobby(ctx, "l1")
	b, _ := store.LoadLobby(ctx, "l1")
	a.AddMember("u2")
	if err := store.SaveLobby(ctx, a); err != nil {
		t.Fatalf("save: %v", err)
	}
	b.Name = "stale"
	if err := store.SaveLobby(ctx, b); !errors.Is(err, ports.ErrVersionConflict) {
		t.Fatalf("stale save err = %v", err)
	}

	if _, err := store.LoadLobby(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}

func TestNakamaStoreListLobbiesFollowsCursor(t *testing.T) {
	ctx := context.Background()
	store := NewNakamaStore(newFakeNakama())

	for i := 0; i < 5; i++ {
		l := domain.NewLobby(fmt.Sprintf("l%d", i), "t", "owner", time.Unix(int64(i), 0))
		if i == 2 {
			l.Status = domain.LobbyClosed
		}
		if err := store.SaveLobby(ctx, l); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	list, err := store.ListLobbies(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []string
	for _, l := range list {
		got = append(got, l.ID)
	}
	if fmt.Sprint(got) != "[l4 l3 l1]" {
		t.Fatalf("list = %v, want [l4 l3 l1]", got)
	}
}

func TestNakamaStoreStartGameIsOneBatch(t *testing.T) {
	ctx := context.Background()
	store := NewNakamaStore(newFakeNakama())

	lobby := domain.NewLobby("l1", "table", "owner", time.Unix(1, 0))
	if err := store.SaveLobby(ctx, lobby); err != nil {
		t.Fatalf("create: %v", err)
	}
	stale := lobby.Clone()
	lobby.AddMember("u2")
	if err := store.SaveLobby(ctx, lobby); err != nil {
		t.Fatalf("bump: %v", err)
	}

	game := &domain.Game{ID: "g1", LobbyID: "l1", Status: domain.GameActive}
	if err := store.StartGame(ctx, stale, game); !errors.Is(err, ports.ErrVersionConflict) {
		t.Fatalf("start err = %v", err)
	}
	if _, err := store.LoadGame(ctx, "g1"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("game written despite conflict: %v", err)
	}

	lobby.Status = domain.LobbyInGame
	lobby.CurrentGameID = "g1"
	if err := store.StartGame(ctx, lobby, game); err != nil {
		t.Fatalf("start: %v", err)
	}
	if game.Version == "" || lobby.Version == "" {
		t.Fatalf("versions not set: lobby=%q game=%q", lobby.Version, game.Version)
	}

	loaded, err := store.LoadGame(ctx, "g1")
	if err != nil || loaded.LobbyID != "l1" || loaded.Version != game.Version {
		t.Fatalf("loaded = %+v, %v", loaded, err)
	}
}

func TestNakamaStoreWriteFailure(t *testing.T) {
	nk := newFakeNakama()
	nk.writeErr = errors.New("db down")
	store := NewNakamaStore(nk)

	err := store.SaveGame(context.Background(), &domain.Game{ID: "g1"})
	if err == nil || errors.Is(err, ports.ErrVersionConflict) {
		t.Fatalf("err = %v, want plain failure", err)
	}
}
