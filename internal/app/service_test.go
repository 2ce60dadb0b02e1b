package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"durak/internal/domain"
	"durak/internal/ports"
	"durak/internal/ports/memory"
)

type fakeUsers map[string]string

func (f fakeUsers) Usernames(_ context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if name, ok := f[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

// conflictStore fails the next n game saves with a version conflict.
type conflictStore struct {
	*memory.Store

	mu        sync.Mutex
	conflicts int
	saves     int
}

func (c *conflictStore) SaveGame(ctx context.Context, game *domain.Game) error {
	c.mu.Lock()
	c.saves++
	if c.conflicts > 0 {
		c.conflicts--
		c.mu.Unlock()
		return ports.ErrVersionConflict
	}
	c.mu.Unlock()
	return c.Store.SaveGame(ctx, game)
}

func newTestService(t *testing.T, store ports.Store) *Service {
	t.Helper()
	if store == nil {
		store = memory.NewStore()
	}
	users := fakeUsers{"owner": "alice", "u2": "bob", "u3": "carol"}
	return NewService(store, users, rand.New(rand.NewSource(7)), DefaultRules())
}

func mustLobby(t *testing.T, svc *Service, members ...string) *domain.Lobby {
	t.Helper()
	ctx := context.Background()
	lobby, _, err := svc.CreateLobby(ctx, members[0], "table")
	if err != nil {
		t.Fatalf("create lobby: %v", err)
	}
	for _, m := range members[1:] {
		if lobby, _, err = svc.JoinLobby(ctx, lobby.ID, m); err != nil {
			t.Fatalf("join %s: %v", m, err)
		}
	}
	return lobby
}

func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("error kind = %s, want %s (%v)", got, kind, err)
	}
}

func TestCreateLobbySeatsOwner(t *testing.T) {
	svc := newTestService(t, nil)
	lobby, evs, err := svc.CreateLobby(context.Background(), "owner", "  friday night  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lobby.Name != "friday night" || lobby.Status != domain.LobbyOpen {
		t.Fatalf("lobby = %+v", lobby)
	}
	if len(lobby.Players) != 1 || lobby.Players[0].UserID != "owner" || lobby.Players[0].Seat != 0 {
		t.Fatalf("players = %+v, want owner at seat 0", lobby.Players)
	}
	if len(evs) != 1 || evs[0].Kind != EventLobbyCreated {
		t.Fatalf("events = %+v", evs)
	}

	_, _, err = svc.CreateLobby(context.Background(), "owner", "   ")
	wantKind(t, err, KindValidation)
}

func TestJoinLobby(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	lobby := mustLobby(t, svc, "owner", "u2")

	again, evs, err := svc.JoinLobby(ctx, lobby.ID, "u2")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if len(again.Players) != 2 || len(evs) != 0 {
		t.Fatalf("rejoin changed lobby: players=%d events=%d", len(again.Players), len(evs))
	}

	_, _, err = svc.JoinLobby(ctx, "missing", "u3")
	wantKind(t, err, KindNotFound)

	for i := 3; i <= MaxPlayersPerGame; i++ {
		if _, _, err := svc.JoinLobby(ctx, lobby.ID, fmt.Sprintf("p%d", i)); err != nil {
			t.Fatalf("join p%d: %v", i, err)
		}
	}
	_, _, err = svc.JoinLobby(ctx, lobby.ID, "late")
	if !errors.Is(err, ErrLobbyFull) {
		t.Fatalf("join full lobby err = %v, want lobby full", err)
	}
}

func TestLeaveLobby(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	lobby := mustLobby(t, svc, "owner", "u2", "u3")

	res, _, err := svc.LeaveLobby(ctx, lobby.ID, "u2")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if res.PlayersRemoved != 1 || res.Lobby.Status != domain.LobbyOpen {
		t.Fatalf("result = %+v", res)
	}
	if res.Lobby.Players[1].UserID != "u3" || res.Lobby.Players[1].Seat != 1 {
		t.Fatalf("seats not renumbered: %+v", res.Lobby.Players)
	}

	res, _, err = svc.LeaveLobby(ctx, lobby.ID, "stranger")
	if err != nil || res.PlayersRemoved != 0 {
		t.Fatalf("non-member leave = %+v, %v", res, err)
	}

	res, evs, err := svc.LeaveLobby(ctx, lobby.ID, "owner")
	if err != nil {
		t.Fatalf("owner leave: %v", err)
	}
	if res.Lobby.Status != domain.LobbyClosed {
		t.Fatalf("status = %s, want closed", res.Lobby.Status)
	}
	if len(evs) != 2 || evs[1].Kind != EventLobbyClosed {
		t.Fatalf("events = %+v", evs)
	}

	_, _, err = svc.JoinLobby(ctx, lobby.ID, "u2")
	if !errors.Is(err, ErrLobbyNotOpen) {
		t.Fatalf("join closed err = %v", err)
	}
}

func TestCloseLobby(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	lobby := mustLobby(t, svc, "owner", "u2")

	_, _, err := svc.CloseLobby(ctx, lobby.ID, "u2")
	wantKind(t, err, KindForbidden)

	closed, _, err := svc.CloseLobby(ctx, lobby.ID, "owner")
	if err != nil || closed.Status != domain.LobbyClosed {
		t.Fatalf("close = %+v, %v", closed, err)
	}
	if _, evs, err := svc.CloseLobby(ctx, lobby.ID, "owner"); err != nil || len(evs) != 0 {
		t.Fatalf("second close = %v, %v", evs, err)
	}

	got, err := svc.GetLobby(ctx, lobby.ID)
	if err != nil || got.Status != domain.LobbyClosed {
		t.Fatalf("closed lobby must stay readable: %+v, %v", got, err)
	}
	list, err := svc.ListLobbies(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("closed lobby listed: %+v", list)
	}
}

func TestStartLobby(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	solo := mustLobby(t, svc, "owner")
	_, _, err := svc.StartLobby(ctx, solo.ID, "owner")
	if !errors.Is(err, ErrTooFewPlayers) {
		t.Fatalf("start solo err = %v", err)
	}

	lobby := mustLobby(t, svc, "owner", "u2", "u3")
	_, _, err = svc.StartLobby(ctx, lobby.ID, "u2")
	wantKind(t, err, KindForbidden)

	game, evs, err := svc.StartLobby(ctx, lobby.ID, "owner")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(evs) != 1 || evs[0].Kind != EventGameStarted {
		t.Fatalf("events = %+v", evs)
	}
	if got, want := len(game.DrawPile), domain.DeckSize-9*3; got != want {
		t.Fatalf("draw pile = %d, want %d", got, want)
	}
	if game.CardCount() != domain.DeckSize {
		t.Fatalf("card count = %d", game.CardCount())
	}
	for _, p := range game.Players {
		if len(p.Hand) != 3 || len(p.Open) != 3 || len(p.Hidden) != 3 {
			t.Fatalf("player %s zones = %d/%d/%d", p.UserID, len(p.Hand), len(p.Open), len(p.Hidden))
		}
	}
	if game.Players[1].Username != "bob" {
		t.Fatalf("username = %q, want bob", game.Players[1].Username)
	}
	if game.TurnIndex < 0 || game.TurnIndex >= 3 {
		t.Fatalf("turn index = %d", game.TurnIndex)
	}

	stored, err := svc.GetLobby(ctx, lobby.ID)
	if err != nil {
		t.Fatalf("get lobby: %v", err)
	}
	if stored.Status != domain.LobbyInGame || stored.CurrentGameID != game.ID {
		t.Fatalf("lobby after start = %+v", stored)
	}
	gameID, err := svc.GameForLobby(ctx, lobby.ID)
	if err != nil || gameID != game.ID {
		t.Fatalf("game for lobby = %q, %v", gameID, err)
	}

	_, _, err = svc.StartLobby(ctx, lobby.ID, "owner")
	if !errors.Is(err, ErrLobbyNotOpen) {
		t.Fatalf("second start err = %v", err)
	}
	_, _, err = svc.JoinLobby(ctx, lobby.ID, "late")
	wantKind(t, err, KindInvalidState)

	_, err = svc.GameForLobby(ctx, solo.ID)
	wantKind(t, err, KindNotFound)
}

func TestStartLobbyUnknownUsername(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	lobby := mustLobby(t, svc, "owner", "nameless")

	game, _, err := svc.StartLobby(ctx, lobby.ID, "owner")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if game.Players[1].Username != domain.UnknownUsername {
		t.Fatalf("username = %q, want %q", game.Players[1].Username, domain.UnknownUsername)
	}
}

func TestConcurrentJoinsAllLand(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	lobby := mustLobby(t, svc, "owner")

	var wg sync.WaitGroup
	for i := 0; i < MaxPlayersPerGame-1; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, _, err := svc.JoinLobby(ctx, lobby.ID, fmt.Sprintf("p%d", i)); err != nil {
				t.Errorf("join p%d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := svc.GetLobby(ctx, lobby.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Players) != MaxPlayersPerGame {
		t.Fatalf("players = %d, want %d", len(got.Players), MaxPlayersPerGame)
	}
	for i, seat := range got.Players {
		if seat.Seat != i {
			t.Fatalf("seat %d has index %d", i, seat.Seat)
		}
	}
}

func TestGameSaveRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	store := &conflictStore{Store: memory.NewStore()}
	svc := newTestService(t, store)
	lobby := mustLobby(t, svc, "owner", "u2")
	game, _, err := svc.StartLobby(ctx, lobby.ID, "owner")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	current := game.Players[game.TurnIndex].UserID

	store.conflicts = 2
	view, _, err := svc.TakeStack(ctx, game.ID, current)
	if err != nil {
		t.Fatalf("take after conflicts: %v", err)
	}
	if view.TurnIndex == game.TurnIndex {
		t.Fatal("turn did not advance")
	}
	if store.saves != 3 {
		t.Fatalf("saves = %d, want 3", store.saves)
	}

	next := game.Players[view.TurnIndex].UserID
	store.conflicts = DefaultConflictRetries + 1
	_, _, err = svc.TakeStack(ctx, game.ID, next)
	wantKind(t, err, KindConflict)

	after, err := svc.GetView(ctx, game.ID, next)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if after.TurnIndex != view.TurnIndex {
		t.Fatal("failed action must not change the stored game")
	}
}
