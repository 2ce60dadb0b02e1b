package app

import (
	"context"
	"strings"

	"durak/internal/domain"
)

// LeaveResult reports the outcome of LeaveLobby.
type LeaveResult struct {
	Lobby          *domain.Lobby
	PlayersRemoved int
}

// CreateLobby opens a new lobby owned by ownerID, who takes seat 0.
func (s *Service) CreateLobby(ctx context.Context, ownerID, name string) (*domain.Lobby, []Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, ErrEmptyLobbyName
	}

	lobby := domain.NewLobby(s.newID(), name, ownerID, s.now())
	if err := s.store.SaveLobby(ctx, lobby); err != nil {
		return nil, nil, internalError("create lobby", err)
	}

	return lobby, []Event{{
		Kind:    EventLobbyCreated,
		Payload: LobbyPayload{LobbyID: lobby.ID, UserID: ownerID},
	}}, nil
}

// ListLobbies returns lobbies that are not closed, newest first.
func (s *Service) ListLobbies(ctx context.Context) ([]*domain.Lobby, error) {
	lobbies, err := s.store.ListLobbies(ctx, s.rules.LobbyListLimit)
	if err != nil {
		return nil, internalError("list lobbies", err)
	}
	return lobbies, nil
}

// GetLobby returns one lobby, closed lobbies included.
func (s *Service) GetLobby(ctx context.Context, lobbyID string) (*domain.Lobby, error) {
	return s.loadLobby(ctx, lobbyID)
}

// JoinLobby seats userID at the next seat. Joining twice is a no-op.
func (s *Service) JoinLobby(ctx context.Context, lobbyID, userID string) (*domain.Lobby, []Event, error) {
	var (
		lobby  *domain.Lobby
		events []Event
	)
	err := s.mutateLobby(ctx, lobbyID, func(l *domain.Lobby) (bool, error) {
		lobby, events = l, nil
		if l.IsMember(userID) {
			return false, nil
		}
		if l.Status != domain.LobbyOpen {
			return false, ErrLobbyNotOpen
		}
		if len(l.Players) >= s.rules.MaxPlayers {
			return false, ErrLobbyFull
		}
		l.AddMember(userID)
		events = []Event{{Kind: EventPlayerJoined, Payload: LobbyPayload{LobbyID: l.ID, UserID: userID}}}
		return true, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return lobby, events, nil
}

// LeaveLobby removes userID and renumbers seats. The owner leaving closes
// the lobby, whoever else is still seated.
func (s *Service) LeaveLobby(ctx context.Context, lobbyID, userID string) (LeaveResult, []Event, error) {
	var (
		result LeaveResult
		events []Event
	)
	err := s.mutateLobby(ctx, lobbyID, func(l *domain.Lobby) (bool, error) {
		result, events = LeaveResult{Lobby: l}, nil

		result.PlayersRemoved = l.RemoveMember(userID)
		changed := result.PlayersRemoved > 0
		if changed {
			events = append(events, Event{Kind: EventPlayerLeft, Payload: LobbyPayload{LobbyID: l.ID, UserID: userID}})
		}
		if l.OwnerID == userID && l.Status != domain.LobbyClosed {
			l.Status = domain.LobbyClosed
			changed = true
			events = append(events, Event{Kind: EventLobbyClosed, Payload: LobbyPayload{LobbyID: l.ID, UserID: userID}})
		}
		return changed, nil
	})
	if err != nil {
		return LeaveResult{}, nil, err
	}
	return result, events, nil
}

// CloseLobby soft-deletes the lobby. Only the owner may close it.
func (s *Service) CloseLobby(ctx context.Context, lobbyID, requesterID string) (*domain.Lobby, []Event, error) {
	var (
		lobby  *domain.Lobby
		events []Event
	)
	err := s.mutateLobby(ctx, lobbyID, func(l *domain.Lobby) (bool, error) {
		lobby, events = l, nil
		if l.OwnerID != requesterID {
			return false, ErrNotOwner
		}
		if l.Status == domain.LobbyClosed {
			return false, nil
		}
		l.Status = domain.LobbyClosed
		events = []Event{{Kind: EventLobbyClosed, Payload: LobbyPayload{LobbyID: l.ID, UserID: requesterID}}}
		return true, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return lobby, events, nil
}

// GameForLobby returns the id of the game a lobby started.
func (s *Service) GameForLobby(ctx context.Context, lobbyID string) (string, error) {
	lobby, err := s.loadLobby(ctx, lobbyID)
	if err != nil {
		return "", err
	}
	if lobby.CurrentGameID == "" {
		return "", ErrNoGameForLobby
	}
	return lobby.CurrentGameID, nil
}

// mutateLobby runs fn against a fresh copy of the lobby under the lobby's
// lock and saves it when fn reports a change. Version conflicts re-run fn.
func (s *Service) mutateLobby(ctx context.Context, lobbyID string, fn func(*domain.Lobby) (bool, error)) error {
	unlock := s.locks.Lock("lobby:" + lobbyID)
	defer unlock()

	return s.retryOnConflict(func() error {
		lobby, err := s.loadLobby(ctx, lobbyID)
		if err != nil {
			return err
		}
		changed, err := fn(lobby)
		if err != nil || !changed {
			return err
		}
		lobby.UpdatedAt = s.now()
		return saveError("save lobby", s.store.SaveLobby(ctx, lobby))
	})
}
