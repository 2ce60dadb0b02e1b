package app

import (
	"context"

	"durak/internal/domain"
)

// StartLobby turns an open lobby into a running game. The lobby flip and the
// game creation are written in one store operation.
func (s *Service) StartLobby(ctx context.Context, lobbyID, requesterID string) (*domain.Game, []Event, error) {
	// Names are resolved before taking the lock so the critical section only
	// talks to the store. Anyone who joins in between shows as unknown.
	names, err := s.resolveNames(ctx, lobbyID)
	if err != nil {
		return nil, nil, err
	}

	unlock := s.locks.Lock("lobby:" + lobbyID)
	defer unlock()

	var (
		game   *domain.Game
		events []Event
	)
	err = s.retryOnConflict(func() error {
		lobby, err := s.loadLobby(ctx, lobbyID)
		if err != nil {
			return err
		}
		if lobby.OwnerID != requesterID {
			return ErrNotOwner
		}
		if lobby.Status != domain.LobbyOpen {
			return ErrLobbyNotOpen
		}
		if len(lobby.Players) < s.rules.MinPlayers {
			return ErrTooFewPlayers
		}
		if len(lobby.Players) > s.rules.MaxPlayers {
			return ErrLobbyFull
		}

		game = s.newGame(lobby, names)
		lobby.Status = domain.LobbyInGame
		lobby.CurrentGameID = game.ID
		lobby.UpdatedAt = game.CreatedAt

		if err := s.store.StartGame(ctx, lobby, game); err != nil {
			return saveError("start game", err)
		}

		events = []Event{{
			Kind: EventGameStarted,
			Payload: GameStartedPayload{
				LobbyID:        lobby.ID,
				GameID:         game.ID,
				Players:        lobby.MemberIDs(),
				FirstTurnIndex: game.TurnIndex,
			},
		}}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return game, events, nil
}

func (s *Service) resolveNames(ctx context.Context, lobbyID string) (map[string]string, error) {
	lobby, err := s.loadLobby(ctx, lobbyID)
	if err != nil {
		return nil, err
	}
	if s.users == nil {
		return map[string]string{}, nil
	}
	names, err := s.users.Usernames(ctx, lobby.MemberIDs())
	if err != nil {
		return nil, internalError("resolve usernames", err)
	}
	return names, nil
}

// newGame shuffles a fresh deck and deals zone by zone: every hand first,
// then every open batch, then every hidden batch.
func (s *Service) newGame(lobby *domain.Lobby, names map[string]string) *domain.Game {
	deck := domain.NewDeck()
	s.shuffle(deck)

	players := make([]*domain.PlayerState, len(lobby.Players))
	for i, seat := range lobby.Players {
		username := names[seat.UserID]
		if username == "" {
			username = domain.UnknownUsername
		}
		players[i] = &domain.PlayerState{UserID: seat.UserID, Username: username}
	}

	for _, p := range players {
		p.Hand, deck = domain.DealBatch(deck, s.rules.HandSize)
	}
	for _, p := range players {
		p.Open, deck = domain.DealBatch(deck, setupBatchSize)
	}
	for _, p := range players {
		p.Hidden, deck = domain.DealBatch(deck, setupBatchSize)
	}

	now := s.now()
	return &domain.Game{
		ID:          s.newID(),
		LobbyID:     lobby.ID,
		DrawPile:    deck,
		DiscardPile: []domain.Card{},
		BurnedPile:  []domain.Card{},
		Players:     players,
		TurnIndex:   s.intn(len(players)),
		HandSize:    s.rules.HandSize,
		Status:      domain.GameActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
