package app

import (
	"context"
	"fmt"

	"durak/internal/domain"
)

// GetView returns the game as seen by userID.
func (s *Service) GetView(ctx context.Context, gameID, userID string) (*domain.GameView, error) {
	game, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	view, ok := domain.ProjectView(game, userID)
	if !ok {
		return nil, ErrNotParticipant
	}
	return view, nil
}

// Play plays cards from source. For the hidden source the previously
// revealed card is played and cardIDs is ignored.
func (s *Service) Play(ctx context.Context, gameID, userID string, source domain.Phase, cardIDs []string) (*domain.GameView, []Event, error) {
	return s.mutateGame(ctx, gameID, userID, func(g *domain.Game) ([]Event, error) {
		return s.PlayCards(g, userID, source, cardIDs)
	})
}

// TakeStack picks up the discard pile.
func (s *Service) TakeStack(ctx context.Context, gameID, userID string) (*domain.GameView, []Event, error) {
	return s.mutateGame(ctx, gameID, userID, func(g *domain.Game) ([]Event, error) {
		return s.PickUpStack(g, userID)
	})
}

// RevealHidden turns over one hidden card without ending the turn.
func (s *Service) RevealHidden(ctx context.Context, gameID, userID string, index int) (*domain.GameView, []Event, error) {
	return s.mutateGame(ctx, gameID, userID, func(g *domain.Game) ([]Event, error) {
		return s.RevealCard(g, userID, index)
	})
}

// mutateGame applies fn to a fresh copy of the game under the game's lock and
// saves it. A failed fn leaves the stored game untouched.
func (s *Service) mutateGame(ctx context.Context, gameID, userID string, fn func(*domain.Game) ([]Event, error)) (*domain.GameView, []Event, error) {
	unlock := s.locks.Lock("game:" + gameID)
	defer unlock()

	var (
		view   *domain.GameView
		events []Event
	)
	err := s.retryOnConflict(func() error {
		game, err := s.loadGame(ctx, gameID)
		if err != nil {
			return err
		}
		events, err = fn(game)
		if err != nil {
			return err
		}
		game.UpdatedAt = s.now()
		if err := s.store.SaveGame(ctx, game); err != nil {
			return saveError("save game", err)
		}
		view, _ = domain.ProjectView(game, userID)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return view, events, nil
}

// PlayCards validates and applies a play on game. Every check runs before the
// first mutation, so a rejected play leaves game unchanged.
func (s *Service) PlayCards(game *domain.Game, userID string, source domain.Phase, cardIDs []string) ([]Event, error) {
	pl, err := actingPlayer(game, userID)
	if err != nil {
		return nil, err
	}
	if !source.Valid() {
		return nil, ErrUnknownSource
	}
	if source != pl.Phase() {
		return nil, ErrWrongPhase
	}

	if source == domain.PhaseHidden {
		return s.playHidden(game, pl)
	}

	toPlay, err := resolveCards(pl.Zone(source), cardIDs, string(source))
	if err != nil {
		return nil, err
	}
	if !domain.AllSameRank(toPlay) {
		return nil, ErrMixedRanks
	}
	if !domain.CanBeatAll(game.Top(), toPlay) {
		return nil, ErrCannotBeat
	}

	game.DiscardPile = append(game.DiscardPile, toPlay...)
	pl.SetZone(source, domain.RemoveCards(pl.Zone(source), toPlay))

	events := []Event{{
		Kind:    EventCardsPlayed,
		Payload: CardsPlayedPayload{UserID: userID, Source: source, Cards: toPlay},
	}}
	events = append(events, burnCheck(game)...)
	events = append(events, endTurn(game, pl)...)
	return events, nil
}

// playHidden resolves a previously revealed hidden card. A card that cannot
// beat the pile goes to the hand and ends the turn without a burn check.
func (s *Service) playHidden(game *domain.Game, pl *domain.PlayerState) ([]Event, error) {
	if pl.RevealedHidden == nil {
		return nil, ErrRevealRequired
	}
	c := *pl.RevealedHidden
	pl.Hidden = domain.RemoveCards(pl.Hidden, []domain.Card{c})
	pl.RevealedHidden = nil

	if !domain.CanBeat(game.Top(), c) {
		pl.Hand = append(pl.Hand, c)
		game.LastEventMessage = ""
		events := []Event{{Kind: EventHiddenFailed, Payload: HiddenPayload{UserID: pl.UserID, Card: c}}}
		return append(events, endTurn(game, pl)...), nil
	}

	game.DiscardPile = append(game.DiscardPile, c)
	events := []Event{{
		Kind:    EventCardsPlayed,
		Payload: CardsPlayedPayload{UserID: pl.UserID, Source: domain.PhaseHidden, Cards: []domain.Card{c}},
	}}
	events = append(events, burnCheck(game)...)
	return append(events, endTurn(game, pl)...), nil
}

// PickUpStack moves the discard pile, and any pending revealed card, into the
// player's hand. It is legal in every phase.
func (s *Service) PickUpStack(game *domain.Game, userID string) ([]Event, error) {
	pl, err := actingPlayer(game, userID)
	if err != nil {
		return nil, err
	}

	taken := len(game.DiscardPile)
	pl.Hand = append(pl.Hand, game.DiscardPile...)
	game.DiscardPile = []domain.Card{}

	if pl.RevealedHidden != nil {
		c := *pl.RevealedHidden
		pl.Hidden = domain.RemoveCards(pl.Hidden, []domain.Card{c})
		pl.Hand = append(pl.Hand, c)
		pl.RevealedHidden = nil
		taken++
	}
	game.LastEventMessage = ""

	events := []Event{{Kind: EventStackTaken, Payload: StackTakenPayload{UserID: userID, Count: taken}}}
	return append(events, endTurn(game, pl)...), nil
}

// RevealCard marks the hidden card at index as revealed. Only one card may be
// revealed per turn.
func (s *Service) RevealCard(game *domain.Game, userID string, index int) ([]Event, error) {
	pl, err := actingPlayer(game, userID)
	if err != nil {
		return nil, err
	}
	if pl.Phase() != domain.PhaseHidden {
		return nil, ErrWrongPhase
	}
	if pl.RevealedHidden != nil {
		return nil, ErrAlreadyRevealed
	}
	if index < 0 || index >= len(pl.Hidden) {
		return nil, ErrInvalidHiddenIndex
	}

	c := pl.Hidden[index]
	pl.RevealedHidden = &c
	return []Event{{Kind: EventHiddenRevealed, Payload: HiddenPayload{UserID: userID, Card: c}}}, nil
}

// actingPlayer applies the participant, status and turn gates.
func actingPlayer(game *domain.Game, userID string) (*domain.PlayerState, error) {
	idx := game.PlayerIndex(userID)
	if idx < 0 {
		return nil, ErrNotParticipant
	}
	if game.Status == domain.GameEnded {
		return nil, ErrGameEnded
	}
	if idx != game.TurnIndex {
		return nil, ErrNotYourTurn
	}
	return game.Players[idx], nil
}

// resolveCards looks up every id in zone. Unknown and repeated ids are rejected.
func resolveCards(zone []domain.Card, ids []string, zoneName string) ([]domain.Card, error) {
	if len(ids) == 0 {
		return nil, ErrNoCardsSelected
	}
	seen := make(map[string]bool, len(ids))
	out := make([]domain.Card, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, ErrDuplicateCard
		}
		seen[id] = true
		i := domain.IndexOfCard(zone, id)
		if i < 0 {
			return nil, cardNotInZone(id, zoneName)
		}
		out = append(out, zone[i])
	}
	return out, nil
}

// burnCheck burns the discard pile on a ten or four of a kind and sets the
// event message; otherwise it clears the message.
func burnCheck(game *domain.Game) []Event {
	reason := domain.BurnTrigger(game.DiscardPile)
	if reason == domain.NoBurn {
		game.LastEventMessage = ""
		return nil
	}
	count := game.BurnDiscard()
	game.LastEventMessage = reason.Message()
	return []Event{{Kind: EventPileBurned, Payload: PileBurnedPayload{Reason: reason, Count: count}}}
}

// endTurn draws the player back up, settles finished players, passes the
// turn to the next unfinished player and ends the game when one is left.
func endTurn(game *domain.Game, pl *domain.PlayerState) []Event {
	var events []Event

	game.DrawUp(pl)
	for _, userID := range game.MarkFinished() {
		events = append(events, Event{Kind: EventPlayerFinished, Payload: PlayerFinishedPayload{UserID: userID}})
	}
	game.AdvanceTurn()

	remaining := game.Unfinished()
	if len(remaining) == 1 {
		loser := remaining[0]
		game.Status = domain.GameEnded
		game.TurnIndex = game.PlayerIndex(loser.UserID)
		game.LastEventMessage = fmt.Sprintf("Congratulations everyone: %s is the Durak!", loser.Username)
		events = append(events, Event{
			Kind:    EventGameEnded,
			Payload: GameEndedPayload{LoserUserID: loser.UserID, LoserUsername: loser.Username},
		})
	}
	return events
}
