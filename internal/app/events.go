package app

import "durak/internal/domain"

// EventKind identifies emitted domain events. The request layer logs them.
type EventKind string

const (
	EventLobbyCreated   EventKind = "lobby_created"
	EventPlayerJoined   EventKind = "player_joined"
	EventPlayerLeft     EventKind = "player_left"
	EventLobbyClosed    EventKind = "lobby_closed"
	EventGameStarted    EventKind = "game_started"
	EventCardsPlayed    EventKind = "cards_played"
	EventPileBurned     EventKind = "pile_burned"
	EventStackTaken     EventKind = "stack_taken"
	EventHiddenRevealed EventKind = "hidden_revealed"
	EventHiddenFailed   EventKind = "hidden_failed"
	EventPlayerFinished EventKind = "player_finished"
	EventGameEnded      EventKind = "game_ended"
)

// Event is a domain/app event describing one state change.
type Event struct {
	Kind    EventKind
	Payload any
}

type LobbyPayload struct {
	LobbyID string
	UserID  string
}

type GameStartedPayload struct {
	LobbyID        string
	GameID         string
	Players        []string
	FirstTurnIndex int
}

type CardsPlayedPayload struct {
	UserID string
	Source domain.Phase
	Cards  []domain.Card
}

type PileBurnedPayload struct {
	Reason domain.BurnReason
	Count  int
}

type StackTakenPayload struct {
	UserID string
	Count  int
}

type HiddenPayload struct {
	UserID string
	Card   domain.Card
}

type PlayerFinishedPayload struct {
	UserID string
}

type GameEndedPayload struct {
	LoserUserID   string
	LoserUsername string
}
