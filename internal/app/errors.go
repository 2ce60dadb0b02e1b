package app

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the request layer.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindInvalidState Kind = "invalid_state"
	KindInvalidMove  Kind = "invalid_move"
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

// Error is a classified failure with a message fit for players.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind. A target with a message only
// matches that exact message, so both errors.Is(err, ErrNotYourTurn) and
// errors.Is(err, &Error{Kind: KindInvalidState}) work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrLobbyNotFound  = &Error{Kind: KindNotFound, Message: "lobby not found"}
	ErrGameNotFound   = &Error{Kind: KindNotFound, Message: "game not found"}
	ErrNoGameForLobby = &Error{Kind: KindNotFound, Message: "no running game for this lobby"}

	ErrNotOwner       = &Error{Kind: KindForbidden, Message: "only the lobby owner may do this"}
	ErrNotParticipant = &Error{Kind: KindForbidden, Message: "you are not playing in this game"}

	ErrLobbyNotOpen    = &Error{Kind: KindInvalidState, Message: "lobby is not open"}
	ErrLobbyFull       = &Error{Kind: KindInvalidState, Message: "lobby is full"}
	ErrTooFewPlayers   = &Error{Kind: KindInvalidState, Message: "not enough players to start"}
	ErrGameEnded       = &Error{Kind: KindInvalidState, Message: "game has ended"}
	ErrNotYourTurn     = &Error{Kind: KindInvalidState, Message: "not your turn"}
	ErrWrongPhase      = &Error{Kind: KindInvalidState, Message: "wrong phase"}
	ErrAlreadyRevealed = &Error{Kind: KindInvalidState, Message: "a hidden card is already revealed this turn"}

	ErrNoCardsSelected    = &Error{Kind: KindInvalidMove, Message: "no cards selected"}
	ErrDuplicateCard      = &Error{Kind: KindInvalidMove, Message: "the same card was selected twice"}
	ErrMixedRanks         = &Error{Kind: KindInvalidMove, Message: "all cards played must share one rank"}
	ErrCannotBeat         = &Error{Kind: KindInvalidMove, Message: "these cards cannot go on the pile"}
	ErrRevealRequired     = &Error{Kind: KindInvalidMove, Message: "reveal a hidden card first"}
	ErrInvalidHiddenIndex = &Error{Kind: KindInvalidMove, Message: "invalid hidden card index"}

	ErrEmptyLobbyName = &Error{Kind: KindValidation, Message: "lobby name is required"}
	ErrUnknownSource  = &Error{Kind: KindValidation, Message: "unknown card source"}

	ErrConflict = &Error{Kind: KindConflict, Message: "state changed concurrently, retry"}
)

func cardNotInZone(id, zone string) error {
	return &Error{Kind: KindInvalidMove, Message: fmt.Sprintf("card %s is not in your %s", id, zone)}
}

func internalError(op string, err error) error {
	return &Error{Kind: KindInternal, Message: op, Err: err}
}
