package nakama

import (
	"context"
	"database/sql"

	"durak/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

type gameRequest struct {
	GameID  string   `json:"gameId"`
	LobbyID string   `json:"lobbyId"`
	Source  string   `json:"source"`
	CardIDs []string `json:"cardIds"`
	Index   *int     `json:"index"`
}

// RpcGameGet returns the caller's view of a game.
// Payload: {"gameId": "..."}.
func (h *Handlers) RpcGameGet(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, req, err := gameCall(ctx, payload)
	if err != nil {
		return "", err
	}
	view, err := h.svc.GetView(ctx, req.GameID, userID)
	if err != nil {
		return "", toRuntimeError(logger, RpcGameGet, userID, err)
	}
	return respond(logger, view)
}

// RpcGameByLobby returns the id of the game a lobby started.
// Payload: {"lobbyId": "..."}. Returns {"gameId": "..."}.
func (h *Handlers) RpcGameByLobby(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, req, err := lobbyCall(ctx, payload)
	if err != nil {
		return "", err
	}
	gameID, err := h.svc.GameForLobby(ctx, req.LobbyID)
	if err != nil {
		return "", toRuntimeError(logger, RpcGameByLobby, userID, err)
	}
	return respond(logger, GameIDResponse{GameID: gameID})
}

// RpcGamePlay plays cards from the caller's hand or open zone, or the
// revealed hidden card.
// Payload: {"gameId": "...", "source": "hand"|"open"|"hidden", "cardIds": ["10H", ...]}.
func (h *Handlers) RpcGamePlay(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, req, err := gameCall(ctx, payload)
	if err != nil {
		return "", err
	}
	view, events, err := h.svc.Play(ctx, req.GameID, userID, domain.Phase(req.Source), req.CardIDs)
	if err != nil {
		return "", toRuntimeError(logger, RpcGamePlay, userID, err)
	}
	logEvents(logger, RpcGamePlay, events)
	return respond(logger, view)
}

// RpcGameTake picks up the discard pile.
// Payload: {"gameId": "..."}.
func (h *Handlers) RpcGameTake(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, req, err := gameCall(ctx, payload)
	if err != nil {
		return "", err
	}
	view, events, err := h.svc.TakeStack(ctx, req.GameID, userID)
	if err != nil {
		return "", toRuntimeError(logger, RpcGameTake, userID, err)
	}
	logEvents(logger, RpcGameTake, events)
	return respond(logger, view)
}

// RpcGameReveal turns over one hidden card.
// Payload: {"gameId": "...", "index": 0}.
func (h *Handlers) RpcGameReveal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, req, err := gameCall(ctx, payload)
	if err != nil {
		return "", err
	}
	if req.Index == nil {
		return "", runtime.NewError("index is required", codeInvalidArgument)
	}
	view, events, err := h.svc.RevealHidden(ctx, req.GameID, userID, *req.Index)
	if err != nil {
		return "", toRuntimeError(logger, RpcGameReveal, userID, err)
	}
	logEvents(logger, RpcGameReveal, events)
	return respond(logger, view)
}

func gameCall(ctx context.Context, payload string) (string, gameRequest, error) {
	var req gameRequest
	userID, err := callerID(ctx)
	if err != nil {
		return "", req, err
	}
	if err := decodePayload(payload, &req); err != nil {
		return "", req, err
	}
	if err := requireField(req.GameID, "gameId"); err != nil {
		return "", req, err
	}
	return userID, req, nil
}
