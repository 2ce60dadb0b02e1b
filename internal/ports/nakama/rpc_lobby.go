package nakama

import (
	"context"
	"database/sql"

	"durak/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

type lobbyRequest struct {
	LobbyID string `json:"lobbyId"`
	Name    string `json:"name"`
}

// LobbyListResponse is returned by lobby_list.
type LobbyListResponse struct {
	Lobbies []*domain.Lobby `json:"lobbies"`
}

// LobbyLeaveResponse is returned by lobby_leave.
type LobbyLeaveResponse struct {
	OK             bool               `json:"ok"`
	PlayersRemoved int                `json:"playersRemoved"`
	Status         domain.LobbyStatus `json:"status"`
}

// OKResponse acknowledges an action with no other result.
type OKResponse struct {
	OK bool `json:"ok"`
}

// GameIDResponse carries the id of a started game.
type GameIDResponse struct {
	GameID string `json:"gameId"`
}

// RpcLobbyCreate opens a lobby owned by the caller.
// Payload: {"name": "..."}. Returns the lobby.
func (h *Handlers) RpcLobbyCreate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	var req lobbyRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}

	lobby, events, err := h.svc.CreateLobby(ctx, userID, req.Name)
	if err != nil {
		return "", toRuntimeError(logger, RpcLobbyCreate, userID, err)
	}
	logEvents(logger, RpcLobbyCreate, events)
	logger.Info("RpcLobbyCreate [User:%s]: Created lobby %s", userID, lobby.ID)
	return respond(logger, lobby)
}

// RpcLobbyList returns every lobby that is not closed, newest first.
func (h *Handlers) RpcLobbyList(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	lobbies, err := h.svc.ListLobbies(ctx)
	if err != nil {
		return "", toRuntimeError(logger, RpcLobbyList, userID, err)
	}
	if lobbies == nil {
		lobbies = []*domain.Lobby{}
	}
	return respond(logger, LobbyListResponse{Lobbies: lobbies})
}

// RpcLobbyGet returns one lobby, closed lobbies included.
// Payload: {"lobbyId": "..."}.
func (h *Handlers) RpcLobbyGet(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, req, err := lobbyCall(ctx, payload)
	if err != nil {
		return "", err
	}
	lobby, err := h.svc.GetLobby(ctx, req.LobbyID)
	if err != nil {
		return "", toRuntimeError(logger, RpcLobbyGet, userID, err)
	}
	return respond(logger, lobby)
}

// RpcLobbyJoin seats the caller. Joining a lobby twice is a no-op.
// Payload: {"lobbyId": "..."}. Returns the lobby.
func (h *Handlers) RpcLobbyJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, req, err := lobbyCall(ctx, payload)
	if err != nil {
		return "", err
	}
	lobby, events, err := h.svc.JoinLobby(ctx, req.LobbyID, userID)
	if err != nil {
		return "", toRuntimeError(logger, RpcLobbyJoin, userID, err)
	}
	logEvents(logger, RpcLobbyJoin, events)
	return respond(logger, lobby)
}

// RpcLobbyLeave removes the caller. The owner leaving closes the lobby.
// Payload: {"lobbyId": "..."}.
func (h *Handlers) RpcLobbyLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, req, err := lobbyCall(ctx, payload)
	if err != nil {
		return "", err
	}
	result, events, err := h.svc.LeaveLobby(ctx, req.LobbyID, userID)
	if err != nil {
		return "", toRuntimeError(logger, RpcLobbyLeave, userID, err)
	}
	logEvents(logger, RpcLobbyLeave, events)
	return respond(logger, LobbyLeaveResponse{
		OK:             true,
		PlayersRemoved: result.PlayersRemoved,
		Status:         result.Lobby.Status,
	})
}

// RpcLobbyClose closes a lobby. Only its owner may call it.
// Payload: {"lobbyId": "..."}.
func (h *Handlers) RpcLobbyClose(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, req, err := lobbyCall(ctx, payload)
	if err != nil {
		return "", err
	}
	_, events, err := h.svc.CloseLobby(ctx, req.LobbyID, userID)
	if err != nil {
		return "", toRuntimeError(logger, RpcLobbyClose, userID, err)
	}
	logEvents(logger, RpcLobbyClose, events)
	return respond(logger, OKResponse{OK: true})
}

// RpcLobbyStart deals a new game for the lobby. Only its owner may call it.
// Payload: {"lobbyId": "..."}. Returns {"gameId": "..."}.
func (h *Handlers) RpcLobbyStart(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, req, err := lobbyCall(ctx, payload)
	if err != nil {
		return "", err
	}
	game, events, err := h.svc.StartLobby(ctx, req.LobbyID, userID)
	if err != nil {
		return "", toRuntimeError(logger, RpcLobbyStart, userID, err)
	}
	logEvents(logger, RpcLobbyStart, events)
	logger.Info("RpcLobbyStart [User:%s]: Lobby %s started game %s with %d players", userID, req.LobbyID, game.ID, len(game.Players))
	return respond(logger, GameIDResponse{GameID: game.ID})
}

// lobbyCall resolves the caller and a payload that must name a lobby.
func lobbyCall(ctx context.Context, payload string) (string, lobbyRequest, error) {
	var req lobbyRequest
	userID, err := callerID(ctx)
	if err != nil {
		return "", req, err
	}
	if err := decodePayload(payload, &req); err != nil {
		return "", req, err
	}
	if err := requireField(req.LobbyID, "lobbyId"); err != nil {
		return "", req, err
	}
	return userID, req, nil
}
