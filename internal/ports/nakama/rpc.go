package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"durak/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Handlers exposes the lobby and game services as Nakama RPCs.
type Handlers struct {
	svc *app.Service
}

// NewHandlers creates RPC handlers backed by svc.
func NewHandlers(svc *app.Service) *Handlers {
	return &Handlers{svc: svc}
}

// RegisterRPCs registers every lobby and game RPC.
func (h *Handlers) RegisterRPCs(initializer runtime.Initializer) error {
	rpcs := []struct {
		id string
		fn func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error)
	}{
		{RpcLobbyCreate, h.RpcLobbyCreate},
		{RpcLobbyList, h.RpcLobbyList},
		{RpcLobbyGet, h.RpcLobbyGet},
		{RpcLobbyJoin, h.RpcLobbyJoin},
		{RpcLobbyLeave, h.RpcLobbyLeave},
		{RpcLobbyClose, h.RpcLobbyClose},
		{RpcLobbyStart, h.RpcLobbyStart},
		{RpcGameGet, h.RpcGameGet},
		{RpcGameByLobby, h.RpcGameByLobby},
		{RpcGamePlay, h.RpcGamePlay},
		{RpcGameTake, h.RpcGameTake},
		{RpcGameReveal, h.RpcGameReveal},
	}
	for _, rpc := range rpcs {
		if err := initializer.RegisterRpc(rpc.id, rpc.fn); err != nil {
			return err
		}
	}
	return nil
}

var errUnauthenticated = runtime.NewError("authentication required", codeUnauthenticated)

// callerID returns the authenticated user of the request. Server-to-server
// calls carry no user and are rejected.
func callerID(ctx context.Context) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", errUnauthenticated
	}
	return userID, nil
}

// decodePayload unmarshals an RPC payload. An empty payload decodes as {}.
func decodePayload(payload string, dst any) error {
	if strings.TrimSpace(payload) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		return runtime.NewError("invalid payload", codeInvalidArgument)
	}
	return nil
}

func requireField(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return runtime.NewError(name+" is required", codeInvalidArgument)
	}
	return nil
}

func respond(logger runtime.Logger, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to marshal RPC response: %v", err)
		return "", runtime.NewError("internal error", codeInternal)
	}
	return string(b), nil
}

// toRuntimeError maps a classified service error to a Nakama error. Internal
// errors are logged in full and reported without detail.
func toRuntimeError(logger runtime.Logger, rpc, userID string, err error) error {
	kind := app.KindOf(err)
	message := err.Error()
	var appErr *app.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	var code int
	switch kind {
	case app.KindNotFound:
		code = codeNotFound
	case app.KindForbidden:
		code = codePermissionDenied
	case app.KindInvalidState:
		code = codeFailedPrecondition
	case app.KindInvalidMove, app.KindValidation:
		code = codeInvalidArgument
	case app.KindConflict:
		code = codeAborted
	default:
		logger.Error("%s [User:%s]: %v", rpc, userID, err)
		return runtime.NewError("internal error", codeInternal)
	}

	logger.Debug("%s [User:%s]: rejected (%s): %s", rpc, userID, kind, message)
	return runtime.NewError(message, code)
}

// logEvents records domain events at debug level. State is pulled by
// clients, so events are not pushed anywhere.
func logEvents(logger runtime.Logger, rpc string, events []app.Event) {
	for _, ev := range events {
		logger.WithField("event", string(ev.Kind)).Debug("%s: %+v", rpc, ev.Payload)
	}
}
