package nakama

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type storageKey struct {
	collection string
	key        string
}

type storedObject struct {
	value   string
	version int
}

// fakeNakama implements the storage, user and account calls the module makes.
// Everything else panics through the nil embedded interface.
type fakeNakama struct {
	runtime.NakamaModule

	mu       sync.Mutex
	objects  map[storageKey]storedObject
	users    map[string]*api.User
	profiles map[string]string
	writeErr error
}

func newFakeNakama() *fakeNakama {
	return &fakeNakama{
		objects:  make(map[storageKey]storedObject),
		users:    make(map[string]*api.User),
		profiles: make(map[string]string),
	}
}

func (f *fakeNakama) StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*api.StorageObject
	for _, r := range reads {
		obj, ok := f.objects[storageKey{r.Collection, r.Key}]
		if !ok {
			continue
		}
		out = append(out, &api.StorageObject{
			Collection: r.Collection,
			Key:        r.Key,
			Value:      obj.value,
			Version:    strconv.Itoa(obj.version),
		})
	}
	return out, nil
}

// StorageWrite applies the batch only if every version check passes.
func (f *fakeNakama) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	for _, w := range writes {
		obj, exists := f.objects[storageKey{w.Collection, w.Key}]
		switch {
		case w.Version == "*" && exists:
			return nil, runtime.ErrStorageRejectedVersion
		case w.Version != "" && w.Version != "*" && (!exists || strconv.Itoa(obj.version) != w.Version):
			return nil, runtime.ErrStorageRejectedVersion
		}
	}
	acks := make([]*api.StorageObjectAck, 0, len(writes))
	for _, w := range writes {
		k := storageKey{w.Collection, w.Key}
		next := f.objects[k].version + 1
		f.objects[k] = storedObject{value: w.Value, version: next}
		acks = append(acks, &api.StorageObjectAck{Collection: w.Collection, Key: w.Key, Version: strconv.Itoa(next)})
	}
	return acks, nil
}

// StorageList pages through a collection in key order, two objects per page
// so the adapter has to follow cursors.
func (f *fakeNakama) StorageList(ctx context.Context, callerID, userID, collection string, limit int, cursor string) ([]*api.StorageObject, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if k.collection == collection {
			keys = append(keys, k.key)
		}
	}
	sort.Strings(keys)

	start := 0
	if cursor != "" {
		start, _ = strconv.Atoi(cursor)
	}
	end := start + 2
	if end > len(keys) {
		end = len(keys)
	}
	var out []*api.StorageObject
	for _, key := range keys[start:end] {
		obj := f.objects[storageKey{collection, key}]
		out = append(out, &api.StorageObject{Collection: collection, Key: key, Value: obj.value, Version: strconv.Itoa(obj.version)})
	}
	next := ""
	if end < len(keys) {
		next = strconv.Itoa(end)
	}
	return out, next, nil
}

func (f *fakeNakama) UsersGetId(ctx context.Context, userIDs []string, facebookIDs []string) ([]*api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*api.User
	for _, id := range userIDs {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeNakama) AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if username == "" {
		return errors.New("username required")
	}
	f.profiles[userID] = username
	return nil
}

type rpcFunc = func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error)

// fakeInitializer records registrations.
type fakeInitializer struct {
	runtime.Initializer

	rpcs     map[string]rpcFunc
	authHook bool
}

func (f *fakeInitializer) RegisterRpc(id string, fn func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error)) error {
	if f.rpcs == nil {
		f.rpcs = make(map[string]rpcFunc)
	}
	f.rpcs[id] = fn
	return nil
}

func (f *fakeInitializer) RegisterAfterAuthenticateDevice(fn func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, out *api.Session, in *api.AuthenticateDeviceRequest) error) error {
	f.authHook = true
	return nil
}

func userCtx(userID string) context.Context {
	return context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, userID)
}

func wantCode(t *testing.T, err error, code int) {
	t.Helper()
	var rtErr *runtime.Error
	if !errors.As(err, &rtErr) {
		t.Fatalf("err = %v, want runtime error with code %d", err, code)
	}
	if rtErr.Code != code {
		t.Fatalf("code = %d (%s), want %d", rtErr.Code, rtErr.Message, code)
	}
}
