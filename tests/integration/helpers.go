//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

const (
	ServerKey = "defaultkey"
	Host      = "127.0.0.1"
	Port      = 7350
)

// baseURL honours DURAK_NAKAMA_URL so the suite can target another server.
func baseURL() string {
	if u := os.Getenv("DURAK_NAKAMA_URL"); u != "" {
		return u
	}
	return fmt.Sprintf("http://%s:%d", Host, Port)
}

type TestClient struct {
	HTTP   *http.Client
	Token  string
	UserID string
}

// RPCError is a non-2xx reply from the Nakama RPC API.
type RPCError struct {
	Status  int
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc failed: http %d, code %d: %s", e.Status, e.Code, e.Message)
}

// NewTestClient authenticates a fresh device account. The test is skipped
// when no server is listening.
func NewTestClient(t *testing.T) *TestClient {
	t.Helper()
	tc := &TestClient{HTTP: &http.Client{Timeout: 5 * time.Second}}

	deviceID := fmt.Sprintf("test_device_%d", time.Now().UnixNano())
	body, _ := json.Marshal(map[string]string{"id": deviceID})
	req, _ := http.NewRequest(http.MethodPost, baseURL()+"/v2/account/authenticate/device?create=true", bytes.NewReader(body))
	req.SetBasicAuth(ServerKey, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := tc.HTTP.Do(req)
	if err != nil {
		t.Skipf("Nakama not reachable at %s: %v", baseURL(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("Failed to authenticate: http %d: %s", resp.StatusCode, raw)
	}
	var session struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("Failed to decode session: %v", err)
	}
	tc.Token = session.Token

	var account struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := tc.get("/v2/account", &account); err != nil {
		t.Fatalf("Failed to load account: %v", err)
	}
	tc.UserID = account.User.ID
	return tc
}

func (tc *TestClient) get(path string, out any) error {
	req, _ := http.NewRequest(http.MethodGet, baseURL()+path, nil)
	req.Header.Set("Authorization", "Bearer "+tc.Token)
	resp, err := tc.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: http %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// RPC calls id with payload marshalled to JSON and decodes the reply into out.
func (tc *TestClient) RPC(ctx context.Context, id string, payload any, out any) error {
	inner, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	// The RPC body is the payload as a JSON string.
	body, _ := json.Marshal(string(inner))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL()+"/v2/rpc/"+id, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tc.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := tc.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		rpcErr := &RPCError{Status: resp.StatusCode}
		_ = json.Unmarshal(raw, rpcErr)
		return rpcErr
	}

	var envelope struct {
		Payload string `json:"payload"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal([]byte(envelope.Payload), out)
}

func (tc *TestClient) MustRPC(t *testing.T, id string, payload any, out any) {
	t.Helper()
	if err := tc.RPC(context.Background(), id, payload, out); err != nil {
		t.Fatalf("RPC %s failed: %v", id, err)
	}
}
