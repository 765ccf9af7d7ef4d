package client_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/stockflowhq/stockflow-go/client"
	"github.com/stockflowhq/stockflow-go/session"
	"github.com/stockflowhq/stockflow-go/session/storefakes"
)

const (
	testOrgID       = "org1"
	testAccessToken = "access-1"
)

// capturedRequest is one request as seen by the fake backend.
type capturedRequest struct {
	Method  string
	Path    string
	Query   url.Values
	Header  http.Header
	Body    map[string]any
	RawBody []byte
}

// testFixture wires a Client against an httptest backend and a fake
// session store.
type testFixture struct {
	t      *testing.T
	store  *storefakes.FakeStore
	api    *client.Client
	server *httptest.Server

	mu       sync.Mutex
	requests []capturedRequest
	respond  func(w http.ResponseWriter, req capturedRequest)
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{t: t, store: storefakes.NewFakeStore()}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var parsed map[string]any
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &parsed)
		}
		captured := capturedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Query:   r.URL.Query(),
			Header:  r.Header.Clone(),
			Body:    parsed,
			RawBody: raw,
		}

		f.mu.Lock()
		f.requests = append(f.requests, captured)
		respond := f.respond
		f.mu.Unlock()

		if respond != nil {
			respond(w, captured)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(f.server.Close)

	api, err := client.New(client.Config{
		BaseURL:  f.server.URL,
		Sessions: f.store,
	})
	require.NoError(t, err)
	f.api = api
	return f
}

// respondWith installs the backend behavior for the test.
func (f *testFixture) respondWith(fn func(w http.ResponseWriter, req capturedRequest)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.respond = fn
}

// respondJSON makes every endpoint answer with the given body.
func (f *testFixture) respondJSON(body string) {
	f.respondWith(func(w http.ResponseWriter, _ capturedRequest) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func (f *testFixture) captured() []capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]capturedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *testFixture) lastRequest() capturedRequest {
	reqs := f.captured()
	require.NotEmpty(f.t, reqs)
	return reqs[len(reqs)-1]
}

// seedBusinessSession stores an authenticated business-staff session.
func (f *testFixture) seedBusinessSession() {
	f.store.Seed(&session.Session{
		UserID:         "user-1",
		Email:          "user@example.com",
		UserScope:      session.ScopeBusinessStaff,
		OrganizationID: testOrgID,
		Tokens: oauth2.Token{
			AccessToken:  testAccessToken,
			RefreshToken: "refresh-1",
			TokenType:    "bearer",
		},
	})
}

// seedPlatformSession stores a platform-staff session that still carries an
// organization of its own.
func (f *testFixture) seedPlatformSession() {
	f.store.Seed(&session.Session{
		UserID:         "staff-1",
		UserScope:      session.ScopePlatformStaff,
		OrganizationID: testOrgID,
		Tokens:         oauth2.Token{AccessToken: testAccessToken},
	})
}
