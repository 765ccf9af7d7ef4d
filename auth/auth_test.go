package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/stockflowhq/stockflow-go/auth"
	"github.com/stockflowhq/stockflow-go/client"
	"github.com/stockflowhq/stockflow-go/session"
	"github.com/stockflowhq/stockflow-go/session/storefakes"
)

const (
	testUsername    = "alpha"
	testPassword    = "alpha123"
	testAccessToken = "access-1"
	testOrgID       = "org1"
)

var testProfile = map[string]any{
	"id":              "user-1",
	"username":        testUsername,
	"email":           "alpha@stockflow.app",
	"full_name":       "Alpha Administrator",
	"role":            "admin",
	"user_scope":      "business-staff",
	"organization_id": testOrgID,
}

// testBackend is a fake auth API. Flags flip failure modes per test.
type testBackend struct {
	server        *httptest.Server
	rejectLogin   bool
	emptyReject   bool
	failLogout    bool
	meStatus      int // 0 means 200 with testProfile
	logoutCalled  bool
	lastLoginForm map[string][]string
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	b := &testBackend{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login/access-token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		b.lastLoginForm = r.PostForm
		if b.emptyReject {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if b.rejectLogin || r.PostFormValue("password") != testPassword {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail": "Incorrect username or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token": "` + testAccessToken + `", "refresh_token": "refresh-1", "token_type": "bearer", "expires_in": 3600}`))
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if b.meStatus != 0 {
			w.WriteHeader(b.meStatus)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+testAccessToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(testProfile)
	})
	mux.HandleFunc("PUT /auth/me", func(w http.ResponseWriter, r *http.Request) {
		var partial map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&partial))
		merged := map[string]any{}
		for k, v := range testProfile {
			merged[k] = v
		}
		for k, v := range partial {
			merged[k] = v
		}
		_ = json.NewEncoder(w).Encode(merged)
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.logoutCalled = true
		if b.failLogout {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

type testFixture struct {
	backend *testBackend
	store   *storefakes.FakeStore
	service *auth.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	backend := newTestBackend(t)
	store := storefakes.NewFakeStore()
	api, err := client.New(client.Config{BaseURL: backend.server.URL, Sessions: store})
	require.NoError(t, err)

	service, err := auth.New(api, store)
	require.NoError(t, err)

	return &testFixture{backend: backend, store: store, service: service}
}

func (f *testFixture) seedAuthenticated() {
	f.store.Seed(&session.Session{
		UserID:         "user-1",
		Email:          "alpha@stockflow.app",
		UserScope:      session.ScopeBusinessStaff,
		OrganizationID: testOrgID,
		Tokens:         oauth2.Token{AccessToken: testAccessToken, RefreshToken: "refresh-1"},
	})
}

func TestLoginSuccessPersistsSession(t *testing.T) {
	f := setupTestFixture(t)

	result, err := f.service.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotNil(t, result.User)
	assert.Equal(t, "Alpha Administrator", result.User.FullName)
	assert.Equal(t, auth.StateAuthenticated, f.service.State())

	assert.Equal(t, []string{"password"}, f.backend.lastLoginForm["grant_type"])

	sess, err := f.store.Current()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "user-1", sess.UserID)
	assert.Equal(t, testOrgID, sess.OrganizationID)
	assert.Equal(t, session.ScopeBusinessStaff, sess.UserScope)
	assert.Equal(t, testAccessToken, sess.Tokens.AccessToken)
	assert.False(t, sess.Tokens.Expiry.IsZero())

	// A subsequent who-am-I reads straight through.
	me, err := f.service.Me(context.Background())
	require.NoError(t, err)
	require.NotNil(t, me)
	assert.Equal(t, result.User.ID, me.ID)
}

func TestLoginRejectionReturnsServerDetail(t *testing.T) {
	f := setupTestFixture(t)

	result, err := f.service.Login(context.Background(), testUsername, "wrong")
	require.NoError(t, err)
	require.False(t, result.Success)
	assert.Equal(t, "Incorrect username or password", result.Error)
	assert.Equal(t, auth.StateAnonymous, f.service.State())

	sess, err := f.store.Current()
	require.NoError(t, err)
	assert.Nil(t, sess, "no partial session may be persisted")
}

func TestLoginRejectionFallsBackToGenericMessage(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.emptyReject = true

	result, err := f.service.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.False(t, result.Success)
	assert.Equal(t, "Invalid username or password", result.Error)
}

func TestLoginProfileFetchFailureLeavesNoSession(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.meStatus = http.StatusForbidden

	result, err := f.service.Login(context.Background(), testUsername, testPassword)
	require.NoError(t, err)
	require.False(t, result.Success)

	sess, err := f.store.Current()
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Equal(t, auth.StateAnonymous, f.service.State())
}

func TestLogoutClearsSessionEvenWhenServerFails(t *testing.T) {
	f := setupTestFixture(t)
	f.seedAuthenticated()
	f.backend.failLogout = true

	require.NoError(t, f.service.Logout(context.Background()))

	sess, err := f.store.Current()
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.True(t, f.backend.logoutCalled)
	assert.Equal(t, auth.StateAnonymous, f.service.State())
}

func TestMeUnauthenticatedIsANormalOutcome(t *testing.T) {
	f := setupTestFixture(t)

	profile, err := f.service.Me(context.Background())
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestMeRefreshesPersistedSnapshot(t *testing.T) {
	f := setupTestFixture(t)
	f.seedAuthenticated()

	profile, err := f.service.Me(context.Background())
	require.NoError(t, err)
	require.NotNil(t, profile)

	sess, err := f.store.Current()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "Alpha Administrator", sess.FullName)
	// Tokens survive a snapshot refresh.
	assert.Equal(t, testAccessToken, sess.Tokens.AccessToken)
}

func TestUpdateMePersistsMergedProfile(t *testing.T) {
	f := setupTestFixture(t)
	f.seedAuthenticated()

	profile, err := f.service.UpdateMe(context.Background(), map[string]any{
		"full_name": "Alpha A.",
		"phone":     "", // sanitized away before transmission
	})
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Alpha A.", profile.FullName)

	sess, err := f.store.Current()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "Alpha A.", sess.FullName)
}

func TestRestoreWithValidSession(t *testing.T) {
	f := setupTestFixture(t)
	f.seedAuthenticated()

	profile := f.service.Restore(context.Background())
	require.NotNil(t, profile)
	assert.Equal(t, "user-1", profile.ID)
	assert.Equal(t, auth.StateAuthenticated, f.service.State())
}

func TestRestoreClearsStaleSession(t *testing.T) {
	f := setupTestFixture(t)
	f.seedAuthenticated()
	f.backend.meStatus = http.StatusUnauthorized

	profile := f.service.Restore(context.Background())
	assert.Nil(t, profile)
	assert.Equal(t, auth.StateAnonymous, f.service.State())

	sess, err := f.store.Current()
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestRestoreWithoutSessionStaysAnonymous(t *testing.T) {
	f := setupTestFixture(t)

	assert.Nil(t, f.service.Restore(context.Background()))
	assert.Equal(t, auth.StateAnonymous, f.service.State())
}
