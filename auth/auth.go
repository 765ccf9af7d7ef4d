// Package auth is the authentication façade: login, logout, who-am-I,
// profile updates and silent session restoration. It is the single writer
// of the persisted session; the CRUD client only ever reads it (the one
// exception being token rotation inside the transport's 401 replay).
package auth

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/stockflowhq/stockflow-go/client"
	"github.com/stockflowhq/stockflow-go/session"
)

// State of the façade's lifecycle.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

const (
	loginPath                = "auth/login/access-token"
	logoutPath               = "auth/logout"
	mePath                   = "auth/me"
	registerOrganizationPath = "auth/register-organization"

	genericLoginError = "Invalid username or password"
)

// Service drives the authentication lifecycle against the API and owns the
// persisted session.
type Service struct {
	api      *client.Client
	sessions session.Store
	log      zerolog.Logger
	nowTime  func() time.Time

	mu    sync.Mutex
	state State
}

// Option configures a Service.
type Option func(*Service)

// WithLogger attaches a logger; the default is no-op.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// New returns a Service in the Anonymous state. The store must be the same
// one the client reads.
func New(api *client.Client, sessions session.Store, options ...Option) (*Service, error) {
	if api == nil {
		return nil, errors.New("[auth.New] api client is required")
	}
	if sessions == nil {
		return nil, errors.New("[auth.New] session store is required")
	}
	s := &Service{
		api:      api,
		sessions: sessions,
		log:      zerolog.Nop(),
		nowTime:  time.Now,
		state:    StateAnonymous,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Service) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// LoginResult is the outcome of a Login call. A credential rejection is a
// normal outcome: Success false plus a human-readable Error, nil error
// return.
type LoginResult struct {
	Success bool
	Error   string
	User    *Profile
}

// Login exchanges credentials for tokens (form-encoded password grant),
// fetches the profile with the fresh access token, and persists the
// session only after both steps succeed. No partial session is ever
// persisted.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	s.setState(StateAuthenticating)

	form := url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	}
	var tok tokenResponse
	if err := s.api.PostForm(ctx, loginPath, form, &tok); err != nil {
		s.setState(StateAnonymous)
		if detail, ok := rejectionDetail(err); ok {
			return &LoginResult{Success: false, Error: detail}, nil
		}
		return nil, errors.Wrap(err, "[Service.Login] token exchange")
	}

	var profile Profile
	err := s.api.Get(ctx, mePath, nil, &profile,
		client.WithBearer(tok.AccessToken), client.WithoutRetry())
	if err != nil {
		s.setState(StateAnonymous)
		if detail, ok := rejectionDetail(err); ok {
			return &LoginResult{Success: false, Error: detail}, nil
		}
		return nil, errors.Wrap(err, "[Service.Login] who-am-I")
	}
	profile.normalize()

	sess := sessionFromProfile(&profile, tok.oauthToken(s.nowTime))
	if err := s.sessions.Save(sess); err != nil {
		s.setState(StateAnonymous)
		return nil, errors.Wrap(err, "[Service.Login] persist session")
	}

	s.setState(StateAuthenticated)
	return &LoginResult{Success: true, User: &profile}, nil
}

// Logout clears the local session unconditionally before notifying the
// server; a failed server call is logged and otherwise ignored.
func (s *Service) Logout(ctx context.Context) error {
	sess, _ := s.sessions.Current()

	clearErr := s.sessions.Clear()
	s.setState(StateAnonymous)

	if sess != nil && sess.Tokens.AccessToken != "" {
		err := s.api.Post(ctx, logoutPath, nil, nil,
			client.WithBearer(sess.Tokens.AccessToken), client.WithoutRetry())
		if err != nil {
			s.log.Debug().Err(err).Msg("server logout failed")
		}
	}
	return clearErr
}

// Me returns the current profile, refreshing the persisted snapshot on
// success. A 401 is the expected "not logged in" outcome and yields
// (nil, nil); anything else is logged and returned.
func (s *Service) Me(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := s.api.Get(ctx, mePath, nil, &profile); err != nil {
		if client.IsStatus(err, http.StatusUnauthorized) {
			return nil, nil
		}
		s.log.Error().Err(err).Msg("who-am-I failed")
		return nil, err
	}
	profile.normalize()

	s.persistSnapshot(&profile)
	s.setState(StateAuthenticated)
	return &profile, nil
}

// UpdateMe sends a partial profile update and persists the merged profile
// the server returns as the new session snapshot.
func (s *Service) UpdateMe(ctx context.Context, partial map[string]any) (*Profile, error) {
	var profile Profile
	if err := s.api.Put(ctx, mePath, nil, client.Sanitize(partial), &profile); err != nil {
		return nil, err
	}
	profile.normalize()

	s.persistSnapshot(&profile)
	return &profile, nil
}

// Restore attempts a silent revalidation at process start using whatever
// session survived locally. Any failure, including the expected 401,
// clears local state and lands Anonymous; Restore itself never fails.
func (s *Service) Restore(ctx context.Context) *Profile {
	sess, _ := s.sessions.Current()
	if sess == nil {
		s.setState(StateAnonymous)
		return nil
	}

	profile, err := s.Me(ctx)
	if err != nil || profile == nil {
		_ = s.sessions.Clear()
		s.setState(StateAnonymous)
		return nil
	}
	return profile
}

// RegisterOrganizationRequest creates a new tenant together with its first
// administrator account.
type RegisterOrganizationRequest struct {
	OrganizationName string `json:"organization_name"`
	Country          string `json:"country,omitempty"`
	City             string `json:"city,omitempty"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Username         string `json:"username"`
	Password         string `json:"password"`
}

// RegisterOrganization signs up a new organization. The caller still logs
// in afterwards; no session is created here.
func (s *Service) RegisterOrganization(ctx context.Context, req RegisterOrganizationRequest) (map[string]any, error) {
	var out map[string]any
	if err := s.api.Post(ctx, registerOrganizationPath, req, &out, client.WithoutRetry()); err != nil {
		return nil, err
	}
	return out, nil
}

// persistSnapshot overwrites the profile fields of the stored session,
// keeping the token pair it already carries.
func (s *Service) persistSnapshot(profile *Profile) {
	current, _ := s.sessions.Current()
	tokens := oauth2.Token{}
	if current != nil {
		tokens = current.Tokens
	}
	if err := s.sessions.Save(sessionFromProfile(profile, tokens)); err != nil {
		s.log.Error().Err(err).Msg("failed to persist session snapshot")
	}
}

func sessionFromProfile(profile *Profile, tokens oauth2.Token) *session.Session {
	return &session.Session{
		UserID:         profile.ID,
		Username:       profile.Username,
		Email:          profile.Email,
		FullName:       profile.FullName,
		Role:           profile.Role,
		UserScope:      profile.UserScope,
		OrganizationID: profile.OrganizationID,
		Tokens:         tokens,
	}
}

// rejectionDetail extracts the user-facing message for a credential
// rejection (4xx), falling back to a generic message when the server gave
// none. Transport and 5xx failures are not rejections.
func rejectionDetail(err error) (string, bool) {
	var apiErr *client.Error
	if !errors.As(err, &apiErr) {
		return "", false
	}
	if apiErr.StatusCode >= http.StatusInternalServerError {
		return "", false
	}
	if apiErr.Detail != "" {
		return apiErr.Detail, true
	}
	return genericLoginError, true
}
