// Package client implements the tenant-scoped CRUD client for the
// StockFlow REST API: the HTTP transport, the organization auto-scoping
// rules, the write-payload sanitizer and the per-entity method factory.
//
// The client adds no caching and no retry policy beyond a single
// refresh-and-replay on an expired access token; callers own both.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/stockflowhq/stockflow-go/session"
)

const (
	defaultUserAgent = "stockflow-go"
	defaultTimeout   = 30 * time.Second

	refreshTokenPath = "auth/refresh-token"
)

// Config holds the settings for a Client.
type Config struct {
	// BaseURL of the API, e.g. "https://api.stockflow.app/api/v1".
	BaseURL string

	// Sessions is read fresh on every call for the bearer token and the
	// scoping decision. Required.
	Sessions session.Store

	// HTTPClient overrides the underlying transport, optional.
	HTTPClient *http.Client

	// UserAgent for outgoing requests, defaults to "stockflow-go".
	UserAgent string

	// Timeout for requests when HTTPClient is not supplied. Defaults to
	// 30 seconds.
	Timeout time.Duration

	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Client talks to the StockFlow API. Use Entity for the generic CRUD
// surface and the typed service accessors (PurchaseOrders, Alerts,
// Vendors) for the action endpoints that bypass it.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	sessions  session.Store
	userAgent string
	log       zerolog.Logger
}

// New validates conf and returns a Client.
func New(conf Config) (*Client, error) {
	if conf.Sessions == nil {
		return nil, errors.New("[client.New] session store is required")
	}
	if conf.BaseURL == "" {
		return nil, errors.New("[client.New] base URL is required")
	}
	base, err := url.Parse(conf.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "[client.New] parse base URL")
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.Errorf("[client.New] unsupported scheme %q", base.Scheme)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	httpClient := conf.HTTPClient
	if httpClient == nil {
		timeout := conf.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	userAgent := conf.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	logger := zerolog.Nop()
	if conf.Logger != nil {
		logger = *conf.Logger
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		sessions:  conf.Sessions,
		userAgent: userAgent,
		log:       logger,
	}, nil
}

// request describes one API call before shaping.
type request struct {
	method      string
	path        string // relative to the base URL, e.g. "products/"
	params      map[string]any
	jsonBody    any
	form        url.Values
	raw         io.Reader // pre-encoded body, sent once, never replayed
	contentType string
	bearer      string // overrides the stored access token
	noAuth      bool
	noRetry     bool
}

// CallOption adjusts a single request issued through the exported verb
// helpers.
type CallOption func(*request)

// WithBearer sends token instead of the stored access token.
func WithBearer(token string) CallOption {
	return func(r *request) {
		r.bearer = token
	}
}

// WithoutRetry disables the refresh-and-replay handling for this call.
func WithoutRetry() CallOption {
	return func(r *request) {
		r.noRetry = true
	}
}

// Get issues a GET against path with params encoded as the query string.
func (c *Client) Get(ctx context.Context, path string, params map[string]any, out any, options ...CallOption) error {
	return c.call(ctx, request{method: http.MethodGet, path: path, params: params}, out, options...)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, out any, options ...CallOption) error {
	return c.call(ctx, request{method: http.MethodPost, path: path, jsonBody: body}, out, options...)
}

// Put issues a PUT with a JSON body and params in the query string.
func (c *Client) Put(ctx context.Context, path string, params map[string]any, body any, out any, options ...CallOption) error {
	return c.call(ctx, request{method: http.MethodPut, path: path, params: params, jsonBody: body}, out, options...)
}

// Delete issues a DELETE against path with params in the query string.
func (c *Client) Delete(ctx context.Context, path string, params map[string]any, options ...CallOption) error {
	return c.call(ctx, request{method: http.MethodDelete, path: path, params: params}, nil, options...)
}

// PostForm issues a POST with a form-encoded body. Used by the auth façade
// for the password-grant token exchange.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any, options ...CallOption) error {
	return c.call(ctx, request{method: http.MethodPost, path: path, form: form, noAuth: true, noRetry: true}, out, options...)
}

func (c *Client) call(ctx context.Context, req request, out any, options ...CallOption) error {
	for _, opt := range options {
		opt(&req)
	}
	return c.do(ctx, req, out)
}

// do sends the request, replaying it once behind a token refresh when the
// first attempt comes back 401 and a refresh token is on hand. Raw-body
// requests are never replayed; their reader is already consumed.
func (c *Client) do(ctx context.Context, req request, out any) error {
	sess := c.currentSession()

	bearer := req.bearer
	if bearer == "" && !req.noAuth && sess != nil {
		bearer = sess.Tokens.AccessToken
	}

	status, body, err := c.roundTrip(ctx, req, bearer)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && !req.noRetry && req.raw == nil &&
		sess != nil && sess.Tokens.RefreshToken != "" {
		fresh, refreshErr := c.refreshSession(ctx, sess)
		if refreshErr != nil {
			c.log.Debug().Err(refreshErr).Msg("token refresh failed")
			return apiError(status, body)
		}
		status, body, err = c.roundTrip(ctx, req, fresh)
		if err != nil {
			return err
		}
	}

	if status < 200 || status >= 300 {
		return apiError(status, body)
	}
	if out == nil || status == http.StatusNoContent || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "[Client.do] decode response")
	}
	return nil
}

// roundTrip performs exactly one HTTP exchange and returns the status and
// drained body. Transport-level failures are returned as wrapped errors,
// non-2xx statuses are the caller's to interpret.
func (c *Client) roundTrip(ctx context.Context, req request, bearer string) (int, []byte, error) {
	target := c.baseURL.ResolveReference(&url.URL{Path: req.path})
	if q := encodeParams(req.params); q != "" {
		target.RawQuery = q
	}

	var (
		bodyReader  io.Reader
		contentType string
	)
	switch {
	case req.raw != nil:
		bodyReader = req.raw
		contentType = req.contentType
	case req.form != nil:
		bodyReader = strings.NewReader(req.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.jsonBody != nil:
		encoded, err := json.Marshal(req.jsonBody)
		if err != nil {
			return 0, nil, errors.Wrap(err, "[Client.roundTrip] encode body")
		}
		bodyReader = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target.String(), bodyReader)
	if err != nil {
		return 0, nil, errors.Wrap(err, "[Client.roundTrip] build request")
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.New().String())
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}

	c.log.Debug().Str("method", req.method).Str("url", target.String()).Msg("api request")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "[Client.roundTrip] %s %s", req.method, req.path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Wrap(err, "[Client.roundTrip] read body")
	}
	return resp.StatusCode, body, nil
}

// refreshSession exchanges the stored refresh token for a new token pair,
// persists it and returns the new access token. On failure the persisted
// session is cleared so the next call starts anonymous.
func (c *Client) refreshSession(ctx context.Context, sess *session.Session) (string, error) {
	var tok struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	req := request{
		method:   http.MethodPost,
		path:     refreshTokenPath,
		jsonBody: map[string]any{"refresh_token": sess.Tokens.RefreshToken},
		noAuth:   true,
		noRetry:  true,
	}
	if err := c.do(ctx, req, &tok); err != nil {
		_ = c.sessions.Clear()
		return "", errors.Wrap(err, "[Client.refreshSession] exchange")
	}

	updated := *sess
	updated.Tokens = oauth2.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    sess.Tokens.TokenType,
	}
	if err := c.sessions.Save(&updated); err != nil {
		return "", errors.Wrap(err, "[Client.refreshSession] persist tokens")
	}
	return tok.AccessToken, nil
}

// currentSession reads the session store, degrading to anonymous when the
// store itself fails.
func (c *Client) currentSession() *session.Session {
	sess, err := c.sessions.Current()
	if err != nil {
		c.log.Debug().Err(err).Msg("session read failed, proceeding unscoped")
		return nil
	}
	return sess
}

// encodeParams renders params as a query string with deterministic key
// order. Nil values are dropped.
func encodeParams(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		v := params[k]
		if v == nil {
			continue
		}
		values.Set(k, formatParam(v))
	}
	return values.Encode()
}

func formatParam(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
