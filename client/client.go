// Package client is a typed client of the EventEase HTTP API. It keeps the
// login session in a SessionStore and plays the registration.Backend role
// for the registration flow.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"eventease/location"
	"eventease/model"
	"eventease/registration"
)

const maxResponseSize = 8 << 20

type Client struct {
	baseURL string
	http    *http.Client
	store   SessionStore

	mu      sync.RWMutex
	session Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithSessionStore(s SessionStore) Option {
	return func(c *Client) { c.store = s }
}

// New returns a client of the API rooted at baseURL, e.g.
// "http://localhost:8080/api", with the session the store holds.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API url %q", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   &MemorySessionStore{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.session, err = c.store.Load(); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return c, nil
}

var _ registration.Backend = (*Client)(nil)

func (c *Client) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) updateSession(fn func(*Session)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.session
	fn(&next)
	if err := c.store.Save(next); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	c.session = next
	return nil
}

// ---------- Auth ----------

type authData struct {
	Token string         `json:"token"`
	User  model.UserData `json:"user"`
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (model.UserData, error) {
	return c.authenticate(ctx, "/auth/signup", map[string]string{"name": name, "email": email, "password": password})
}

func (c *Client) Login(ctx context.Context, email, password string) (model.UserData, error) {
	return c.authenticate(ctx, "/auth/login", map[string]string{"email": email, "password": password})
}

func (c *Client) authenticate(ctx context.Context, path string, body map[string]string) (model.UserData, error) {
	env, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return model.UserData{}, err
	}
	var auth authData
	if err := decodeData(env, &auth); err != nil {
		return model.UserData{}, err
	}
	if auth.Token == "" {
		return model.UserData{}, fmt.Errorf("%w: no token in response", ErrMalformedResponse)
	}

	err = c.updateSession(func(s *Session) {
		s.Token = auth.Token
		s.User = &auth.User
	})
	return auth.User, err
}

// Logout forgets the token, the user and the selected location.
func (c *Client) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	c.session = Session{}
	return nil
}

func (c *Client) Me(ctx context.Context) (model.UserData, error) {
	var user model.UserData
	env, err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		return user, err
	}
	return user, decodeData(env, &user)
}

func (c *Client) SelectLocation(city location.City) error {
	return c.updateSession(func(s *Session) { s.SelectedLocation = &city })
}

// ---------- Events ----------

func (c *Client) ListEvents(ctx context.Context, q model.EventQuery) ([]model.Event, int, error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Category != "" {
		query.Set("category", q.Category)
	}
	if q.Type != "" {
		query.Set("type", q.Type)
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	env, err := c.do(ctx, http.MethodGet, "/events", query, nil)
	if err != nil {
		return nil, 0, err
	}
	return decodeList[model.Event](env)
}

func (c *Client) GetEvent(ctx context.Context, id string) (model.Event, error) {
	var event model.Event
	env, err := c.do(ctx, http.MethodGet, "/events/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return event, err
	}
	return event, decodeData(env, &event)
}

// ---------- Registrations ----------

func (c *Client) CheckRegistration(ctx context.Context, eventId string) (bool, error) {
	var check model.RegistrationCheck
	env, err := c.do(ctx, http.MethodGet, "/registrations/check/"+url.PathEscape(eventId), nil, nil)
	if err != nil {
		return false, err
	}
	if err := decodeData(env, &check); err != nil {
		return false, err
	}
	return check.IsRegistered, nil
}

func (c *Client) Register(ctx context.Context, req model.RegistrationRequest) (model.Registration, error) {
	var reg model.Registration
	env, err := c.do(ctx, http.MethodPost, "/registrations/register", nil, req)
	if err != nil {
		return reg, err
	}
	return reg, decodeData(env, &reg)
}

func (c *Client) MyRegistrations(ctx context.Context) ([]model.RegistrationWithEvent, error) {
	env, err := c.do(ctx, http.MethodGet, "/registrations/my-registrations", nil, nil)
	if err != nil {
		return nil, err
	}
	regs, _, err := decodeList[model.RegistrationWithEvent](env)
	return regs, err
}

func (c *Client) CancelRegistration(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/registrations/"+url.PathEscape(id), nil, nil)
	return err
}

// ---------- Notifications & newsletter ----------

func (c *Client) Notifications(ctx context.Context) ([]model.Notification, error) {
	env, err := c.do(ctx, http.MethodGet, "/notifications", nil, nil)
	if err != nil {
		return nil, err
	}
	notes, _, err := decodeList[model.Notification](env)
	return notes, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPatch, "/notifications/"+url.PathEscape(id)+"/read", nil, nil)
	return err
}

func (c *Client) Subscribe(ctx context.Context, email string) (model.Subscriber, error) {
	var sub model.Subscriber
	env, err := c.do(ctx, http.MethodPost, "/subscriptions", nil, map[string]string{"email": email})
	if err != nil {
		return sub, err
	}
	return sub, decodeData(env, &sub)
}

// ---------- transport ----------

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Total   *int            `json:"total"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (envelope, error) {
	var env envelope

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return env, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return env, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Session().Token; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return env, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return env, fmt.Errorf("%w: read response: %w", ErrNetwork, err)
	}
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: env.Message}
		var detail string
		if json.Unmarshal(env.Data, &detail) == nil {
			apiErr.Detail = detail
		}
		apiErr.kind = classify(resp.StatusCode, env.Message)
		return env, apiErr
	}
	if decodeErr != nil || env.Status == "" {
		return env, fmt.Errorf("%w: %s %s returned no envelope", ErrMalformedResponse, method, path)
	}
	return env, nil
}

func decodeData(env envelope, out interface{}) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

// decodeList accepts only {data: [...], total: n}.
func decodeList[T any](env envelope) ([]T, int, error) {
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || data[0] != '[' {
		return nil, 0, fmt.Errorf("%w: data is not a list", ErrMalformedResponse)
	}
	if env.Total == nil {
		return nil, 0, fmt.Errorf("%w: missing total", ErrMalformedResponse)
	}
	items := []T{}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return items, *env.Total, nil
}
