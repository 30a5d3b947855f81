package api

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
	"time"

	"github.com/lifesim-dev/lifesim/internal/profile"
)

// basePath prefixes every backend route.
const basePath = "/api/v1"

// maxErrorBody caps how much of an error response is kept for messages.
const maxErrorBody = 200

// Client talks JSON over HTTP to the simulation backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the backend at baseURL
// (e.g. "http://localhost:8080"). A zero timeout means none.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend address the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

// Authenticate logs in (or registers) the player with the given phone number.
func (c *Client) Authenticate(ctx context.Context, phone string) (User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return User{}, ErrPhoneRequired
	}
	var u User
	err := c.do(ctx, "login", http.MethodPost, "/user/login", nil, map[string]string{"phone": phone}, &u)
	return u, err
}

// FetchHistory lists the user's game instances.
func (c *Client) FetchHistory(ctx context.Context, userID profile.ID) ([]GameInstance, error) {
	var games []GameInstance
	err := c.do(ctx, "fetch history", http.MethodGet, "/user/"+url.PathEscape(userID.String())+"/history", nil, nil, &games)
	return games, err
}

// FetchTemplates lists the user's saved templates.
func (c *Client) FetchTemplates(ctx context.Context, userID profile.ID) ([]profile.Template, error) {
	var templates []profile.Template
	err := c.do(ctx, "fetch templates", http.MethodGet, "/user/"+url.PathEscape(userID.String())+"/templates", nil, nil, &templates)
	return templates, err
}

// FetchGameInstance loads one game instance by id.
func (c *Client) FetchGameInstance(ctx context.Context, id profile.ID) (GameInstance, error) {
	var g GameInstance
	err := c.do(ctx, "fetch game", http.MethodGet, "/game/"+url.PathEscape(id.String()), nil, nil, &g)
	return g, err
}

// PersistProfile stores the sheet and returns it with its new id.
func (c *Client) PersistProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	var saved profile.Profile
	err := c.do(ctx, "persist profile", http.MethodPost, "/sim/init", nil, p, &saved)
	return saved, err
}

// GenerateProbes asks the backend for the probe questions for p.
func (c *Client) GenerateProbes(ctx context.Context, p profile.Profile) ([]string, error) {
	var probes []string
	err := c.do(ctx, "generate probes", http.MethodPost, "/sim/probes", nil, p, &probes)
	return probes, err
}

// CreateTemplate saves p as a reusable template for the user.
func (c *Client) CreateTemplate(ctx context.Context, userID profile.ID, p profile.Profile) (profile.Template, error) {
	var t profile.Template
	q := url.Values{"userId": {userID.String()}}
	err := c.do(ctx, "create template", http.MethodPost, "/template/create", q, p, &t)
	return t, err
}

// StartGameInstance records a new playthrough of p for the user.
func (c *Client) StartGameInstance(ctx context.Context, userID profile.ID, p profile.Profile) (GameInstance, error) {
	var g GameInstance
	q := url.Values{"userId": {userID.String()}}
	err := c.do(ctx, "start game", http.MethodPost, "/game/start", q, p, &g)
	return g, err
}

// AnalyzeAndStart submits probe answers and returns the profile with its
// first scenario.
func (c *Client) AnalyzeAndStart(ctx context.Context, profileID profile.ID, answers map[string]string) (profile.Profile, error) {
	var p profile.Profile
	err := c.do(ctx, "start simulation", http.MethodPost, "/sim/"+url.PathEscape(profileID.String())+"/start", nil, answers, &p)
	return p, err
}

// AdvanceYear submits the player's choice for the coming year.
func (c *Client) AdvanceYear(ctx context.Context, profileID profile.ID, choice string) (profile.Profile, error) {
	var p profile.Profile
	body := map[string]string{"choice": choice}
	err := c.do(ctx, "advance year", http.MethodPost, "/sim/"+url.PathEscape(profileID.String())+"/next", nil, body, &p)
	return p, err
}

// SkipYears fast-forwards the simulation by years.
func (c *Client) SkipYears(ctx context.Context, profileID profile.ID, years int) (profile.Profile, error) {
	var p profile.Profile
	q := url.Values{"years": {strconv.Itoa(years)}}
	err := c.do(ctx, "skip years", http.MethodPost, "/sim/"+url.PathEscape(profileID.String())+"/skip", q, nil, &p)
	return p, err
}

// CreateLegacy ends the current generation and returns the heir's profile.
func (c *Client) CreateLegacy(ctx context.Context, profileID profile.ID) (profile.Profile, error) {
	var p profile.Profile
	err := c.do(ctx, "create legacy", http.MethodPost, "/sim/"+url.PathEscape(profileID.String())+"/legacy", nil, nil, &p)
	return p, err
}

// do sends one request and decodes a JSON response into out. Every failure
// comes back as a *TransportError.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + basePath + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encoding request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("building request: %w", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
