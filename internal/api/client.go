// Package api talks to the dayglow backend's notification endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/dayglow/internal/constants"
	"github.com/julianstephens/dayglow/internal/keyring"
	"github.com/julianstephens/dayglow/internal/logger"
	"github.com/julianstephens/dayglow/internal/models"
	"github.com/julianstephens/dayglow/internal/storage"
	"github.com/julianstephens/dayglow/internal/validation"
)

const maxErrorBody = 4 << 10

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// TokenSource returns the bearer token to send, or ErrNoToken.
type TokenSource func() (string, error)

// ErrNoToken means requests go out unauthenticated.
var ErrNoToken = errors.New("no API token")

// KeyringTokenSource reads the token saved by `dayglow token set`.
func KeyringTokenSource() (string, error) {
	token, err := keyring.GetToken()
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoToken
	}
	return token, err
}

// Client implements push.Backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	kv         storage.KV
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTokenSource(src TokenSource) Option {
	return func(c *Client) {
		c.tokens = src
	}
}

// New returns a client for the API rooted at baseURL. kv holds the client id.
func New(baseURL string, kv storage.KV, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: constants.HTTPTimeout},
		tokens:     KeyringTokenSource,
		kv:         kv,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers a push subscription and reminder time with the backend.
func (c *Client) Subscribe(ctx context.Context, req models.SubscribeRequest) (models.SettingsEnvelope, error) {
	return c.do(ctx, http.MethodPost, constants.SubscribePath, req)
}

// Unsubscribe deletes the server-side subscription record.
func (c *Client) Unsubscribe(ctx context.Context) (models.SettingsEnvelope, error) {
	return c.do(ctx, http.MethodDelete, constants.UnsubscribePath, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (models.SettingsEnvelope, error) {
	var envelope models.SettingsEnvelope

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return envelope, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return envelope, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Client-Id", ClientID(c.kv))

	token, err := c.tokens()
	switch {
	case err == nil && token != "":
		req.Header.Set("Authorization", "Bearer "+token)
	case err != nil && !errors.Is(err, ErrNoToken):
		logger.Warn("Could not read API token", "error", err)
	}

	logger.Debug("Backend request", "method", method, "path", path)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return envelope, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return envelope, readStatusError(res)
	}

	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return envelope, fmt.Errorf("invalid response from %s: %w", path, err)
	}
	if err := validation.ValidateStruct(envelope); err != nil {
		return envelope, fmt.Errorf("invalid response from %s: %w", path, err)
	}
	return envelope, nil
}

func readStatusError(res *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	message := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Message != "" {
			message = payload.Message
		} else if payload.Error != "" {
			message = payload.Error
		}
	}
	if message == "" {
		message = http.StatusText(res.StatusCode)
	}
	return &StatusError{StatusCode: res.StatusCode, Message: message}
}

// ClientID returns this installation's id, creating and persisting one on
// first use. If the store cannot hold it, a fresh id is used per call.
func ClientID(kv storage.KV) string {
	if id, ok := kv.Get(constants.KeyClientID); ok {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	id := uuid.NewString()
	if !kv.Set(constants.KeyClientID, id) {
		logger.Debug("Client id not persisted")
	}
	return id
}
