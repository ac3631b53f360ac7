// Copyright 2026 The Flowent Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/flowent-foundation/actionserver/lib/action"
)

// Registration is the body posted to the gateway for one action.
type Registration struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	WebhookURL  string          `json:"webhook_url"`
	JSONSchema  json.RawMessage `json:"json_schema"`
}

// ClientConfig configures a registration Client.
type ClientConfig struct {
	// BaseURL is the gateway's base URL, without a trailing slash.
	// Required.
	BaseURL string

	// Logger is used for registration outcomes. Required.
	Logger *slog.Logger

	// HTTPClient overrides the transport. Defaults to a client with
	// a 30-second timeout.
	HTTPClient *http.Client

	// SessionPath, when non-empty, enables the on-disk session cache
	// so repeated registration runs reuse a live bearer token.
	SessionPath string
}

// Client talks to the gateway's registration API.
type Client struct {
	baseURL     string
	logger      *slog.Logger
	httpClient  *http.Client
	sessionPath string
}

// NewClient creates a registration client. Panics if a required
// configuration field is missing.
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		panic("gateway.NewClient: BaseURL is required")
	}
	if config.Logger == nil {
		panic("gateway.NewClient: Logger is required")
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		logger:      config.Logger,
		httpClient:  httpClient,
		sessionPath: config.SessionPath,
	}
}

// ExchangeToken trades the long-lived API token for a short-lived JWT
// bearer token. Any non-200 response is an error.
func (c *Client) ExchangeToken(ctx context.Context, apiToken string) (string, error) {
	body, err := json.Marshal(map[string]string{"api_token": apiToken})
	if err != nil {
		return "", fmt.Errorf("encoding token exchange request: %w", err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/token/exchange", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building token exchange request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		// Drain so the connection can be reused; the body itself is
		// not trusted enough to echo into the error.
		io.Copy(io.Discard, io.LimitReader(response.Body, 4096))
		return "", fmt.Errorf("token exchange: gateway returned status %d", response.StatusCode)
	}

	var result struct {
		JWTToken string `json:"jwt_token"`
	}
	if err := json.NewDecoder(response.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding token exchange response: %w", err)
	}
	if result.JWTToken == "" {
		return "", fmt.Errorf("token exchange: gateway returned an empty token")
	}
	return result.JWTToken, nil
}

// RegisterAction announces one action to the gateway. 201 Created and
// 409 Conflict (already registered) are both success so registration
// is idempotent across restarts.
func (c *Client) RegisterAction(ctx context.Context, bearer string, reg Registration) error {
	body, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("encoding registration for %s: %w", reg.Name, err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/actions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building registration request for %s: %w", reg.Name, err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+bearer)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("registering %s: %w", reg.Name, err)
	}
	defer response.Body.Close()
	io.Copy(io.Discard, io.LimitReader(response.Body, 4096))

	switch response.StatusCode {
	case http.StatusCreated, http.StatusConflict:
		return nil
	default:
		return fmt.Errorf("registering %s: gateway returned status %d", reg.Name, response.StatusCode)
	}
}

// RegisterAll exchanges the API token (reusing a cached session when
// one is live) and registers every definition, building each webhook
// URL from callbackBase. It returns the number of actions that failed
// to register; failures are logged and abandoned, never retried.
func (c *Client) RegisterAll(ctx context.Context, apiToken string, defs []action.Definition, callbackBase string) (int, error) {
	bearer, err := c.bearerToken(ctx, apiToken)
	if err != nil {
		return len(defs), err
	}

	callbackBase = strings.TrimRight(callbackBase, "/")
	failures := 0
	for _, def := range defs {
		reg := Registration{
			Name:        def.Name,
			Description: def.Description,
			WebhookURL:  callbackBase + "/actions/" + def.Name,
			JSONSchema:  def.ParameterSchema(),
		}
		if err := c.RegisterAction(ctx, bearer, reg); err != nil {
			c.logger.Error("action registration failed",
				"action", def.Name,
				"error", err)
			failures++
			continue
		}
		c.logger.Info("action registered",
			"action", def.Name,
			"webhook_url", reg.WebhookURL)
	}
	return failures, nil
}

// bearerToken returns a live bearer token, preferring the session
// cache when configured. A failed exchange never leaves a stale cache
// behind.
func (c *Client) bearerToken(ctx context.Context, apiToken string) (string, error) {
	if c.sessionPath != "" {
		if session, err := LoadSession(c.sessionPath); err == nil && session.Live(time.Now()) {
			c.logger.Debug("reusing cached gateway session",
				"issued_at", session.IssuedAt)
			return session.JWTToken, nil
		}
	}

	bearer, err := c.ExchangeToken(ctx, apiToken)
	if err != nil {
		return "", err
	}

	if c.sessionPath != "" {
		session := Session{JWTToken: bearer, IssuedAt: time.Now().Unix()}
		if err := session.Save(c.sessionPath); err != nil {
			// The cache is advisory; losing it costs one extra
			// exchange next run.
			c.logger.Warn("saving gateway session failed",
				"path", c.sessionPath,
				"error", err)
		}
	}
	return bearer, nil
}
