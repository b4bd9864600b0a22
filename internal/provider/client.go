// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/jeranaias/redraft/internal/action"
	"github.com/jeranaias/redraft/internal/model"
	"github.com/jeranaias/redraft/internal/sse"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout bounds non-streaming API requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed non-streaming response body.
	MaxResponseSize = 10 * 1024 * 1024
)

var (
	// sharedHTTPClient serves non-streaming requests with connection pooling.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient serves streaming requests. No client timeout;
	// lifetime is controlled by the request context.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
)

// =============================================================================
// CLIENT
// =============================================================================

// Client speaks the chat completions protocol to one provider endpoint.
type Client struct {
	cfg  Config
	auth authenticator
	log  *logrus.Entry
}

// NewClient validates the provider configuration and builds a client.
// Validation failures are *ValidationError and happen before any network I/O.
func NewClient(cfg Config, log *logrus.Entry) (*Client, error) {
	cfg.BaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &ValidationError{Field: "base_url", Reason: fmt.Sprintf("not a valid URL: %q", cfg.BaseURL)}
	}

	switch cfg.Kind {
	case KindOpenAI:
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, &ValidationError{Field: "api_key", Reason: ErrNotConfigured.Error()}
		}
	case KindProxy:
		if strings.TrimSpace(cfg.SigningKey) == "" {
			return nil, &ValidationError{Field: "signing_key", Reason: ErrNotConfigured.Error()}
		}
	}

	auth, err := newAuthenticator(cfg)
	if err != nil {
		return nil, &ValidationError{Field: "kind", Reason: err.Error()}
	}

	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Client{
		cfg:  cfg,
		auth: auth,
		log:  log.WithField("provider", cfg.Name),
	}, nil
}

// Name returns the provider entry name.
func (c *Client) Name() string {
	return c.cfg.Name
}

// Stream performs a streaming chat completion. onText receives the
// cumulative response text after every frame carrying a content delta.
// It returns the complete accumulated text.
func (c *Client) Stream(ctx context.Context, modelID string, msgs []model.ChatMessage, kind action.OutputKind, onText func(cumulative string)) (string, error) {
	body, err := BuildPayload(msgs, modelID, kind, true)
	if err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := sharedStreamingClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readHTTPError(resp)
	}

	c.log.WithField("model", modelID).Debug("stream opened")

	var accumulated strings.Builder
	reader := sse.NewReader(resp.Body)

	for {
		select {
		case <-ctx.Done():
			return accumulated.String(), ctx.Err()
		default:
		}

		data, err := reader.Next()
		if err != nil {
			switch {
			case errors.Is(err, sse.ErrDone) || errors.Is(err, io.EOF):
				return accumulated.String(), nil
			case errors.Is(err, sse.ErrEventTooLarge):
				return accumulated.String(), &ProtocolError{Reason: "event exceeds size limit", Err: err}
			case ctx.Err() != nil:
				return accumulated.String(), ctx.Err()
			default:
				return accumulated.String(), &TransportError{Err: err}
			}
		}

		delta := gjson.GetBytes(data, "choices.0.delta.content")
		if !delta.Exists() || delta.String() == "" {
			continue
		}
		accumulated.WriteString(delta.String())
		if onText != nil {
			onText(accumulated.String())
		}
	}
}

// Complete performs a non-streaming chat completion and returns the
// response text.
func (c *Client) Complete(ctx context.Context, modelID string, msgs []model.ChatMessage, kind action.OutputKind) (string, error) {
	body, err := BuildPayload(msgs, modelID, kind, false)
	if err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		return "", err
	}

	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readHTTPError(resp)
	}

	raw, err := readBody(resp)
	if err != nil {
		return "", err
	}

	content := gjson.GetBytes(raw, "choices.0.message.content")
	if !content.Exists() {
		return "", &ProtocolError{Reason: "response carries no message content"}
	}
	return content.String(), nil
}

// ListModels fetches the provider's model catalog.
func (c *Client) ListModels(ctx context.Context) ([]model.ModelConfig, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, err
	}

	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readHTTPError(resp)
	}

	raw, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Data []model.ModelConfig `json:"data"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &ProtocolError{Reason: "malformed catalog response", Err: err}
	}
	return decoded.Data, nil
}

// newRequest builds an authenticated request against the provider base URL.
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, &ValidationError{Field: "request", Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "redraft/0.1.0")

	if err := c.auth.apply(req); err != nil {
		return nil, err
	}
	return req, nil
}

// readBody reads a response body with a size cap.
func readBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, &ProtocolError{Reason: fmt.Sprintf("response exceeds %d bytes", MaxResponseSize)}
	}
	return body, nil
}

// readHTTPError drains a failing response into an *HTTPError, keeping a
// capped copy of the body for diagnostics.
func readHTTPError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &HTTPError{
		Status: resp.StatusCode,
		Body:   strings.TrimSpace(string(body)),
	}
}
