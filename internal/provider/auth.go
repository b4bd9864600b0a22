// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// =============================================================================
// PROVIDER KINDS
// =============================================================================

// Kind selects the authentication scheme a provider speaks.
type Kind string

const (
	// KindOpenAI is a direct OpenAI-compatible endpoint using static key auth.
	KindOpenAI Kind = "openai"
	// KindProxy is a relay endpoint authenticated by timestamped HMAC signing.
	KindProxy Kind = "proxy"
)

// Config describes one provider endpoint.
type Config struct {
	// Name is the config-file name of this provider entry.
	Name string
	// Kind selects the auth scheme.
	Kind Kind
	// BaseURL is the API root, e.g. "https://api.openai.com/v1".
	BaseURL string
	// KeyHeader overrides the header carrying the static key. Empty means
	// "Authorization" with a Bearer prefix; any other header gets the raw key.
	KeyHeader string
	// APIKey is the static credential for KindOpenAI.
	APIKey string
	// SigningKey is the shared HMAC secret for KindProxy.
	SigningKey string
}

// =============================================================================
// AUTHENTICATORS
// =============================================================================

// authenticator attaches provider credentials to an outgoing request.
type authenticator interface {
	apply(req *http.Request) error
}

// newAuthenticator builds the authenticator for the provider kind.
func newAuthenticator(cfg Config) (authenticator, error) {
	switch cfg.Kind {
	case KindOpenAI:
		return &staticAuth{header: cfg.KeyHeader, key: cfg.APIKey}, nil
	case KindProxy:
		return &hmacAuth{key: []byte(cfg.SigningKey), now: time.Now}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

// staticAuth sets a fixed API key header. The default Authorization header
// carries a Bearer prefix; a custom header carries the raw key.
type staticAuth struct {
	header string
	key    string
}

func (a *staticAuth) apply(req *http.Request) error {
	if a.header == "" || a.header == "Authorization" {
		req.Header.Set("Authorization", "Bearer "+a.key)
		return nil
	}
	req.Header.Set(a.header, a.key)
	return nil
}

// hmacAuth signs each request with a timestamped HMAC-SHA256 over the
// request path. The signature covers timestamp and path only; replay
// tolerance is server policy.
type hmacAuth struct {
	key []byte
	now func() time.Time
}

func (a *hmacAuth) apply(req *http.Request) error {
	ts := strconv.FormatInt(a.now().Unix(), 10)
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Signature", signRequest(a.key, ts, req.URL.Path))
	return nil
}

// signRequest computes hex(HMAC-SHA256(key, "{timestamp}:{path}")).
func signRequest(key []byte, timestamp, path string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(timestamp + ":" + path))
	return hex.EncodeToString(mac.Sum(nil))
}
