// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider implements the chat completions client: payload
// construction, request authentication, and the streaming transport.
//
// # Key Types
//
//   - Config: one provider endpoint (kind, base URL, credentials)
//   - Client: authenticated HTTP client for one endpoint
//   - ChatRequest: the wire request body
//
// # Usage
//
//	client, err := provider.NewClient(cfg, logger)
//	if err != nil {
//		return err
//	}
//	text, err := client.Stream(ctx, "gpt-4o-mini", msgs, kind, onText)
//
// Two authentication schemes exist: static API keys (Authorization Bearer
// or a configurable header) and a timestamped HMAC-SHA256 signature for
// relay endpoints. Validation failures are *ValidationError and always
// precede network I/O; transport, protocol, and HTTP failures carry their
// own typed errors.
package provider
