// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates the redraft configuration.
//
// Configuration sources, in order of precedence:
//   - REDRAFT_* environment variables
//   - ~/.redraft/config.toml (or an explicit path)
//   - Built-in defaults
//
// Provider credentials resolve per provider name from the environment
// (REDRAFT_<NAME>_API_KEY, REDRAFT_<NAME>_SIGNING_KEY) so keys can stay
// out of the file. Watch hot-reloads the file with debounce; a reload
// that fails validation is dropped and the previous config stays live.
package config
