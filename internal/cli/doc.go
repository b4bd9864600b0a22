// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the redraft command surface.
//
// Subcommands: run (one-shot request), repl (interactive loop with
// request supersession), models, actions, and history listings. The CLI
// is a thin harness over the orchestration engine; it owns terminal
// rendering, the history store, and credential prompting, and nothing
// engine-side depends on it.
package cli
