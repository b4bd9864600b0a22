// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the redraft engine.
//
// This package defines the core domain types used throughout the application
// for representing chat messages, model identities, streaming snapshots, and
// terminal execution results.
//
// # Key Types
//
//   - ChatMessage: a single chat message built per request, never persisted
//   - ModelConfig: one deployable model behind one provider
//   - StreamingUpdate: the latest partial snapshot for one model's stream
//   - ExecutionResult: the terminal outcome for one model in one invocation
//
// All types here are plain values; the packages that produce and consume
// them (orchestrate, provider, parse) own the logic.
package model
