// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrate fans one request out to every selected model
// concurrently and aggregates the streamed outcomes.
//
// # Key Types
//
//   - Engine: the dispatcher; owns supersession and callback liveness
//   - Request: one invocation (input, action, targets)
//   - Target: a model paired with its provider client
//
// One goroutine serves each target; failures are independent and every
// non-cancelled target yields exactly one ExecutionResult. Partial
// updates are throttled per model and coalesced, with an unthrottled
// final flush. A new Execute supersedes the live one: the old request's
// context is cancelled, its callbacks are cut off under the engine
// mutex, and dispatch waits for its workers to exit.
package orchestrate
