// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package parse implements the incremental output parsers layered on the
// raw streamed text.
//
// Three strategies exist, selected by the action's output kind:
//
//   - plain: the snapshot is the whole accumulated string
//   - sentence pairs: a partial JSON array scanner that emits only
//     completed {original, translation} objects
//   - structured: a partial JSON object scanner that streams the
//     revised_text value as soon as it is syntactically open
//
// All parsers operate on the cumulative buffer and re-parse it on every
// call; correctness over speed for this workload's message sizes.
package parse
