// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/jeranaias/redraft/internal/diff"
)

// =============================================================================
// EXECUTION RESULT
// =============================================================================

// ExecutionResult is the terminal outcome for one model in one invocation.
// Exactly one is produced per (requestID, modelID) pair, and no streaming
// update for that pair follows it. Immutable once produced.
type ExecutionResult struct {
	// ModelID identifies the model that produced this result.
	ModelID string

	// Text is the complete response text on success.
	Text string

	// Err is the terminal failure, nil on success. Cancellation never
	// appears here: cancelled units produce no result at all.
	Err error

	// Duration covers request start to terminal outcome.
	Duration time.Duration

	// DiffSource is the revised text to diff against the original input.
	// Set only when the action's output kind requests diffing.
	DiffSource string

	// Diff is the computed presentation for DiffSource, populated on the
	// worker goroutine before the result is surfaced.
	Diff *diff.Presentation

	// SupplementalTexts carries secondary fields from structured output,
	// e.g. the explanation accompanying a grammar-check revision.
	SupplementalTexts []string

	// SentencePairs carries the final pair list for sentence-pairs actions.
	SentencePairs []SentencePair
}

// Success reports whether the model completed without error.
func (r ExecutionResult) Success() bool {
	return r.Err == nil
}
