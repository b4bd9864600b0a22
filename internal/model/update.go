// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// SENTENCE PAIR
// =============================================================================

// SentencePair is one original/translation sentence produced by a
// sentence-pairs action.
type SentencePair struct {
	Original    string `json:"original"`
	Translation string `json:"translation"`
}

// =============================================================================
// STREAMING UPDATE
// =============================================================================

// UpdateKind discriminates the StreamingUpdate union.
type UpdateKind int

const (
	// UpdateText carries the accumulated plain text so far.
	UpdateText UpdateKind = iota
	// UpdatePairs carries the completed sentence pairs so far.
	UpdatePairs
)

// StreamingUpdate is the latest partial snapshot for one model's stream.
// Each emission replaces the prior value: consumers render the snapshot,
// they never append deltas themselves.
type StreamingUpdate struct {
	Kind  UpdateKind
	Text  string
	Pairs []SentencePair
}

// TextUpdate builds a plain-text snapshot update.
func TextUpdate(text string) StreamingUpdate {
	return StreamingUpdate{Kind: UpdateText, Text: text}
}

// PairsUpdate builds a sentence-pairs snapshot update.
func PairsUpdate(pairs []SentencePair) StreamingUpdate {
	return StreamingUpdate{Kind: UpdatePairs, Pairs: pairs}
}
