// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package parse

import (
	"github.com/jeranaias/redraft/internal/action"
	"github.com/jeranaias/redraft/internal/model"
)

// =============================================================================
// PARSER INTERFACE
// =============================================================================

// Final holds the terminal fields extracted from a model's complete output.
type Final struct {
	// Text is the primary response text.
	Text string
	// DiffSource is the revised text to diff against the original input;
	// empty when the output kind does not request diffing.
	DiffSource string
	// Supplemental carries secondary texts (e.g. a grammar explanation).
	Supplemental []string
	// Pairs carries the completed sentence pairs.
	Pairs []model.SentencePair
}

// Parser turns a model's cumulative streamed text into snapshot updates.
//
// Both methods receive the whole buffer accumulated so far, never a delta:
// implementations re-parse the growing buffer on every call, which keeps
// them correct when a frame carries a suffix of a previously-seen prefix.
type Parser interface {
	// Snapshot parses the cumulative buffer and returns the latest
	// partial update. ok is false while nothing is presentable yet.
	Snapshot(buf string) (u model.StreamingUpdate, ok bool)

	// Finalize parses the complete buffer into the terminal fields.
	// It is total: a truncated buffer yields the best partial value
	// recovered so far.
	Finalize(buf string) Final
}

// ForKind returns the parser strategy for the given output kind.
func ForKind(kind action.OutputKind) Parser {
	switch kind {
	case action.OutputSentencePairs:
		return pairsParser{}
	case action.OutputGrammarCheck:
		return structuredParser{}
	case action.OutputDiff:
		return plainParser{diff: true}
	default:
		return plainParser{}
	}
}

// =============================================================================
// PLAIN PARSER
// =============================================================================

// plainParser accumulates free-form text; every snapshot is the whole
// buffer so far.
type plainParser struct {
	// diff marks the final text as the diff source.
	diff bool
}

func (plainParser) Snapshot(buf string) (model.StreamingUpdate, bool) {
	if buf == "" {
		return model.StreamingUpdate{}, false
	}
	return model.TextUpdate(buf), true
}

func (p plainParser) Finalize(buf string) Final {
	f := Final{Text: buf}
	if p.diff {
		f.DiffSource = buf
	}
	return f
}
