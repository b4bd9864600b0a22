// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff provides word-level diff computation between an original and
// a revised text.
package diff

import (
	"strings"
	"unicode"
)

// =============================================================================
// SEGMENT TYPES
// =============================================================================

// SegmentKind represents the classification of a diff segment.
type SegmentKind int

const (
	// SegmentUnchanged marks text present in both versions.
	SegmentUnchanged SegmentKind = iota
	// SegmentRemoved marks text present only in the original.
	SegmentRemoved
	// SegmentAdded marks text present only in the revision.
	SegmentAdded
)

// String returns the string representation of a segment kind.
func (k SegmentKind) String() string {
	switch k {
	case SegmentUnchanged:
		return "unchanged"
	case SegmentRemoved:
		return "removed"
	case SegmentAdded:
		return "added"
	default:
		return "unknown"
	}
}

// Segment is a run of text with a single classification.
type Segment struct {
	Text string
	Kind SegmentKind
}

// =============================================================================
// PRESENTATION
// =============================================================================

// Presentation is the two-sided result of diffing original against revised.
//
// Concatenating OriginalSegments reproduces the original byte-for-byte;
// concatenating RevisedSegments reproduces the revision byte-for-byte.
type Presentation struct {
	OriginalSegments []Segment
	RevisedSegments  []Segment
	HasAdditions     bool
	HasRemovals      bool
}

// Original reconstructs the original text from its segments.
func (p Presentation) Original() string {
	var sb strings.Builder
	for _, s := range p.OriginalSegments {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Revised reconstructs the revised text from its segments.
func (p Presentation) Revised() string {
	var sb strings.Builder
	for _, s := range p.RevisedSegments {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Changed reports whether any segment differs between the two sides.
func (p Presentation) Changed() bool {
	return p.HasAdditions || p.HasRemovals
}

// =============================================================================
// DIFF COMPUTATION
// =============================================================================

// Build computes the word-level diff between original and revised.
//
// Both strings are tokenized into alternating word and separator runs, the
// longest common subsequence of the token sequences is computed with the
// classic O(n*m) dynamic-programming table, and non-LCS tokens are marked
// Removed on the original side and Added on the revised side. The function
// is total: any two strings produce a valid presentation.
func Build(original, revised string) Presentation {
	oldTokens := tokenize(original)
	newTokens := tokenize(revised)

	lcs := computeLCS(oldTokens, newTokens)

	var origSegs, revSegs []Segment

	oldIdx := 0
	newIdx := 0
	lcsIdx := 0

	for oldIdx < len(oldTokens) || newIdx < len(newTokens) {
		if lcsIdx < len(lcs) &&
			oldIdx < len(oldTokens) && newIdx < len(newTokens) &&
			oldTokens[oldIdx] == newTokens[newIdx] &&
			oldTokens[oldIdx] == lcs[lcsIdx] {
			// Token survives in both versions.
			origSegs = appendSegment(origSegs, oldTokens[oldIdx], SegmentUnchanged)
			revSegs = appendSegment(revSegs, newTokens[newIdx], SegmentUnchanged)
			oldIdx++
			newIdx++
			lcsIdx++
		} else if oldIdx < len(oldTokens) && (lcsIdx >= len(lcs) || oldTokens[oldIdx] != lcs[lcsIdx]) {
			origSegs = appendSegment(origSegs, oldTokens[oldIdx], SegmentRemoved)
			oldIdx++
		} else if newIdx < len(newTokens) {
			revSegs = appendSegment(revSegs, newTokens[newIdx], SegmentAdded)
			newIdx++
		}
	}

	p := Presentation{
		OriginalSegments: origSegs,
		RevisedSegments:  revSegs,
	}
	for _, s := range origSegs {
		if s.Kind == SegmentRemoved {
			p.HasRemovals = true
			break
		}
	}
	for _, s := range revSegs {
		if s.Kind == SegmentAdded {
			p.HasAdditions = true
			break
		}
	}
	return p
}

// appendSegment appends a token, merging into the previous segment when the
// kind matches. Merging only concatenates text, so the round-trip property
// is preserved.
func appendSegment(segs []Segment, text string, kind SegmentKind) []Segment {
	if n := len(segs); n > 0 && segs[n-1].Kind == kind {
		segs[n-1].Text += text
		return segs
	}
	return append(segs, Segment{Text: text, Kind: kind})
}

// =============================================================================
// TOKENIZATION
// =============================================================================

// tokenize splits s into alternating runs of word characters and
// non-word characters (whitespace, punctuation). Concatenating the tokens
// reproduces s exactly.
func tokenize(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string
	var sb strings.Builder
	inWord := false

	for _, r := range s {
		word := isWordRune(r)
		if sb.Len() > 0 && word != inWord {
			tokens = append(tokens, sb.String())
			sb.Reset()
		}
		sb.WriteRune(r)
		inWord = word
	}
	if sb.Len() > 0 {
		tokens = append(tokens, sb.String())
	}
	return tokens
}

// isWordRune reports whether r belongs to a word token.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
}

// =============================================================================
// LCS
// =============================================================================

// computeLCS computes the longest common subsequence of two token slices
// using the classic dynamic-programming table with a backtracking walk.
func computeLCS(a, b []string) []string {
	m, n := len(a), len(b)
	if m == 0 || n == 0 {
		return nil
	}

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	lcs := make([]string, 0, dp[m][n])
	i, j := m, n
	for i > 0 && j > 0 {
		if a[i-1] == b[j-1] {
			lcs = append(lcs, a[i-1])
			i--
			j--
		} else if dp[i-1][j] > dp[i][j-1] {
			i--
		} else {
			j--
		}
	}

	// Backtracking walks the table in reverse.
	for l, r := 0, len(lcs)-1; l < r; l, r = l+1, r-1 {
		lcs[l], lcs[r] = lcs[r], lcs[l]
	}
	return lcs
}
