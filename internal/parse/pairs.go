// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package parse

import (
	"encoding/json"
	"strings"

	"github.com/jeranaias/redraft/internal/model"
)

// =============================================================================
// SENTENCE-PAIRS PARSER
// =============================================================================

// pairsParser incrementally parses a partial JSON array of
// {original, translation} objects. Only objects whose closing brace has been
// seen are emitted; an in-progress object is withheld until it closes, so
// the emitted pair count never decreases across a growing buffer.
type pairsParser struct{}

func (pairsParser) Snapshot(buf string) (model.StreamingUpdate, bool) {
	pairs := completedPairs(buf)
	if pairs == nil {
		return model.StreamingUpdate{}, false
	}
	return model.PairsUpdate(pairs), true
}

func (pairsParser) Finalize(buf string) Final {
	pairs := completedPairs(buf)
	return Final{
		Text:  renderPairs(pairs),
		Pairs: pairs,
	}
}

// pairJSON mirrors the wire shape of one sentence pair.
type pairJSON struct {
	Original    string `json:"original"`
	Translation string `json:"translation"`
}

// completedPairs scans the partial array and decodes every object that has
// closed. The scan tracks string and escape state so braces inside values
// do not confuse the depth count, and tolerates the array never closing.
func completedPairs(buf string) []model.SentencePair {
	start := strings.IndexByte(buf, '[')
	if start < 0 {
		return nil
	}

	pairs := []model.SentencePair{}
	depth := 0
	inString := false
	escaped := false
	objStart := -1

	for i := start + 1; i < len(buf); i++ {
		c := buf[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
			if depth == 1 {
				objStart = i
			}
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && objStart >= 0 {
				var p pairJSON
				if err := json.Unmarshal([]byte(buf[objStart:i+1]), &p); err == nil {
					pairs = append(pairs, model.SentencePair{
						Original:    p.Original,
						Translation: p.Translation,
					})
				}
				objStart = -1
			}
		case ']':
			if depth == 0 {
				return pairs
			}
		}
	}
	return pairs
}

// renderPairs flattens the pairs into display text for the terminal result.
func renderPairs(pairs []model.SentencePair) string {
	var sb strings.Builder
	for i, p := range pairs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(p.Translation)
	}
	return sb.String()
}
