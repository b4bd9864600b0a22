// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/jeranaias/redraft/internal/diff"
	"github.com/jeranaias/redraft/internal/model"
)

// renderWidth is the wrap column for diff and result output.
const renderWidth = 100

// Renderer turns execution results into colored terminal output.
type Renderer struct {
	color     bool
	added     lipgloss.Style
	removed   lipgloss.Style
	header    lipgloss.Style
	errStyle  lipgloss.Style
	noteStyle lipgloss.Style
}

// NewRenderer detects the terminal color capability and builds the styles.
func NewRenderer() *Renderer {
	color := termenv.ColorProfile() != termenv.Ascii
	return &Renderer{
		color:     color,
		added:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		removed:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Strikethrough(true),
		header:    lipgloss.NewStyle().Bold(true),
		errStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		noteStyle: lipgloss.NewStyle().Faint(true),
	}
}

// Result renders one terminal result, diff included when present.
func (r *Renderer) Result(res model.ExecutionResult) string {
	var sb strings.Builder

	sb.WriteString(r.style(r.header, "── "+res.ModelID+" ("+res.Duration.Round(1e6).String()+")"))
	sb.WriteString("\n")

	if res.Err != nil {
		sb.WriteString(r.style(r.errStyle, "error: "+res.Err.Error()))
		sb.WriteString("\n")
		return sb.String()
	}

	if res.Diff != nil && res.Diff.Changed() {
		sb.WriteString(r.Diff(*res.Diff))
	} else {
		sb.WriteString(wrap(res.Text, renderWidth))
		sb.WriteString("\n")
	}

	for _, note := range res.SupplementalTexts {
		sb.WriteString(r.style(r.noteStyle, wrap(note, renderWidth)))
		sb.WriteString("\n")
	}

	for _, p := range res.SentencePairs {
		sb.WriteString(wrap(p.Original, renderWidth))
		sb.WriteString("\n")
		sb.WriteString(r.style(r.added, wrap(p.Translation, renderWidth)))
		sb.WriteString("\n")
	}

	return sb.String()
}

// Diff renders the original with removed runs struck through, then the
// revised text with added runs highlighted. Skipping the original line
// when nothing was removed keeps the common case to a single line.
func (r *Renderer) Diff(p diff.Presentation) string {
	var sb strings.Builder

	if p.HasRemovals {
		for _, seg := range p.OriginalSegments {
			if seg.Kind == diff.SegmentRemoved {
				sb.WriteString(r.style(r.removed, seg.Text))
			} else {
				sb.WriteString(seg.Text)
			}
		}
		sb.WriteString("\n")
	}

	for _, seg := range p.RevisedSegments {
		if seg.Kind == diff.SegmentAdded {
			sb.WriteString(r.style(r.added, seg.Text))
		} else {
			sb.WriteString(seg.Text)
		}
	}
	sb.WriteString("\n")

	return sb.String()
}

// style applies s when color output is enabled.
func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

// wrap breaks text at word boundaries using display width, so wide runes
// count for their rendered columns.
func wrap(text string, width int) string {
	var sb strings.Builder

	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(wrapLine(line, width))
	}
	return sb.String()
}

func wrapLine(line string, width int) string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return line
	}

	var sb strings.Builder
	col := 0
	for i, w := range words {
		wlen := runewidth.StringWidth(w)
		if i > 0 {
			if col+1+wlen > width {
				sb.WriteString("\n")
				col = 0
			} else {
				sb.WriteString(" ")
				col++
			}
		}
		sb.WriteString(w)
		col += wlen
	}
	return sb.String()
}
