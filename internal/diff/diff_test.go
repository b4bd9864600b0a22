// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"math/rand"
	"strings"
	"testing"
)

func reconstruct(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

func TestBuild_RoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		original string
		revised  string
	}{
		{"simple insertion", "The cat sat", "The big cat sat"},
		{"simple removal", "The big cat sat", "The cat sat"},
		{"replacement", "I has a apple", "I have an apple"},
		{"empty original", "", "hello world"},
		{"empty revised", "hello world", ""},
		{"both empty", "", ""},
		{"punctuation", "Hello, world!", "Hello world."},
		{"unicode", "café au lait", "cafés au lait"},
		{"newlines", "line one\nline two", "line one\nline three"},
		{"whitespace only change", "a  b", "a b"},
		{"total rewrite", "alpha beta gamma", "delta epsilon"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Build(tc.original, tc.revised)

			if got := reconstruct(p.OriginalSegments); got != tc.original {
				t.Errorf("original round-trip failed: got %q, want %q", got, tc.original)
			}
			if got := reconstruct(p.RevisedSegments); got != tc.revised {
				t.Errorf("revised round-trip failed: got %q, want %q", got, tc.revised)
			}

			for _, s := range p.OriginalSegments {
				if s.Kind == SegmentAdded {
					t.Errorf("original side must not contain Added segments")
				}
			}
			for _, s := range p.RevisedSegments {
				if s.Kind == SegmentRemoved {
					t.Errorf("revised side must not contain Removed segments")
				}
			}
		})
	}
}

func TestBuild_RoundTripRandom(t *testing.T) {
	// Deterministic seed so failures are reproducible.
	rng := rand.New(rand.NewSource(42))
	words := []string{"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog", ",", ".", "\n"}

	sentence := func() string {
		n := rng.Intn(20)
		parts := make([]string, n)
		for i := range parts {
			parts[i] = words[rng.Intn(len(words))]
		}
		return strings.Join(parts, " ")
	}

	for i := 0; i < 200; i++ {
		a, b := sentence(), sentence()
		p := Build(a, b)
		if got := reconstruct(p.OriginalSegments); got != a {
			t.Fatalf("iteration %d: original round-trip failed: got %q, want %q", i, got, a)
		}
		if got := reconstruct(p.RevisedSegments); got != b {
			t.Fatalf("iteration %d: revised round-trip failed: got %q, want %q", i, got, b)
		}
	}
}

func TestBuild_Idempotence(t *testing.T) {
	texts := []string{
		"",
		"unchanged",
		"The quick brown fox jumps over the lazy dog.",
		"multi\nline\ntext with  spacing",
	}

	for _, text := range texts {
		p := Build(text, text)
		if p.HasAdditions {
			t.Errorf("Build(%q, same): HasAdditions = true, want false", text)
		}
		if p.HasRemovals {
			t.Errorf("Build(%q, same): HasRemovals = true, want false", text)
		}
		for _, s := range append(p.OriginalSegments, p.RevisedSegments...) {
			if s.Kind != SegmentUnchanged {
				t.Errorf("Build(%q, same): segment %q has kind %s, want unchanged", text, s.Text, s.Kind)
			}
		}
	}
}

func TestBuild_Insertion(t *testing.T) {
	p := Build("The cat sat", "The big cat sat")

	if !p.HasAdditions {
		t.Error("HasAdditions = false, want true")
	}
	if p.HasRemovals {
		t.Error("HasRemovals = true, want false")
	}

	want := []Segment{
		{Text: "The ", Kind: SegmentUnchanged},
		{Text: "big ", Kind: SegmentAdded},
		{Text: "cat sat", Kind: SegmentUnchanged},
	}
	if len(p.RevisedSegments) != len(want) {
		t.Fatalf("RevisedSegments = %+v, want %+v", p.RevisedSegments, want)
	}
	for i, seg := range p.RevisedSegments {
		if seg != want[i] {
			t.Errorf("RevisedSegments[%d] = %+v, want %+v", i, seg, want[i])
		}
	}
}

func TestBuild_Removal(t *testing.T) {
	p := Build("The big cat sat", "The cat sat")

	if p.HasAdditions {
		t.Error("HasAdditions = true, want false")
	}
	if !p.HasRemovals {
		t.Error("HasRemovals = false, want true")
	}

	var removed []string
	for _, s := range p.OriginalSegments {
		if s.Kind == SegmentRemoved {
			removed = append(removed, s.Text)
		}
	}
	if len(removed) != 1 || strings.TrimSpace(removed[0]) != "big" {
		t.Errorf("removed segments = %q, want a single \"big\"", removed)
	}
}

func TestBuild_MergesAdjacentSegments(t *testing.T) {
	p := Build("", "one two three")

	if len(p.RevisedSegments) != 1 {
		t.Fatalf("expected one merged Added segment, got %+v", p.RevisedSegments)
	}
	if p.RevisedSegments[0].Kind != SegmentAdded {
		t.Errorf("segment kind = %s, want added", p.RevisedSegments[0].Kind)
	}
}

func TestSegmentKind_String(t *testing.T) {
	tests := []struct {
		kind SegmentKind
		want string
	}{
		{SegmentUnchanged, "unchanged"},
		{SegmentRemoved, "removed"},
		{SegmentAdded, "added"},
		{SegmentKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("SegmentKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPresentation_Accessors(t *testing.T) {
	p := Build("old text", "new text")

	if p.Original() != "old text" {
		t.Errorf("Original() = %q", p.Original())
	}
	if p.Revised() != "new text" {
		t.Errorf("Revised() = %q", p.Revised())
	}
	if !p.Changed() {
		t.Error("Changed() = false, want true")
	}

	same := Build("same", "same")
	if same.Changed() {
		t.Error("Changed() = true for identical inputs")
	}
}
