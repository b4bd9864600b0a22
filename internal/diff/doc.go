// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff provides word-level diff computation between an original and
// a revised text.
//
// The entry point is Build, which tokenizes both strings into word and
// separator runs, computes their longest common subsequence, and returns a
// Presentation with a marked segment list for each side. The algorithm is
// total over any two strings, and concatenating either side's segments
// reproduces that side's input exactly.
//
//	p := diff.Build("The cat sat", "The big cat sat")
//	for _, seg := range p.RevisedSegments {
//	    fmt.Printf("%s %q\n", seg.Kind, seg.Text)
//	}
package diff
