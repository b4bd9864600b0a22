// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package action defines prompt recipes and the placeholder substitution
// that turns them into chat messages.
package action

import (
	"fmt"
	"strings"
)

// =============================================================================
// OUTPUT KIND
// =============================================================================

// OutputKind determines how a model's response is parsed and presented.
type OutputKind int

const (
	// OutputPlain streams and presents free-form text.
	OutputPlain OutputKind = iota
	// OutputDiff streams free-form text and presents a word-level diff
	// against the original input on completion.
	OutputDiff
	// OutputSentencePairs requests a structured array of
	// original/translation sentence pairs.
	OutputSentencePairs
	// OutputGrammarCheck requests a structured object with a revised text
	// and an optional explanation, diffed against the original input.
	OutputGrammarCheck
)

// String returns the configuration name of the output kind.
func (k OutputKind) String() string {
	switch k {
	case OutputPlain:
		return "plain"
	case OutputDiff:
		return "diff"
	case OutputSentencePairs:
		return "sentence_pairs"
	case OutputGrammarCheck:
		return "grammar_check"
	default:
		return "unknown"
	}
}

// Structured reports whether the kind requires a JSON-Schema response format.
func (k OutputKind) Structured() bool {
	return k == OutputSentencePairs || k == OutputGrammarCheck
}

// WantsDiff reports whether results of this kind carry a diff source.
func (k OutputKind) WantsDiff() bool {
	return k == OutputDiff || k == OutputGrammarCheck
}

// ParseOutputKind parses a configuration string into an OutputKind.
func ParseOutputKind(s string) (OutputKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plain", "":
		return OutputPlain, nil
	case "diff":
		return OutputDiff, nil
	case "sentence_pairs", "sentence-pairs":
		return OutputSentencePairs, nil
	case "grammar_check", "grammar-check":
		return OutputGrammarCheck, nil
	default:
		return OutputPlain, fmt.Errorf("unknown output kind %q", s)
	}
}

// =============================================================================
// SCENE
// =============================================================================

// Scene is a usage context an action is enabled for.
type Scene string

const (
	// SceneSelection applies to text captured from a selection.
	SceneSelection Scene = "selection"
	// SceneInput applies to text typed directly into the tool.
	SceneInput Scene = "input"
	// SceneScreenshot applies to text extracted from an image capture.
	SceneScreenshot Scene = "screenshot"
)

// =============================================================================
// ACTION CONFIG
// =============================================================================

// Config is a named prompt recipe with an output kind.
// Configs are owned by the configuration layer and read-only to the engine.
type Config struct {
	// ID is the stable action identifier.
	ID string
	// Name is the human-readable action name.
	Name string
	// PromptTemplate is the prompt with optional {text} and
	// {targetLanguage} placeholders.
	PromptTemplate string
	// Scenes lists the usage contexts the action is enabled for.
	Scenes []Scene
	// Output selects the parsing and presentation strategy.
	Output OutputKind
}

// InScene reports whether the action is enabled for the given scene.
// An action with no scenes is enabled everywhere.
func (c Config) InScene(s Scene) bool {
	if len(c.Scenes) == 0 {
		return true
	}
	for _, sc := range c.Scenes {
		if sc == s {
			return true
		}
	}
	return false
}
