// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package action

import (
	"strings"
	"testing"

	"github.com/jeranaias/redraft/internal/model"
)

func TestBuildMessages_EmbeddedText(t *testing.T) {
	a := Config{
		ID:             "rewrite",
		PromptTemplate: "Rewrite this:\n\n{text}",
	}

	msgs := BuildMessages(a, "hello world", "", nil)

	if len(msgs) != 1 {
		t.Fatalf("expected single user message, got %d messages", len(msgs))
	}
	if msgs[0].Role != model.RoleUser {
		t.Errorf("role = %s, want user", msgs[0].Role)
	}
	if !strings.Contains(msgs[0].Content, "hello world") {
		t.Errorf("user text not substituted into template: %q", msgs[0].Content)
	}
	if strings.Contains(msgs[0].Content, PlaceholderText) {
		t.Errorf("placeholder left in message: %q", msgs[0].Content)
	}
}

func TestBuildMessages_SystemUserSplit(t *testing.T) {
	a := Config{
		ID:             "translate",
		PromptTemplate: "Translate into {targetLanguage}.",
	}

	msgs := BuildMessages(a, "bonjour", "German", nil)

	if len(msgs) != 2 {
		t.Fatalf("expected system+user pair, got %d messages", len(msgs))
	}
	if msgs[0].Role != model.RoleSystem {
		t.Errorf("first role = %s, want system", msgs[0].Role)
	}
	if !strings.Contains(msgs[0].Content, "German") {
		t.Errorf("target language not substituted: %q", msgs[0].Content)
	}
	if msgs[1].Role != model.RoleUser || msgs[1].Content != "bonjour" {
		t.Errorf("user message = %+v, want raw input text", msgs[1])
	}
}

func TestBuildMessages_ImagesOnUserMessage(t *testing.T) {
	img := model.ImageRef{MIMEType: "image/png", Data: "aGVsbG8="}

	split := BuildMessages(Config{PromptTemplate: "Do the thing."}, "text", "", []model.ImageRef{img})
	if len(split[1].Images) != 1 {
		t.Error("split form: images missing from user message")
	}
	if len(split[0].Images) != 0 {
		t.Error("split form: images must not ride on the system message")
	}

	embedded := BuildMessages(Config{PromptTemplate: "Fix: {text}"}, "text", "", []model.ImageRef{img})
	if len(embedded[0].Images) != 1 {
		t.Error("embedded form: images missing from user message")
	}
}

func TestResolveLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"fr", "French"},
		{"de", "German"},
		{"zh-Hans", "Simplified Chinese"},
		{"English", "English"},
		{"???", "???"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ResolveLanguage(tt.in); got != tt.want {
			t.Errorf("ResolveLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseOutputKind(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputKind
		wantErr bool
	}{
		{"plain", OutputPlain, false},
		{"diff", OutputDiff, false},
		{"sentence_pairs", OutputSentencePairs, false},
		{"sentence-pairs", OutputSentencePairs, false},
		{"grammar_check", OutputGrammarCheck, false},
		{"", OutputPlain, false},
		{"bogus", OutputPlain, true},
	}
	for _, tt := range tests {
		got, err := ParseOutputKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseOutputKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOutputKind_Predicates(t *testing.T) {
	if OutputPlain.Structured() || OutputDiff.Structured() {
		t.Error("plain and diff kinds must not request structured output")
	}
	if !OutputSentencePairs.Structured() || !OutputGrammarCheck.Structured() {
		t.Error("sentence_pairs and grammar_check must request structured output")
	}
	if !OutputDiff.WantsDiff() || !OutputGrammarCheck.WantsDiff() {
		t.Error("diff and grammar_check must want a diff")
	}
	if OutputPlain.WantsDiff() || OutputSentencePairs.WantsDiff() {
		t.Error("plain and sentence_pairs must not want a diff")
	}
}

func TestConfig_InScene(t *testing.T) {
	everywhere := Config{ID: "a"}
	if !everywhere.InScene(SceneSelection) {
		t.Error("action without scenes must be enabled everywhere")
	}

	scoped := Config{ID: "b", Scenes: []Scene{SceneInput}}
	if !scoped.InScene(SceneInput) || scoped.InScene(SceneScreenshot) {
		t.Error("scoped action enabled for wrong scenes")
	}
}

func TestBuiltin(t *testing.T) {
	actions := Builtin()
	if len(actions) == 0 {
		t.Fatal("no built-in actions")
	}
	seen := map[string]bool{}
	for _, a := range actions {
		if a.ID == "" || a.PromptTemplate == "" {
			t.Errorf("built-in action %+v missing ID or template", a)
		}
		if seen[a.ID] {
			t.Errorf("duplicate built-in action ID %q", a.ID)
		}
		seen[a.ID] = true
	}

	if _, ok := BuiltinByID("proofread"); !ok {
		t.Error("BuiltinByID(proofread) not found")
	}
	if _, ok := BuiltinByID("nope"); ok {
		t.Error("BuiltinByID(nope) unexpectedly found")
	}
}
