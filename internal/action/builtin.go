// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package action

// Builtin returns the default action set used when the configuration file
// defines none, so the tool works out of the box.
func Builtin() []Config {
	return []Config{
		{
			ID:   "proofread",
			Name: "Proofread",
			PromptTemplate: "You are a professional editor. Proofread the text the user provides, " +
				"fixing spelling, grammar, and punctuation while preserving the author's voice. " +
				"Reply with the corrected text only.",
			Output: OutputDiff,
		},
		{
			ID:   "rewrite",
			Name: "Rewrite",
			PromptTemplate: "Rewrite the following text so it reads clearly and naturally, " +
				"keeping the original meaning:\n\n{text}",
			Output: OutputDiff,
		},
		{
			ID:   "translate",
			Name: "Translate",
			PromptTemplate: "You are a professional translator. Translate the text the user provides " +
				"into {targetLanguage}, sentence by sentence.",
			Output: OutputSentencePairs,
		},
		{
			ID:   "grammar",
			Name: "Grammar Check",
			PromptTemplate: "Check the grammar of the text the user provides. Return the revised text " +
				"and, when changes were needed, a short explanation of what was wrong.",
			Output: OutputGrammarCheck,
		},
		{
			ID:             "ask",
			Name:           "Ask",
			PromptTemplate: "{text}",
			Output:         OutputPlain,
		},
	}
}

// BuiltinByID returns the built-in action with the given ID, if any.
func BuiltinByID(id string) (Config, bool) {
	for _, a := range Builtin() {
		if a.ID == id {
			return a, true
		}
	}
	return Config{}, false
}
