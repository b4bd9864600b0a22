// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package action

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/jeranaias/redraft/internal/model"
)

// Placeholders recognized in prompt templates.
const (
	PlaceholderText           = "{text}"
	PlaceholderTargetLanguage = "{targetLanguage}"
)

// =============================================================================
// PROMPT SUBSTITUTION
// =============================================================================

// BuildMessages fills the action's template and returns the chat messages
// for one request.
//
// When the template embeds {text}, the substituted template is sent as a
// single user message. Otherwise the template (with {targetLanguage}
// substituted) becomes the system message and the raw input text the user
// message. Image attachments always ride on the user message.
func BuildMessages(a Config, text, targetLanguage string, images []model.ImageRef) []model.ChatMessage {
	tmpl := strings.ReplaceAll(a.PromptTemplate, PlaceholderTargetLanguage, targetLanguage)

	if strings.Contains(tmpl, PlaceholderText) {
		user := strings.ReplaceAll(tmpl, PlaceholderText, text)
		return []model.ChatMessage{
			model.NewUserMessageWithImages(user, images),
		}
	}

	return []model.ChatMessage{
		model.NewSystemMessage(tmpl),
		model.NewUserMessageWithImages(text, images),
	}
}

// EmbedsText reports whether the action's template carries the user text
// inline rather than as a separate user message.
func EmbedsText(a Config) bool {
	return strings.Contains(a.PromptTemplate, PlaceholderText)
}

// =============================================================================
// TARGET LANGUAGE
// =============================================================================

// ResolveLanguage canonicalizes a user-supplied target language into an
// English display name ("fr" becomes "French"). Unknown tags pass through
// verbatim so the model sees exactly what the user typed.
func ResolveLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	if name := display.English.Languages().Name(t); name != "" {
		return name
	}
	return tag
}
