// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"encoding/json"
	"fmt"

	"github.com/jeranaias/redraft/internal/action"
	"github.com/jeranaias/redraft/internal/model"
)

// =============================================================================
// REQUEST PAYLOAD
// =============================================================================

// ChatRequest is the JSON body of a chat completions request.
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []wireMessage   `json:"messages"`
	Stream         bool            `json:"stream"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// wireMessage is one message on the wire. Content is a plain string for
// text-only messages and a list of typed parts when images are attached.
type wireMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// contentPart is one element of a multi-part message content.
type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imageURLPart `json:"image_url,omitempty"`
}

// imageURLPart carries an image as a data URL.
type imageURLPart struct {
	URL string `json:"url"`
}

// responseFormat requests schema-constrained structured output.
type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type jsonSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

// BuildPayload encodes the chat completions request body for the given
// messages, model, and output kind. Structured kinds attach a json_schema
// response format; plain kinds send none.
func BuildPayload(msgs []model.ChatMessage, modelID string, kind action.OutputKind, stream bool) ([]byte, error) {
	req := ChatRequest{
		Model:    modelID,
		Messages: make([]wireMessage, 0, len(msgs)),
		Stream:   stream,
	}

	for _, m := range msgs {
		req.Messages = append(req.Messages, encodeMessage(m))
	}

	if kind.Structured() {
		req.ResponseFormat = formatFor(kind)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ValidationError{Field: "payload", Reason: fmt.Sprintf("encode: %v", err)}
	}
	return body, nil
}

// encodeMessage renders one message. Images become OpenAI-style image_url
// parts with data URLs, placed after the text part.
func encodeMessage(m model.ChatMessage) wireMessage {
	if len(m.Images) == 0 {
		return wireMessage{Role: m.Role.String(), Content: m.Content}
	}

	parts := []contentPart{{Type: "text", Text: m.Content}}
	for _, img := range m.Images {
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imageURLPart{URL: img.DataURL()},
		})
	}
	return wireMessage{Role: m.Role.String(), Content: parts}
}

// formatFor returns the response_format block for a structured output kind.
func formatFor(kind action.OutputKind) *responseFormat {
	switch kind {
	case action.OutputSentencePairs:
		return &responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchema{
				Name:   "sentence_pairs",
				Strict: true,
				Schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"sentence_pairs": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"original":    map[string]any{"type": "string"},
									"translation": map[string]any{"type": "string"},
								},
								"required":             []string{"original", "translation"},
								"additionalProperties": false,
							},
						},
					},
					"required":             []string{"sentence_pairs"},
					"additionalProperties": false,
				},
			},
		}
	case action.OutputGrammarCheck:
		return &responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchema{
				Name:   "grammar_check",
				Strict: true,
				Schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"revised_text":    map[string]any{"type": "string"},
						"additional_text": map[string]any{"type": "string"},
					},
					"required":             []string{"revised_text", "additional_text"},
					"additionalProperties": false,
				},
			},
		}
	default:
		return nil
	}
}
