// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// =============================================================================
// IMAGE ATTACHMENT
// =============================================================================

// ImageRef is an image attachment carried alongside the user text.
// Data is the raw base64 payload without a data-URL prefix; the provider
// layer renders it into the wire format the backend expects.
type ImageRef struct {
	// MIMEType is the image media type, e.g. "image/png".
	MIMEType string
	// Data is the base64-encoded image bytes.
	Data string
}

// DataURL returns the image as an RFC 2397 data URL.
func (i ImageRef) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + i.Data
}

// =============================================================================
// CHAT MESSAGE
// =============================================================================

// ChatMessage represents a single message in a chat request.
// Messages are ephemeral: built per request and never persisted by the core.
type ChatMessage struct {
	Role    Role
	Content string
	Images  []ImageRef
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: content}
}

// NewUserMessageWithImages creates a user message carrying image attachments.
func NewUserMessageWithImages(content string, images []ImageRef) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content, Images: images}
}
