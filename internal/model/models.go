// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// MODEL CONFIG
// =============================================================================

// ModelConfig identifies one deployable model behind one provider.
// Instances are immutable once fetched; the session-scoped list is refreshed
// from the remote catalog (or supplied statically by configuration).
type ModelConfig struct {
	// ID is the provider-side model identifier, e.g. "gpt-4o-mini".
	ID string `json:"id"`
	// DisplayName is the human-readable model name.
	DisplayName string `json:"display_name"`
	// Default marks the model preselected for new users.
	Default bool `json:"is_default"`
	// Premium marks models gated behind a paid tier.
	Premium bool `json:"is_premium"`
}

// Name returns the display name, falling back to the ID when unset.
func (m ModelConfig) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.ID
}
