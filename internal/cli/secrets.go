// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/jeranaias/redraft/internal/config"
	"github.com/jeranaias/redraft/internal/provider"
)

// ensureCredential prompts for a missing provider credential when running
// interactively. The key is held for this process only, never written back
// to the config file.
func ensureCredential(entry *config.ProviderEntry) error {
	switch provider.Kind(entry.Kind) {
	case provider.KindOpenAI:
		if entry.APIKey != "" {
			return nil
		}
		key, err := promptSecret(fmt.Sprintf("API key for provider %q: ", entry.Name))
		if err != nil {
			return err
		}
		entry.APIKey = key
	case provider.KindProxy:
		if entry.SigningKey != "" {
			return nil
		}
		key, err := promptSecret(fmt.Sprintf("Signing key for provider %q: ", entry.Name))
		if err != nil {
			return err
		}
		entry.SigningKey = key
	}
	return nil
}

// promptSecret reads a secret from the terminal without echo.
func promptSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("credential not configured and stdin is not a terminal; set it via environment or config file")
	}

	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}

	s := strings.TrimSpace(string(secret))
	if s == "" {
		return "", fmt.Errorf("empty credential")
	}
	return s, nil
}
