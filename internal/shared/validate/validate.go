// Package validate bounds untrusted request fields before they reach
// the engine. Collaborator payloads and dynamic source are capped so a
// runaway generation cannot exhaust the surface or the compiler.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	MaxPromptSize      = 16 * 1024  // single generation prompt
	MaxInstructionSize = 16 * 1024  // single refinement instruction
	MaxPayloadSize     = 512 * 1024 // document payload or dynamic source
	MaxContextEntries  = 64
	MaxTitleLength     = 256
)

// Prompt validates a generation prompt
func Prompt(prompt string) error {
	return text(prompt, "prompt", 1, MaxPromptSize)
}

// Instruction validates a refinement instruction
func Instruction(instruction string) error {
	return text(instruction, "instruction", 1, MaxInstructionSize)
}

// Payload validates a document payload or dynamic source body
func Payload(payload string) error {
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("payload size %d bytes exceeds maximum %d bytes", len(payload), MaxPayloadSize)
	}
	if strings.Contains(payload, "\x00") {
		return fmt.Errorf("payload contains invalid characters")
	}
	return nil
}

// Title validates a tab title
func Title(title string) error {
	return text(title, "title", 1, MaxTitleLength)
}

// Context bounds a generation context map
func Context(context map[string]string) error {
	if len(context) > MaxContextEntries {
		return fmt.Errorf("too many context entries (maximum %d)", MaxContextEntries)
	}
	for key, value := range context {
		if err := text(key, "context key", 1, MaxTitleLength); err != nil {
			return err
		}
		if len(value) > MaxInstructionSize {
			return fmt.Errorf("context value for %q too large", key)
		}
	}
	return nil
}

func text(value, fieldName string, minLen, maxLen int) error {
	if value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}
