// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML or YAML configuration under ~/.ubuzima
//   - PromptStore: editable answer prompts under ~/.ubuzima/prompts
package file
