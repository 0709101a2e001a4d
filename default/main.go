// Package defaults provides embedded default assets (system prompt, zsh plugin and example config).
package defaults

import _ "embed"

//go:embed system_prompt.txt
var SystemPrompt string

//go:embed zsh_codex.plugin.zsh
var ZshPlugin string

//go:embed zsh_codex.ini
var ExampleConfig string
