package promptstyle

import "strings"

const marker = "COURSEGEN_PROMPT_STYLE_V1"

// Mode selects the output discipline appended to a system prompt.
type Mode string

const (
	ModeText  Mode = "text"
	ModePlain Mode = "plain"
	ModeJSON  Mode = "json"
)

// ApplySystem prepends authoring guidance to a system prompt. It is applied
// once; prompts that already carry the marker are returned unchanged.
func ApplySystem(system string, mode Mode) string {
	base := strings.TrimSpace(system)
	if base == "" || strings.Contains(base, marker) {
		return base
	}

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou write learner-facing course content for an online authoring tool.")
	b.WriteString("\nFollow the system and user instructions precisely.")
	b.WriteString("\nDo not add greetings, analysis, or commentary about the task.")
	switch mode {
	case ModeJSON:
		b.WriteString("\nReturn a single JSON object only. No markdown fences, no prose before or after it.")
	case ModePlain:
		b.WriteString("\nReturn plain text only. Do not use markdown headers, bullets, or code fences.")
	default:
		b.WriteString("\nBe concise and structured when helpful.")
	}
	b.WriteString("\n---\n")
	b.WriteString(base)
	return b.String()
}
