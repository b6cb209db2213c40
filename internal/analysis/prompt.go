package analysis

import (
	"fmt"
	"os"
	"strings"
)

// DefaultSystemPrompt is used when no prompt override file exists.
const DefaultSystemPrompt = `You are a professional news analyst. Analyze the provided trending
headlines with a focus on:
1. International affairs
2. Major domestic events
3. High-impact social news

Output the analysis directly, in plain prose, without any particular format.`

// LoadSystemPrompt returns the system prompt, preferring the override file
// at path when it exists. The override is trimmed of surrounding whitespace;
// an empty or missing file falls back to the default.
func LoadSystemPrompt(path string) (prompt string, custom bool) {
	if path == "" {
		return DefaultSystemPrompt, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultSystemPrompt, false
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return DefaultSystemPrompt, false
	}

	return trimmed, true
}

// BuildUserPrompt embeds at most maxTitles entries into the analysis request.
// The cap keeps prompts inside the provider's token limits.
func BuildUserPrompt(entries []string, maxTitles int) string {
	if maxTitles > 0 && len(entries) > maxTitles {
		entries = entries[:maxTitles]
	}

	return fmt.Sprintf(`Analyze the following trending headlines:

%s

Output the analysis directly.`, strings.Join(entries, "\n"))
}
