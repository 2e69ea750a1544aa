package knowledge

import "strings"

func cleanMarkdownOutput(text string) string {
	text = strings.TrimSpace(text)
	for _, fence := range []string{"```markdown", "```"} {
		if strings.HasPrefix(text, fence) {
			text = strings.TrimPrefix(text, fence)
			text = strings.TrimSuffix(text, "```")
			break
		}
	}
	return strings.TrimSpace(text)
}
