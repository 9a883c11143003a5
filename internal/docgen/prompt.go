package docgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a technical writer producing Go doc comments.

Given the source of a single Go function, write the doc comment that should precede it. Follow Go conventions: start with the function name, use complete sentences, and describe the behavior, parameters, and return values a caller needs to know about. Keep it to a few lines.

Return only the comment text as plain prose. Do not include comment markers, quotes, code fences, or the function source.`

func userPrompt(funcSrc string) string {
	return fmt.Sprintf("Write the doc comment for this Go function:\n\n%s", funcSrc)
}

// cleanResponse strips the wrappers models like to add around prose:
// code fences, triple quotes, and surrounding whitespace.
func cleanResponse(s string) string {
	s = strings.ReplaceAll(s, "```go", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"""`)
	s = strings.TrimSuffix(s, `"""`)
	return strings.TrimSpace(s)
}

// commentLines splits a cleaned response into comment lines. Models
// sometimes return text already marked up as a comment, so leading
// slashes are stripped rather than doubled up.
func commentLines(s string) []string {
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if rest, ok := strings.CutPrefix(l, "//"); ok {
			l = strings.TrimPrefix(rest, " ")
		}
		lines = append(lines, l)
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
