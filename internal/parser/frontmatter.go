package parser

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

// frontmatterEnd returns the index of the first line after a leading YAML
// frontmatter block, or 0 when the document has none. A block without a
// closing delimiter or with invalid YAML is not frontmatter.
func frontmatterEnd(lines []string) int {
	if len(lines) == 0 || strings.TrimRight(lines[0], " \r") != frontmatterDelim {
		return 0
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \r") != frontmatterDelim {
			continue
		}
		var fm map[string]any
		block := strings.Join(lines[1:i], "\n")
		if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
			return 0
		}
		return i + 1
	}
	return 0
}
