package goodconf

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GenerateMarkdown documents the schema as a Markdown list, one entry per
// field in declaration order:
//
//	# <title>
//
//	* **<path>** _REQUIRED_
//	  * description: <description>
//	  * type: `<type>`
//	  * default: `<default>`
//	  * env: `<ENV_NAME>`
//
// The title line is present only when the schema has a description. The
// default line is left out for nil defaults and default factories.
func (c *Config) GenerateMarkdown() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var lines []string
	if c.description != "" {
		lines = append(lines, "# "+c.description, "")
	}

	for _, path := range c.order {
		item := c.items[path]
		f := item.field

		entry := fmt.Sprintf("* **%s**", path)
		if f.Required {
			entry += " _REQUIRED_"
		}
		lines = append(lines, entry)

		if f.Description != "" {
			lines = append(lines, "  * description: "+f.Description)
		}
		lines = append(lines, fmt.Sprintf("  * type: `%s`", f.TypeName()))
		// Factory defaults are computed, so there is no fixed value to document.
		if !f.Required && f.DefaultFunc == nil && !isNilValue(item.defaultValue) {
			lines = append(lines, fmt.Sprintf("  * default: `%s`", markdownValue(plainValue(item.defaultValue, c.tagName))))
		}
		lines = append(lines, fmt.Sprintf("  * env: `%s`", envNameFor(f, c.options)))
	}

	return strings.Join(lines, "\n")
}

// markdownValue renders a plain value on one line: scalars as-is, lists and
// tables as compact JSON.
func markdownValue(v any) string {
	switch v.(type) {
	case *orderedMap, []any:
		data, err := json.Marshal(v)
		if err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(v)
}
