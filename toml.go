package goodconf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// renderTOML writes the tree as TOML. Leaves carry their description as a
// trailing comment, tables as a comment above the header. TOML has no null,
// so nil leaves are left out.
func renderTOML(tree *templateNode, title string) (string, error) {
	var b strings.Builder
	if title != "" {
		b.WriteString(commentBlock(title))
		b.WriteString("\n")
	}
	if err := writeTOMLTable(&b, tree, ""); err != nil {
		return "", fmt.Errorf("failed to marshal config to TOML: %w", err)
	}
	return b.String(), nil
}

func writeTOMLTable(b *strings.Builder, n *templateNode, path string) error {
	if path != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		if n.description != "" {
			b.WriteString(commentBlock(n.description))
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "[%s]\n", path)
	}

	// Leaves must precede sub-tables, or they would land in the last table.
	for _, ch := range n.children {
		if ch.table || ch.value == nil {
			continue
		}
		value, err := tomlValue(ch.value)
		if err != nil {
			return fmt.Errorf("key %q: %w", ch.key, err)
		}
		fmt.Fprintf(b, "%s = %s", ch.key, value)
		if ch.description != "" {
			b.WriteString(" # ")
			b.WriteString(strings.Join(strings.Fields(ch.description), " "))
		}
		b.WriteString("\n")
	}

	for _, ch := range n.children {
		if !ch.table {
			continue
		}
		childPath := ch.key
		if path != "" {
			childPath = path + "." + ch.key
		}
		if err := writeTOMLTable(b, ch, childPath); err != nil {
			return err
		}
	}
	return nil
}

// tomlValue renders a plain value inline. Maps and structs become inline
// tables; nil elements are dropped.
func tomlValue(v any) (string, error) {
	switch val := v.(type) {
	case *orderedMap:
		if len(val.keys) == 0 {
			return "{}", nil
		}
		parts := make([]string, 0, len(val.keys))
		for _, k := range val.keys {
			if val.values[k] == nil {
				continue
			}
			item, err := tomlValue(val.values[k])
			if err != nil {
				return "", err
			}
			parts = append(parts, tomlKey(k)+" = "+item)
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil

	case []any:
		parts := make([]string, 0, len(val))
		for _, elem := range val {
			if elem == nil {
				continue
			}
			item, err := tomlValue(elem)
			if err != nil {
				return "", err
			}
			parts = append(parts, item)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	}
	return tomlScalar(v)
}

// tomlScalar lets the TOML encoder format a single value by encoding a
// one-key document and cutting off the key.
func tomlScalar(v any) (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(map[string]any{"v": v}); err != nil {
		return "", err
	}
	line := strings.TrimSpace(buf.String())
	_, value, ok := strings.Cut(line, " = ")
	if !ok {
		return "", fmt.Errorf("cannot encode %T as a TOML value", v)
	}
	return value, nil
}

func tomlKey(k string) string {
	if isValidKeySegment(k) {
		return k
	}
	quoted, err := tomlScalar(k)
	if err != nil {
		return fmt.Sprintf("%q", k)
	}
	return quoted
}
