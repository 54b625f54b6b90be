// File: lixenwraith/goodconf/helper.go
package goodconf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// validatePath checks that every dot-separated segment is a TOML bare key.
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: registration path cannot be empty", ErrInvalidPath)
	}
	for _, segment := range strings.Split(path, ".") {
		if !isValidKeySegment(segment) {
			return fmt.Errorf("%w: invalid path segment %q in path %q", ErrInvalidPath, segment, path)
		}
	}
	return nil
}

// setNestedValue sets a value in a nested map using a dot-notation path.
// It creates intermediate maps if they don't exist.
// If a segment exists but is not a map, it will be overwritten by a new map.
func setNestedValue(nested map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := nested

	for i := 0; i < len(segments)-1; i++ {
		segment := segments[i]

		if nextMap, isMap := current[segment].(map[string]any); isMap {
			current = nextMap
			continue
		}
		newMap := make(map[string]any)
		current[segment] = newMap
		current = newMap
	}

	current[segments[len(segments)-1]] = value
}

// navigateToPath traverses nested map to reach the specified path
func navigateToPath(nested map[string]any, path string) any {
	path = strings.TrimSuffix(path, ".")
	if path == "" {
		return nested
	}

	current := any(nested)
	for _, segment := range strings.Split(path, ".") {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		value, exists := currentMap[segment]
		if !exists {
			return nil
		}
		current = value
	}

	return current
}

// collectRegistered walks decoded source data and picks the values of
// registered paths. A registered path takes its value as-is even when that
// value is a map, so map-typed fields are not split into children. Keys that
// match nothing are returned as unknown.
func collectRegistered(data map[string]any, registered map[string]bool) (found map[string]any, unknown []string) {
	found = make(map[string]any)

	var walk func(prefix string, data map[string]any)
	walk = func(prefix string, data map[string]any) {
		for key, value := range data {
			fullPath := key
			if prefix != "" {
				fullPath = prefix + "." + key
			}
			if registered[fullPath] {
				found[fullPath] = value
				continue
			}
			if subMap, isMap := asStringMap(value); isMap {
				walk(fullPath, subMap)
				continue
			}
			unknown = append(unknown, fullPath)
		}
	}
	walk("", data)

	return found, unknown
}

// asStringMap normalizes the map shapes produced by the YAML and TOML decoders.
func asStringMap(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		converted := make(map[string]any, len(m))
		for k, v := range m {
			converted[fmt.Sprint(k)] = v
		}
		return converted, true
	}
	return nil, false
}

// isValidKeySegment checks if a single path segment is a valid TOML key part.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}

	// TOML bare keys are sequences of ASCII letters, ASCII digits, underscores, and dashes (A-Za-z0-9_-).
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isUnderscore := r == '_'
		isDash := r == '-'

		if !(isLetter || isDigit || isUnderscore || isDash) {
			return false
		}
	}
	return true
}

// orderedMap is a string-keyed map that remembers insertion order, used to
// keep declaration order in generated files.
type orderedMap struct {
	keys   []string
	values map[string]any
}

func newOrderedMap() *orderedMap {
	return &orderedMap{values: make(map[string]any)}
}

func (m *orderedMap) set(key string, value any) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// MarshalJSON writes the keys in insertion order.
func (m *orderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	out := []byte{'{'}
	for i, key := range m.keys {
		if i > 0 {
			out = append(out, ',')
		}
		buf.Reset()
		if err := enc.Encode(key); err != nil {
			return nil, err
		}
		out = append(out, bytes.TrimSpace(buf.Bytes())...)
		out = append(out, ':')

		buf.Reset()
		if err := enc.Encode(m.values[key]); err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		out = append(out, bytes.TrimSpace(buf.Bytes())...)
	}
	return append(out, '}'), nil
}
