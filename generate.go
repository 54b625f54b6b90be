package goodconf

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Initial returns the value each field would be written with in a template,
// keyed by path. Overrides replace the initial value of registered paths;
// unknown override keys are ignored.
func (c *Config) Initial(overrides map[string]any) map[string]any {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	initial := make(map[string]any, len(c.order))
	for _, path := range c.order {
		if value, ok := overrides[path]; ok {
			initial[path] = value
			continue
		}
		initial[path] = initialValue(c.items[path])
	}
	return initial
}

// templateNode is one key of the generated document.
type templateNode struct {
	key         string
	description string
	value       any             // leaf value, already plain
	children    []*templateNode // non-nil for tables
	table       bool
}

// valuePicker selects the value written for an item; false leaves it out.
// It runs under the read lock.
type valuePicker func(path string, item configItem) (any, bool)

// initialPicker writes overrides first, then initial values.
func initialPicker(overrides map[string]any) valuePicker {
	return func(path string, item configItem) (any, bool) {
		if value, ok := overrides[path]; ok {
			return value, true
		}
		return initialValue(item), true
	}
}

// currentPicker writes resolved values, skipping unresolved required fields.
func currentPicker(path string, item configItem) (any, bool) {
	return item.currentValue, item.source != ""
}

// sourcePicker writes only the raw values supplied by one source.
func sourcePicker(source Source) valuePicker {
	return func(path string, item configItem) (any, bool) {
		value, ok := item.values[source]
		return value, ok
	}
}

// templateTree snapshots the schema as a tree in declaration order.
func (c *Config) templateTree(pick valuePicker) *templateNode {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	root := &templateNode{table: true}
	for _, path := range c.order {
		item := c.items[path]
		value, ok := pick(path, item)
		if !ok {
			continue
		}

		segments := strings.Split(path, ".")
		parent := root
		for i, segment := range segments[:len(segments)-1] {
			parent = parent.child(segment, c.tables[strings.Join(segments[:i+1], ".")])
		}
		parent.children = append(parent.children, &templateNode{
			key:         segments[len(segments)-1],
			description: item.field.Description,
			value:       plainValue(value, c.tagName),
		})
	}
	return root
}

// child returns the table child named key, creating it if needed.
func (n *templateNode) child(key, description string) *templateNode {
	for _, ch := range n.children {
		if ch.key == key && ch.table {
			return ch
		}
	}
	ch := &templateNode{key: key, description: description, table: true}
	n.children = append(n.children, ch)
	return ch
}

// ordered converts the tree to nested ordered maps.
func (n *templateNode) ordered() *orderedMap {
	m := newOrderedMap()
	for _, ch := range n.children {
		if ch.table {
			m.set(ch.key, ch.ordered())
		} else {
			m.set(ch.key, ch.value)
		}
	}
	return m
}

// Generate renders a documented template in the given format.
func (c *Config) Generate(format Format, overrides map[string]any) (string, error) {
	return render(format, c.templateTree(initialPicker(overrides)), c.Description())
}

func render(format Format, tree *templateNode, title string) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(tree)
	case FormatYAML:
		return renderYAML(tree, title)
	case FormatTOML:
		return renderTOML(tree, title)
	}
	return "", fmt.Errorf("unsupported format %q", format)
}

// GenerateJSON dumps the initial configuration as indented JSON.
// JSON has no comments, so descriptions are not included.
func (c *Config) GenerateJSON(overrides map[string]any) (string, error) {
	return renderJSON(c.templateTree(initialPicker(overrides)))
}

// GenerateYAML dumps the initial configuration as YAML, with the schema
// description as a header comment and field descriptions above their keys.
func (c *Config) GenerateYAML(overrides map[string]any) (string, error) {
	return renderYAML(c.templateTree(initialPicker(overrides)), c.Description())
}

// GenerateTOML dumps the initial configuration as TOML, with the schema
// description as a header comment and field descriptions after their values.
func (c *Config) GenerateTOML(overrides map[string]any) (string, error) {
	return renderTOML(c.templateTree(initialPicker(overrides)), c.Description())
}

func renderJSON(tree *templateNode) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tree.ordered()); err != nil {
		return "", fmt.Errorf("failed to marshal config to JSON: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func renderYAML(tree *templateNode, title string) (string, error) {
	mapping, err := yamlMapping(tree)
	if err != nil {
		return "", err
	}
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mapping}}
	if title != "" {
		doc.HeadComment = commentBlock(title)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	return buf.String(), nil
}

func yamlMapping(n *templateNode) (*yaml.Node, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, ch := range n.children {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: ch.key}
		if ch.description != "" {
			key.HeadComment = commentBlock(ch.description)
		}

		var value *yaml.Node
		var err error
		if ch.table {
			value, err = yamlMapping(ch)
		} else {
			value, err = yamlValue(ch.value)
		}
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", ch.key, err)
		}
		mapping.Content = append(mapping.Content, key, value)
	}
	return mapping, nil
}

// yamlValue encodes a plain value, writing nil as "~".
func yamlValue(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "~"}, nil
	case *orderedMap:
		mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range val.keys {
			child, err := yamlValue(val.values[k])
			if err != nil {
				return nil, err
			}
			mapping.Content = append(mapping.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, child)
		}
		return mapping, nil
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			child, err := yamlValue(item)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, child)
		}
		return seq, nil
	}

	node := &yaml.Node{}
	if err := node.Encode(v); err != nil {
		return nil, err
	}
	return node, nil
}

// commentBlock prefixes every line of text with "# ".
func commentBlock(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight("# "+strings.TrimSpace(line), " ")
	}
	return strings.Join(lines, "\n")
}

// plainValue reduces a Go value to the data model shared by the renderers:
// nil, bool, integers, floats, strings, []any and *orderedMap. Durations,
// text marshalers and stringers become strings; structs become ordered maps
// keyed by tagName.
func plainValue(v any, tagName string) any {
	if v == nil {
		return nil
	}

	switch val := v.(type) {
	case time.Duration:
		return val.String()
	case time.Time:
		return val.Format(time.RFC3339)
	case []byte:
		return string(val)
	case encoding.TextMarshaler:
		if text, err := val.MarshalText(); err == nil {
			return string(text)
		}
	case fmt.Stringer:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Ptr || !rv.IsNil() {
			return val.String()
		}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return plainValue(rv.Elem().Interface(), tagName)

	case reflect.Struct:
		// Value structs like url.URL only implement Stringer on the pointer.
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		if s, ok := ptr.Interface().(fmt.Stringer); ok {
			return s.String()
		}
		m := newOrderedMap()
		t := rv.Type()
		for i := 0; i < rv.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			key := field.Name
			if tag := strings.Split(field.Tag.Get(tagName), ",")[0]; tag == "-" {
				continue
			} else if tag != "" {
				key = tag
			}
			m.set(key, plainValue(rv.Field(i).Interface(), tagName))
		}
		return m

	case reflect.Map:
		if rv.IsNil() {
			return newOrderedMap()
		}
		keys := make([]string, 0, rv.Len())
		values := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := fmt.Sprint(iter.Key().Interface())
			keys = append(keys, k)
			values[k] = plainValue(iter.Value().Interface(), tagName)
		}
		sort.Strings(keys)
		m := newOrderedMap()
		for _, k := range keys {
			m.set(k, values[k])
		}
		return m

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}
		}
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = plainValue(rv.Index(i).Interface(), tagName)
		}
		return items

	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	}

	return fmt.Sprint(v)
}
