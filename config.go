// File: lixenwraith/goodconf/config.go
package goodconf

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// configItem holds the declaration of a path together with the raw value each
// source supplied and the resolved current value.
type configItem struct {
	field        Field
	defaultValue any
	currentValue any
	source       Source         // source of currentValue, empty when unresolved
	values       map[Source]any // raw values per source
	err          error          // coercion failure of the winning source
}

// Config manages a configuration schema and the values resolved for it.
type Config struct {
	items           map[string]configItem
	order           []string          // declaration order of paths
	tables          map[string]string // nested table path -> description
	description     string
	tagName         string
	options         LoadOptions
	configFilePath  string
	structType      reflect.Type // last struct given to RegisterStruct
	structPrefix    string
	logger          zerolog.Logger
	structValidator *validator.Validate
	mutex           sync.RWMutex
}

// New creates and initializes a new Config instance with default load options.
func New() *Config {
	return NewWithOptions(DefaultLoadOptions())
}

// NewWithOptions creates a new Config instance with custom load options.
func NewWithOptions(opts LoadOptions) *Config {
	c := &Config{
		items:           make(map[string]configItem),
		tables:          make(map[string]string),
		tagName:         DefaultTagName,
		options:         opts,
		logger:          zerolog.Nop(),
		structValidator: validator.New(validator.WithRequiredStructEnabled()),
	}
	c.structValidator.RegisterTagNameFunc(c.tagNameFunc)
	return c
}

// SetLogger replaces the logger used to report discovery and load decisions.
func (c *Config) SetLogger(logger zerolog.Logger) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.logger = logger
}

// SetTagName sets the struct tag used for keys by RegisterStruct and Scan.
func (c *Config) SetTagName(tagName string) error {
	switch tagName {
	case "toml", "json", "yaml":
	default:
		return fmt.Errorf("unsupported tag name %q (use toml, json or yaml)", tagName)
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.tagName = tagName
	return nil
}

// SetDescription sets the schema title used as the header of generated files.
func (c *Config) SetDescription(description string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.description = strings.TrimSpace(description)
}

// Description returns the schema title.
func (c *Config) Description() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.description
}

// ConfigFile returns the absolute path of the last loaded file, or "" if none.
func (c *Config) ConfigFile() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.configFilePath
}

// LoadOptions returns the options used for precedence and environment mapping.
func (c *Config) LoadOptions() LoadOptions {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.options
}

// SetLoadOptions replaces the load options and recomputes every value under
// the new precedence.
func (c *Config) SetLoadOptions(opts LoadOptions) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.options = opts
	for path := range c.items {
		c.refresh(path)
	}
}

// Fields returns the registered fields in declaration order.
func (c *Config) Fields() []Field {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	fields := make([]Field, 0, len(c.order))
	for _, path := range c.order {
		fields = append(fields, c.items[path].field)
	}
	return fields
}

// Get retrieves the resolved, coerced value of a path.
// The second return value indicates if the path was registered.
func (c *Config) Get(path string) (any, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, registered := c.items[path]
	if !registered {
		return nil, false
	}
	return item.currentValue, true
}

// GetSource reports which source supplied the current value of a path.
// It returns "" for unregistered paths and for required fields without a value.
func (c *Config) GetSource(path string) Source {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.items[path].source
}

// GetSources returns the raw value each source supplied for a path.
func (c *Config) GetSources(path string) map[Source]any {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, registered := c.items[path]
	if !registered {
		return nil
	}
	sources := make(map[Source]any, len(item.values))
	for source, value := range item.values {
		sources[source] = value
	}
	return sources
}

// Set stores an explicit override for a registered path.
func (c *Config) Set(path string, value any) error {
	return c.SetSource(path, SourceOverride, value)
}

// SetSource stores a value for a path as if it came from the given source.
// Setting SourceDefault replaces the declared default.
func (c *Config) SetSource(path string, source Source, value any) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	item, registered := c.items[path]
	if !registered {
		return fmt.Errorf("%w: %s", ErrUnknownField, path)
	}

	if source == SourceDefault {
		coerced, err := coerce(value, item.field.Type, c.tagName)
		if err != nil {
			return fmt.Errorf("invalid default for %s: %w", path, err)
		}
		item.defaultValue = coerced
		item.field.Default = coerced
		item.field.Required = false
	} else {
		if item.values == nil {
			item.values = make(map[Source]any)
		}
		item.values[source] = value
	}
	c.items[path] = item
	c.refresh(path)
	return nil
}

// refresh recomputes the current value of a path. Caller must hold the write lock.
func (c *Config) refresh(path string) {
	item, ok := c.items[path]
	if !ok {
		return
	}
	item.currentValue, item.source, item.err = c.computeValue(item)
	c.items[path] = item
}

// computeValue walks the sources in precedence order and returns the first
// available value coerced to the field type.
func (c *Config) computeValue(item configItem) (any, Source, error) {
	for _, source := range c.options.Sources {
		if source == SourceDefault {
			if item.field.Required {
				continue
			}
			return item.defaultValue, SourceDefault, nil
		}
		raw, exists := item.values[source]
		if !exists || (raw == nil && !acceptsNil(item.field)) {
			continue
		}
		value, err := coerce(raw, item.field.Type, c.tagName)
		if err != nil {
			return raw, source, err
		}
		return value, source, nil
	}
	return nil, "", nil
}

// acceptsNil reports whether a null from a source is a value for the field.
// For other fields a null counts as not supplied.
func acceptsNil(f Field) bool {
	if f.Type == nil {
		return !f.Required
	}
	switch f.Type.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return true
	}
	return false
}

// Debug returns a formatted string showing all configuration values and their sources.
func (c *Config) Debug() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	fmt.Fprintf(&b, "Precedence: %v\n", c.options.Sources)
	if c.configFilePath != "" {
		fmt.Fprintf(&b, "File: %s\n", c.configFilePath)
	}
	b.WriteString("Current values:\n")

	for _, path := range c.order {
		item := c.items[path]
		fmt.Fprintf(&b, "  %s:\n", path)
		fmt.Fprintf(&b, "    Current: %v (%s)\n", item.currentValue, item.source)
		if !item.field.Required {
			fmt.Fprintf(&b, "    Default: %v\n", item.defaultValue)
		}
		for _, source := range c.options.Sources {
			if value, ok := item.values[source]; ok {
				fmt.Fprintf(&b, "    %s: %v\n", source, value)
			}
		}
		if item.err != nil {
			fmt.Fprintf(&b, "    Error: %v\n", item.err)
		}
	}

	return b.String()
}
