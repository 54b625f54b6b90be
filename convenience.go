// File: lixenwraith/goodconf/convenience.go
package goodconf

import (
	"fmt"
	"io"
	"reflect"
)

// Quick creates a fully configured Config instance with a single call
// This is the recommended way to initialize configuration for most applications
func Quick(structDefaults any, envPrefix, configFile string) (*Config, error) {
	opts := DefaultLoadOptions()
	opts.EnvPrefix = envPrefix
	return QuickCustom(structDefaults, opts, configFile)
}

// QuickCustom creates a Config with custom options
func QuickCustom(structDefaults any, opts LoadOptions, configFile string) (*Config, error) {
	cfg := NewWithOptions(opts)

	// Register defaults from struct if provided
	if structDefaults != nil {
		if err := cfg.RegisterStruct("", structDefaults); err != nil {
			return nil, fmt.Errorf("failed to register defaults: %w", err)
		}
	}

	// A named file must exist; an empty configFile loads env and defaults only
	if err := cfg.LoadWithOptions(configFile, nil, opts); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// MustQuick is like Quick but panics on error
func MustQuick(structDefaults any, envPrefix, configFile string) *Config {
	cfg, err := Quick(structDefaults, envPrefix, configFile)
	if err != nil {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
	return cfg
}

// Load declares the schema from target, a struct pointer, loads the first
// existing file among files (searched upward from the working directory),
// the environment under envPrefix and the defaults, and fills target.
// Finding no file is not an error.
func Load(target any, envPrefix string, files ...string) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a non-nil pointer to a struct, got %T", target)
	}

	return NewBuilder().
		WithEnvPrefix(envPrefix).
		WithFileDiscovery(FileDiscoveryOptions{DefaultFiles: files, SearchParents: true}).
		BuildAndScan(target)
}

// Dump writes the current configuration to w in the given format
func (c *Config) Dump(w io.Writer, format Format) error {
	content, err := render(format, c.templateTree(currentPicker), c.Description())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, content)
	return err
}

// Clone creates a deep copy of the configuration schema and its loaded values
func (c *Config) Clone() *Config {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	clone := NewWithOptions(c.options)
	clone.order = append([]string(nil), c.order...)
	clone.description = c.description
	clone.tagName = c.tagName
	clone.configFilePath = c.configFilePath
	clone.structType = c.structType
	clone.structPrefix = c.structPrefix
	clone.logger = c.logger

	for path, desc := range c.tables {
		clone.tables[path] = desc
	}

	// Deep copy items
	for path, item := range c.items {
		newItem := item
		newItem.values = make(map[Source]any, len(item.values))
		for source, value := range item.values {
			newItem.values[source] = value
		}
		clone.items[path] = newItem
	}

	return clone
}
