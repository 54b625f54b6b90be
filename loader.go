// FILE: lixenwraith/goodconf/loader.go
package goodconf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Source represents a configuration source, used to define load precedence
type Source string

const (
	// SourceOverride represents values passed explicitly by the application
	SourceOverride Source = "override"
	// SourceFile represents values loaded from a configuration file
	SourceFile Source = "file"
	// SourceEnv represents values loaded from environment variables
	SourceEnv Source = "env"
	// SourceDefault represents use of registered default values
	SourceDefault Source = "default"
)

// Format is a configuration file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DefaultMaxFileSize caps configuration files unless LoadOptions.MaxFileSize is set.
const DefaultMaxFileSize = 10 << 20

// EnvTransformFunc converts a configuration path to an environment variable name
type EnvTransformFunc func(path string) string

// LoadOptions configures how configuration is loaded from multiple sources
type LoadOptions struct {
	// Sources defines the precedence order (first = highest priority)
	// Default: [SourceOverride, SourceFile, SourceEnv, SourceDefault]
	Sources []Source

	// EnvPrefix is prepended to environment variable names
	// Example: "MYAPP_" transforms "server.port" to "MYAPP_SERVER_PORT"
	EnvPrefix string

	// EnvTransform customizes how paths map to environment variables
	// If nil, uses default transformation (dots to underscores, uppercase)
	EnvTransform EnvTransformFunc

	// EnvWhitelist limits which paths are checked for env vars (nil = all)
	EnvWhitelist map[string]bool

	// EnvCaseSensitive disables case-insensitive environment lookup
	EnvCaseSensitive bool

	// FileFormat forces a file format; empty detects it from the extension
	FileFormat Format

	// MaxFileSize rejects larger files (0 = DefaultMaxFileSize)
	MaxFileSize int64
}

// DefaultLoadOptions returns the standard load options
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Sources: []Source{SourceOverride, SourceFile, SourceEnv, SourceDefault},
	}
}

// Load reads the configuration file and the environment, and applies
// overrides, using the stored load options.
func (c *Config) Load(filePath string, overrides map[string]any) error {
	c.mutex.RLock()
	opts := c.options
	c.mutex.RUnlock()
	return c.LoadWithOptions(filePath, overrides, opts)
}

// LoadWithOptions loads configuration from every source with custom options.
// A missing file yields ErrConfigNotFound joined into the returned error;
// unreadable or malformed files and unknown override keys are fatal.
func (c *Config) LoadWithOptions(filePath string, overrides map[string]any, opts LoadOptions) error {
	c.mutex.Lock()
	c.options = opts
	logger := c.logger
	c.mutex.Unlock()

	var loadErrors []error

	// Each source fills its own layer; precedence is applied when values are computed.
	for i := len(opts.Sources) - 1; i >= 0; i-- {
		switch opts.Sources[i] {
		case SourceDefault:
			// Defaults are already in place from Register calls
			continue

		case SourceFile:
			if filePath == "" {
				logger.Info().Msg("no config file specified, loading from environment")
				continue
			}
			if err := c.loadFile(filePath, opts); err != nil {
				if !errors.Is(err, ErrConfigNotFound) {
					return err
				}
				loadErrors = append(loadErrors, err)
			}

		case SourceEnv:
			if err := c.loadEnv(opts); err != nil {
				loadErrors = append(loadErrors, err)
			}

		case SourceOverride:
			if err := c.loadOverrides(overrides); err != nil {
				return err
			}
		}
	}

	return errors.Join(loadErrors...)
}

// LoadEnv loads configuration values from environment variables
func (c *Config) LoadEnv(prefix string) error {
	c.mutex.RLock()
	opts := c.options
	c.mutex.RUnlock()

	opts.EnvPrefix = prefix
	return c.loadEnv(opts)
}

// LoadFile loads configuration values from a JSON, YAML or TOML file
func (c *Config) LoadFile(filePath string) error {
	c.mutex.RLock()
	opts := c.options
	c.mutex.RUnlock()

	return c.loadFile(filePath, opts)
}

// LoadOverrides replaces the override layer. Keys may be dotted paths or
// nested maps; unregistered keys are rejected with ErrUnknownField.
func (c *Config) LoadOverrides(overrides map[string]any) error {
	return c.loadOverrides(overrides)
}

// loadFile reads and parses a configuration file into the file layer
func (c *Config) loadFile(path string, opts LoadOptions) error {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to stat config file '%s': %w", path, err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("config path '%s' is a directory", path)
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if fileInfo.Size() > maxSize {
		return fmt.Errorf("%w: '%s' is %d bytes (limit %d)", ErrFileTooLarge, path, fileInfo.Size(), maxSize)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file '%s': %w", path, err)
	}
	defer file.Close()

	fileData, err := io.ReadAll(io.LimitReader(file, maxSize))
	if err != nil {
		return fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	format := opts.FileFormat
	if format == "" {
		format = detectFileFormat(path)
	}

	fileConfig, err := parseFileData(fileData, format)
	if err != nil {
		return fmt.Errorf("failed to parse %s config file '%s': %w", strings.ToUpper(string(format)), path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	c.mutex.RLock()
	registered := make(map[string]bool, len(c.items))
	for p := range c.items {
		registered[p] = true
	}
	logger := c.logger
	c.mutex.RUnlock()

	found, unknown := collectRegistered(fileConfig, registered)
	logger.Info().Str("path", absPath).Str("format", string(format)).Msg("loading config file")
	if len(unknown) > 0 {
		sort.Strings(unknown)
		logger.Debug().Strs("keys", unknown).Msg("ignoring unknown keys in config file")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.configFilePath = absPath
	c.replaceLayer(SourceFile, found)
	return nil
}

// loadEnv loads configuration from environment variables into the env layer
func (c *Config) loadEnv(opts LoadOptions) error {
	c.mutex.RLock()
	names := make(map[string]string, len(c.items))
	for path, item := range c.items {
		if opts.EnvWhitelist != nil && !opts.EnvWhitelist[path] {
			continue
		}
		names[path] = envNameFor(item.field, opts)
	}
	c.mutex.RUnlock()

	lookup := envLookup(opts.EnvCaseSensitive)

	found := make(map[string]any)
	for path, name := range names {
		value, exists := lookup(name)
		if !exists {
			continue
		}
		if len(value) > MaxValueSize {
			return fmt.Errorf("%w: %s", ErrValueSize, name)
		}
		found[path] = value
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.replaceLayer(SourceEnv, found)
	return nil
}

// loadOverrides stores explicit values into the override layer
func (c *Config) loadOverrides(overrides map[string]any) error {
	c.mutex.RLock()
	registered := make(map[string]bool, len(c.items))
	for p := range c.items {
		registered[p] = true
	}
	c.mutex.RUnlock()

	found, unknown := collectRegistered(overrides, registered)
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(unknown, ", "))
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.replaceLayer(SourceOverride, found)
	return nil
}

// replaceLayer swaps the values of one source for every item and recomputes.
// Caller must hold the write lock.
func (c *Config) replaceLayer(source Source, values map[string]any) {
	for path, item := range c.items {
		if value, exists := values[path]; exists {
			if item.values == nil {
				item.values = make(map[Source]any)
			}
			item.values[source] = value
		} else {
			delete(item.values, source)
		}
		c.items[path] = item
		c.refresh(path)
	}
}

// DiscoverEnv finds all environment variables matching registered paths
// and returns a map of path -> env var name for found variables
func (c *Config) DiscoverEnv(prefix string) map[string]string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	opts := c.options
	opts.EnvPrefix = prefix
	lookup := envLookup(opts.EnvCaseSensitive)

	discovered := make(map[string]string)
	for path, item := range c.items {
		envVar := envNameFor(item.field, opts)
		if _, exists := lookup(envVar); exists {
			discovered[path] = envVar
		}
	}

	return discovered
}

// EnvName returns the environment variable consulted for a path.
func (c *Config) EnvName(path string) (string, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, registered := c.items[path]
	if !registered {
		return "", false
	}
	return envNameFor(item.field, c.options), true
}

// envNameFor resolves the variable name of a field: explicit name first,
// then the configured transform, then the default transform.
func envNameFor(f Field, opts LoadOptions) string {
	if f.Env != "" {
		return f.Env
	}
	if opts.EnvTransform != nil {
		return opts.EnvTransform(f.Path)
	}
	return defaultEnvTransform(opts.EnvPrefix)(f.Path)
}

// defaultEnvTransform creates the default environment variable transformer
func defaultEnvTransform(prefix string) EnvTransformFunc {
	return func(path string) string {
		env := strings.ReplaceAll(path, ".", "_")
		env = strings.ReplaceAll(env, "-", "_")
		env = strings.ToUpper(env)
		if prefix != "" {
			env = prefix + env
		}
		return env
	}
}

// envLookup returns an environment lookup. The case-insensitive variant
// prefers an exact match and falls back to the first variable whose name
// matches ignoring case.
func envLookup(caseSensitive bool) func(string) (string, bool) {
	if caseSensitive {
		return os.LookupEnv
	}

	folded := make(map[string]string)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		key := strings.ToUpper(name)
		if _, seen := folded[key]; !seen {
			folded[key] = value
		}
	}

	return func(name string) (string, bool) {
		if value, ok := os.LookupEnv(name); ok {
			return value, true
		}
		value, ok := folded[strings.ToUpper(name)]
		return value, ok
	}
}

// parseFileData decodes file content. Whitespace-only content is an empty mapping.
func parseFileData(data []byte, format Format) (map[string]any, error) {
	fileConfig := make(map[string]any)
	if len(bytes.TrimSpace(data)) == 0 {
		return fileConfig, nil
	}

	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &fileConfig); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, err
		}
		if fileConfig == nil {
			fileConfig = make(map[string]any)
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve number precision
		if err := decoder.Decode(&fileConfig); err != nil {
			return nil, err
		}
		if fileConfig == nil {
			fileConfig = make(map[string]any)
		}
		normalizeNumbers(fileConfig)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	return fileConfig, nil
}

// normalizeNumbers converts json.Number to int64 or float64 in place.
func normalizeNumbers(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		for k, item := range v {
			v[k] = normalizeNumbers(item)
		}
	case []any:
		for i, item := range v {
			v[i] = normalizeNumbers(item)
		}
	}
	return value
}

// detectFileFormat determines format from file extension.
// Unknown extensions are read as JSON.
func detectFileFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}
