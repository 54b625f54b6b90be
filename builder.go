// File: lixenwraith/goodconf/builder.go
package goodconf

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ValidatorFunc defines the signature for a function that can validate a Config instance.
// It receives the fully loaded *Config object and should return an error if validation fails.
type ValidatorFunc func(c *Config) error

// Builder provides a fluent interface for building configurations
type Builder struct {
	cfg          *Config
	opts         LoadOptions
	defaults     any
	target       any
	prefix       string
	tagName      string
	description  string
	file         string
	fileEnvVar   string
	defaultFiles []string
	discovery    *FileDiscoveryOptions
	overrides    map[string]any
	initials     []initialSpec
	logger       *zerolog.Logger
	err          error
	validators   []ValidatorFunc
}

type initialSpec struct {
	path string
	fn   InitialFunc
}

// NewBuilder creates a new configuration builder
func NewBuilder() *Builder {
	return &Builder{
		cfg:        New(),
		opts:       DefaultLoadOptions(),
		validators: make([]ValidatorFunc, 0),
	}
}

// WithDefaults sets the struct containing default values
func (b *Builder) WithDefaults(defaults any) *Builder {
	b.defaults = defaults
	return b
}

// WithTarget sets a struct pointer that declares the schema and receives the
// loaded values once Build succeeds. Its current field values act as defaults
// unless WithDefaults is also given.
func (b *Builder) WithTarget(target any) *Builder {
	if target == nil {
		b.err = errors.New("target cannot be nil")
		return b
	}
	b.target = target
	return b
}

// WithPrefix sets the prefix for struct registration
func (b *Builder) WithPrefix(prefix string) *Builder {
	b.prefix = prefix
	return b
}

// WithTagName sets the struct tag used for keys (toml, json or yaml)
func (b *Builder) WithTagName(tagName string) *Builder {
	b.tagName = tagName
	return b
}

// WithDescription sets the schema title, replacing one supplied by a Describer
func (b *Builder) WithDescription(description string) *Builder {
	b.description = description
	return b
}

// WithEnvPrefix sets the environment variable prefix
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.opts.EnvPrefix = prefix
	return b
}

// WithEnvTransform sets a custom environment variable transformer
func (b *Builder) WithEnvTransform(fn EnvTransformFunc) *Builder {
	b.opts.EnvTransform = fn
	return b
}

// WithEnvWhitelist limits which paths are checked for env vars
func (b *Builder) WithEnvWhitelist(paths ...string) *Builder {
	if b.opts.EnvWhitelist == nil {
		b.opts.EnvWhitelist = make(map[string]bool)
	}
	for _, path := range paths {
		b.opts.EnvWhitelist[path] = true
	}
	return b
}

// WithFile sets the configuration file path. It takes precedence over
// every other discovery setting.
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithFileEnvVar names an environment variable that may hold the file path
func (b *Builder) WithFileEnvVar(name string) *Builder {
	b.fileEnvVar = name
	return b
}

// WithDefaultFiles sets candidate files tried in order when no path is given
func (b *Builder) WithDefaultFiles(files ...string) *Builder {
	b.defaultFiles = append(b.defaultFiles, files...)
	return b
}

// WithFileDiscovery replaces the file discovery settings entirely
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	b.discovery = &opts
	return b
}

// WithOverrides sets explicit values, the highest-precedence source by default
func (b *Builder) WithOverrides(overrides map[string]any) *Builder {
	if b.overrides == nil {
		b.overrides = make(map[string]any, len(overrides))
	}
	for k, v := range overrides {
		b.overrides[k] = v
	}
	return b
}

// WithSources sets the precedent order for configuration sources
func (b *Builder) WithSources(sources ...Source) *Builder {
	b.opts.Sources = sources
	return b
}

// WithInitial attaches an initial-value generator used by generated templates
func (b *Builder) WithInitial(path string, fn InitialFunc) *Builder {
	b.initials = append(b.initials, initialSpec{path: path, fn: fn})
	return b
}

// WithLogger sets the logger for discovery and load decisions
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = &logger
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build creates the Config instance with all specified options.
// A file named by WithFile or by the file environment variable must exist,
// otherwise Build fails with an error wrapping ErrConfigNotFound. Finding none
// of the default files is not an error.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.logger != nil {
		b.cfg.SetLogger(*b.logger)
	}
	if b.tagName != "" {
		if err := b.cfg.SetTagName(b.tagName); err != nil {
			return nil, err
		}
	}

	// Register the schema
	schema := b.defaults
	if schema == nil {
		schema = b.target
	}
	if schema != nil {
		if err := b.cfg.RegisterStruct(b.prefix, schema); err != nil {
			return nil, fmt.Errorf("failed to register defaults: %w", err)
		}
	}
	if b.description != "" {
		b.cfg.SetDescription(b.description)
	}
	for _, initial := range b.initials {
		if err := b.cfg.SetInitial(initial.path, initial.fn); err != nil {
			return nil, err
		}
	}

	// Locate the file; only an explicitly chosen one can be missing
	path, err := findConfigFile(b.discoveryOptions(), b.cfg.logger)
	if err != nil {
		return nil, err
	}

	// Load configuration
	if err := b.cfg.LoadWithOptions(path, b.overrides, b.opts); err != nil {
		return nil, err
	}

	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	// Run validators
	for _, validator := range b.validators {
		if err := validator(b.cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	if b.target != nil {
		if err := b.cfg.Scan(b.prefix, b.target); err != nil {
			return nil, fmt.Errorf("failed to scan final config into target: %w", err)
		}
	}

	return b.cfg, nil
}

// discoveryOptions merges the individual file settings over WithFileDiscovery.
func (b *Builder) discoveryOptions() FileDiscoveryOptions {
	var opts FileDiscoveryOptions
	if b.discovery != nil {
		opts = *b.discovery
	}
	if b.file != "" {
		opts.Path = b.file
	}
	if b.fileEnvVar != "" {
		opts.EnvVar = b.fileEnvVar
	}
	if len(b.defaultFiles) > 0 {
		opts.DefaultFiles = b.defaultFiles
	}
	return opts
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Config {
	cfg, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("config build failed: %v", err))
	}
	return cfg
}

// BuildAndScan builds and unmarshals the final configuration into the provided target struct pointer
func (b *Builder) BuildAndScan(target any) error {
	if b.defaults == nil && b.target == nil {
		b.target = target
	}
	cfg, err := b.Build()
	if err != nil {
		return err
	}

	// Use Scan to populate the target struct.
	// The prefix used during registration is the base path for scanning.
	if err := cfg.Scan(b.prefix, target); err != nil {
		return fmt.Errorf("failed to scan final config into target: %w", err)
	}
	return nil
}
