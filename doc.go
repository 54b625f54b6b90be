// File: lixenwraith/goodconf/doc.go

// Package goodconf provides declarative, thread-safe configuration for Go
// applications. A schema is declared once as a Go struct; values are loaded
// from explicit overrides, a JSON, YAML or TOML file, environment variables
// and declared defaults, and the same schema generates documented templates
// and Markdown reference docs.
//
// Features:
//   - Sources layered by precedence, customizable per Config
//   - Type coercion into the declared field types (durations, URLs, IPs, lists)
//   - Required fields reported together in a single ValidationError
//   - `validate:"..."` rules checked when scanning into a struct
//   - File discovery: explicit path, env var, candidates searched upward, XDG
//   - Template generation (JSON, YAML, TOML) with descriptions as comments
//   - Markdown documentation of every field, its type, default and env var
//   - fsnotify based reload of the loaded file
//
// Quick Start:
//
//	type AppConfig struct {
//	    Debug    bool   `toml:"debug" desc:"enable debug output"`
//	    Database string `toml:"database" required:"true" desc:"connection string"`
//	    Server   struct {
//	        Host string `toml:"host" default:"localhost"`
//	        Port int    `toml:"port" default:"8080"`
//	    } `toml:"server" desc:"HTTP listener"`
//	}
//
//	var cfg AppConfig
//	if err := goodconf.Load(&cfg, "MYAPP_", "myapp.toml"); err != nil {
//	    log.Fatal(err)
//	}
//
// Default Precedence (highest to lowest):
//  1. Overrides passed by the application
//  2. Configuration file (myapp.toml)
//  3. Environment variables (MYAPP_SERVER_PORT=9090)
//  4. Default values
//
// Custom Precedence:
//
//	cfg, err := goodconf.NewBuilder().
//	    WithDefaults(defaults).
//	    WithSources(
//	        goodconf.SourceOverride,
//	        goodconf.SourceEnv, // Environment above the file
//	        goodconf.SourceFile,
//	        goodconf.SourceDefault,
//	    ).
//	    Build()
//
// Thread Safety:
// All operations are thread-safe. The package uses read-write mutexes to allow
// concurrent reads while protecting writes.
package goodconf
