// FILE: lixenwraith/goodconf/discovery.go
package goodconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// FileDiscoveryOptions configures how the configuration file is located
type FileDiscoveryOptions struct {
	// Explicit path; used as-is and must exist
	Path string

	// Environment variable holding the file path; the file must exist
	EnvVar string

	// Candidate files tried in order; the first existing one wins
	DefaultFiles []string

	// Search relative default files from StartDir up to the filesystem root
	SearchParents bool

	// Directory where relative lookups start (default: working directory)
	StartDir string

	// Base name of config file for XDG lookup (without extension)
	Name string

	// Extensions to try for XDG lookup (in order)
	Extensions []string

	// Whether to search in XDG config directories
	UseXDG bool
}

// DefaultDiscoveryOptions returns sensible defaults for an application name:
// <APP>_CONFIG selects the file, otherwise <app>.{toml,yaml,yml,json} is
// searched from the working directory upward and then in XDG directories.
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	extensions := []string{".toml", ".yaml", ".yml", ".json"}
	defaults := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		defaults = append(defaults, appName+ext)
	}
	return FileDiscoveryOptions{
		EnvVar:        strings.ToUpper(strings.ReplaceAll(appName, "-", "_")) + "_CONFIG",
		DefaultFiles:  defaults,
		SearchParents: true,
		Name:          appName,
		Extensions:    extensions,
		UseXDG:        true,
	}
}

// FindConfigFile resolves the configuration file to load and returns its
// absolute path. It returns "" with a nil error when no candidate exists.
func FindConfigFile(opts FileDiscoveryOptions) (string, error) {
	return findConfigFile(opts, zerolog.Nop())
}

func findConfigFile(opts FileDiscoveryOptions, logger zerolog.Logger) (string, error) {
	if opts.Path != "" {
		return requireFile(opts.Path)
	}

	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			logger.Debug().Str("env", opts.EnvVar).Str("path", path).Msg("config file selected by environment")
			return requireFile(path)
		}
	}

	startDir := opts.StartDir
	if startDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		startDir = cwd
	}

	for _, name := range opts.DefaultFiles {
		if filepath.IsAbs(name) || !opts.SearchParents {
			candidate := name
			if !filepath.IsAbs(name) {
				candidate = filepath.Join(startDir, name)
			}
			if path, ok := existingFile(candidate); ok {
				return path, nil
			}
			continue
		}
		if path, ok := FindFileUpward(name, startDir); ok {
			return path, nil
		}
	}

	if opts.UseXDG && opts.Name != "" {
		for _, dir := range getXDGConfigPaths(opts.Name) {
			for _, ext := range opts.Extensions {
				if path, ok := existingFile(filepath.Join(dir, opts.Name+ext)); ok {
					return path, nil
				}
			}
		}
	}

	// No file found is not an error - app can run with defaults/env
	return "", nil
}

// FindFileUpward searches for filename in startDir and each of its parents,
// returning the absolute path of the first match.
func FindFileUpward(filename, startDir string) (string, bool) {
	if filepath.IsAbs(filename) {
		return existingFile(filename)
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		if path, ok := existingFile(filepath.Join(dir, filename)); ok {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// requireFile returns the absolute path of an existing file or an error
// wrapping ErrConfigNotFound.
func requireFile(path string) (string, error) {
	abs, ok := existingFile(path)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	return abs, nil
}

func existingFile(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, true
	}
	return abs, true
}

// getXDGConfigPaths returns XDG-compliant config search paths
func getXDGConfigPaths(appName string) []string {
	var paths []string

	// XDG_CONFIG_HOME
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, appName))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName))
	}

	// XDG_CONFIG_DIRS
	if xdgDirs := os.Getenv("XDG_CONFIG_DIRS"); xdgDirs != "" {
		for _, dir := range filepath.SplitList(xdgDirs) {
			paths = append(paths, filepath.Join(dir, appName))
		}
	} else {
		// Default system paths
		paths = append(paths,
			filepath.Join("/etc/xdg", appName),
			filepath.Join("/etc", appName),
		)
	}

	return paths
}
