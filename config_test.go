// FILE: lixenwraith/goodconf/config_test.go
package goodconf

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfigCreation tests various config creation patterns
func TestConfigCreation(t *testing.T) {
	t.Run("NewWithDefaultOptions", func(t *testing.T) {
		cfg := New()
		require.NotNil(t, cfg)
		assert.NotNil(t, cfg.items)
		assert.Equal(t, []Source{SourceOverride, SourceFile, SourceEnv, SourceDefault}, cfg.LoadOptions().Sources)
		assert.Equal(t, DefaultTagName, cfg.tagName)
	})

	t.Run("NewWithCustomOptions", func(t *testing.T) {
		opts := LoadOptions{
			Sources:   []Source{SourceEnv, SourceFile, SourceDefault},
			EnvPrefix: "MYAPP_",
		}
		cfg := NewWithOptions(opts)
		require.NotNil(t, cfg)
		assert.Equal(t, opts.Sources, cfg.LoadOptions().Sources)
		assert.Equal(t, "MYAPP_", cfg.LoadOptions().EnvPrefix)
	})
}

// TestPathRegistration tests path registration edge cases
func TestPathRegistration(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		defaultVal  any
		expectError bool
		errorMsg    string
	}{
		{"ValidSimplePath", "port", 8080, false, ""},
		{"ValidNestedPath", "server.host.name", "localhost", false, ""},
		{"EmptyPath", "", nil, true, "registration path cannot be empty"},
		{"InvalidCharacter", "server.port!", 8080, true, "invalid path segment"},
		{"InvalidDot", "server..port", 8080, true, "invalid path segment"},
		{"LeadingDot", ".server.port", 8080, true, "invalid path segment"},
		{"TrailingDot", "server.port.", 8080, true, "invalid path segment"},
		{"ValidUnderscore", "server_config.max_connections", 100, false, ""},
		{"ValidDash", "feature-flags.enable-debug", false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			err := cfg.Register(tt.path, tt.defaultVal)
			if tt.expectError {
				assert.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidPath)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
				val, exists := cfg.Get(tt.path)
				assert.True(t, exists)
				assert.Equal(t, tt.defaultVal, val)
				assert.Equal(t, SourceDefault, cfg.GetSource(tt.path))
			}
		})
	}
}

// TestSetAndSources tests explicit values and source tracking
func TestSetAndSources(t *testing.T) {
	t.Run("SetCoercesToFieldType", func(t *testing.T) {
		cfg := New()
		require.NoError(t, cfg.Register("server.port", 8080))

		require.NoError(t, cfg.Set("server.port", "9090"))
		val, _ := cfg.Get("server.port")
		assert.Equal(t, 9090, val)
		assert.Equal(t, SourceOverride, cfg.GetSource("server.port"))
	})

	t.Run("GetSourcesKeepsEveryLayer", func(t *testing.T) {
		cfg := New()
		require.NoError(t, cfg.Register("server.port", 8080))
		require.NoError(t, cfg.SetSource("server.port", SourceEnv, "7070"))
		require.NoError(t, cfg.SetSource("server.port", SourceFile, 6060))

		val, _ := cfg.Get("server.port")
		assert.Equal(t, 6060, val)
		assert.Equal(t, SourceFile, cfg.GetSource("server.port"))

		sources := cfg.GetSources("server.port")
		assert.Equal(t, "7070", sources[SourceEnv])
		assert.Equal(t, 6060, sources[SourceFile])
		assert.Nil(t, cfg.GetSources("missing"))
	})

	t.Run("SetDefaultReplacesDeclaredDefault", func(t *testing.T) {
		cfg := New()
		require.NoError(t, cfg.Register("retries", 3))
		require.NoError(t, cfg.SetSource("retries", SourceDefault, "5"))

		val, _ := cfg.Get("retries")
		assert.Equal(t, 5, val)
		assert.Equal(t, SourceDefault, cfg.GetSource("retries"))
	})

	t.Run("UnknownPath", func(t *testing.T) {
		cfg := New()
		err := cfg.Set("missing", 1)
		assert.ErrorIs(t, err, ErrUnknownField)

		_, exists := cfg.Get("missing")
		assert.False(t, exists)
		assert.Equal(t, Source(""), cfg.GetSource("missing"))
	})
}

// TestSourcePrecedence tests the precedence order of sources
func TestSourcePrecedence(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Register("value", "default"))
	require.NoError(t, cfg.SetSource("value", SourceEnv, "env"))
	require.NoError(t, cfg.SetSource("value", SourceFile, "file"))

	val, _ := cfg.Get("value")
	assert.Equal(t, "file", val, "file beats env by default")

	require.NoError(t, cfg.Set("value", "override"))
	val, _ = cfg.Get("value")
	assert.Equal(t, "override", val)

	cfg.SetLoadOptions(LoadOptions{Sources: []Source{SourceEnv, SourceOverride, SourceFile, SourceDefault}})
	val, _ = cfg.Get("value")
	assert.Equal(t, "env", val)
	assert.Equal(t, SourceEnv, cfg.GetSource("value"))

	cfg.SetLoadOptions(LoadOptions{Sources: []Source{SourceDefault}})
	val, _ = cfg.Get("value")
	assert.Equal(t, "default", val)
}

// TestCoercionFailureIsKept tests that a bad value is reported, not dropped
func TestCoercionFailureIsKept(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Register("port", 8080))
	require.NoError(t, cfg.SetSource("port", SourceEnv, "not-a-number"))

	val, _ := cfg.Get("port")
	assert.Equal(t, "not-a-number", val, "raw value is kept")
	assert.Equal(t, SourceEnv, cfg.GetSource("port"))
	assert.Contains(t, cfg.Debug(), "Error:")
}

// TestConcurrentAccess tests thread safety
func TestConcurrentAccess(t *testing.T) {
	cfg := New()
	for i := 0; i < 10; i++ {
		require.NoError(t, cfg.Register(fmt.Sprintf("key%d", i), i))
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				path := fmt.Sprintf("key%d", i%10)
				if g%2 == 0 {
					_ = cfg.Set(path, i)
				} else {
					_, _ = cfg.Get(path)
					_ = cfg.GetSource(path)
				}
			}
		}(g)
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		_, exists := cfg.Get(fmt.Sprintf("key%d", i))
		assert.True(t, exists)
	}
}

// TestDebug tests the debug dump
func TestDebug(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Register("server.host", "localhost"))
	require.NoError(t, cfg.Set("server.host", "example.com"))

	out := cfg.Debug()
	assert.Contains(t, out, "Precedence: [override file env default]")
	assert.Contains(t, out, "server.host:")
	assert.Contains(t, out, "Current: example.com (override)")
	assert.Contains(t, out, "Default: localhost")
}

// TestTagName tests the supported key tags
func TestTagName(t *testing.T) {
	cfg := New()
	assert.NoError(t, cfg.SetTagName("json"))
	assert.NoError(t, cfg.SetTagName("yaml"))
	assert.Error(t, cfg.SetTagName("xml"))
	assert.Equal(t, "yaml", cfg.tagName)
}
