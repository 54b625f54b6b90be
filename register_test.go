package goodconf

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	Host    string        `toml:"host" json:"host" desc:"Bind address"`
	Port    int           `toml:"port" json:"port" default:"8080" desc:"Listen port"`
	Timeout time.Duration `toml:"timeout" json:"timeout" default:"30s"`
}

type testConfig struct {
	Name   string      `toml:"name" required:"true" desc:"Service name"`
	Debug  bool        `toml:"debug"`
	Server testServer  `toml:"server" desc:"HTTP server"`
	Tags   []string    `toml:"tags"`
	Limit  *int        `toml:"limit"`
	Skip   string      `toml:"-"`
	Token  string      `toml:"token" env:"API_TOKEN"`
	Backup *testServer `toml:"backup"`
	hidden string
}

func (testConfig) ConfigDescription() string {
	return "Test configuration"
}

// TestStructRegistration tests struct registration with the supported tags
func TestStructRegistration(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.RegisterStruct("", &testConfig{Debug: true}))

	var paths []string
	for _, f := range cfg.Fields() {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		"name", "debug",
		"server.host", "server.port", "server.timeout",
		"tags", "limit", "token",
		"backup.host", "backup.port", "backup.timeout",
	}, paths, "declaration order is kept")

	t.Run("Required", func(t *testing.T) {
		f := cfg.Fields()[0]
		assert.True(t, f.Required)
		assert.Nil(t, f.Default)
		assert.Equal(t, "Service name", f.Description)

		val, exists := cfg.Get("name")
		assert.True(t, exists)
		assert.Nil(t, val)
		assert.Equal(t, Source(""), cfg.GetSource("name"))
	})

	t.Run("StructValueIsDefault", func(t *testing.T) {
		val, _ := cfg.Get("debug")
		assert.Equal(t, true, val)
	})

	t.Run("DefaultTag", func(t *testing.T) {
		port, _ := cfg.Get("server.port")
		assert.Equal(t, 8080, port)
		timeout, _ := cfg.Get("server.timeout")
		assert.Equal(t, 30*time.Second, timeout)
		backupPort, _ := cfg.Get("backup.port")
		assert.Equal(t, 8080, backupPort, "nil struct pointers still declare their fields")
	})

	t.Run("NilValuesHaveNoDefault", func(t *testing.T) {
		for _, path := range []string{"tags", "limit"} {
			val, _ := cfg.Get(path)
			assert.Nil(t, val, path)
		}
		assert.Equal(t, reflect.TypeOf([]string{}), cfg.Fields()[5].Type)
	})

	t.Run("TableDescription", func(t *testing.T) {
		assert.Equal(t, "HTTP server", cfg.tables["server"])
	})

	t.Run("Describer", func(t *testing.T) {
		assert.Equal(t, "Test configuration", cfg.Description())
	})

	t.Run("ExplicitEnv", func(t *testing.T) {
		name, ok := cfg.EnvName("token")
		assert.True(t, ok)
		assert.Equal(t, "API_TOKEN", name)
	})
}

// TestStructRegistrationWithPrefix tests prefixed registration
func TestStructRegistrationWithPrefix(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.RegisterStruct("http.", testServer{Host: "0.0.0.0"}))

	host, exists := cfg.Get("http.host")
	assert.True(t, exists)
	assert.Equal(t, "0.0.0.0", host)
	assert.Empty(t, cfg.Description(), "only the root schema supplies the title")
}

// TestStructRegistrationWithJSONTags tests an alternative key tag
func TestStructRegistrationWithJSONTags(t *testing.T) {
	type jsonConfig struct {
		MaxConns int `json:"max_conns" default:"4"`
	}

	cfg := New()
	require.NoError(t, cfg.SetTagName("json"))
	require.NoError(t, cfg.RegisterStruct("", jsonConfig{}))

	val, exists := cfg.Get("max_conns")
	assert.True(t, exists)
	assert.Equal(t, 4, val)
}

// TestStructRegistrationErrors tests invalid struct declarations
func TestStructRegistrationErrors(t *testing.T) {
	t.Run("InvalidRequiredTag", func(t *testing.T) {
		type bad struct {
			Name string `toml:"name" required:"maybe"`
		}
		err := New().RegisterStruct("", bad{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid required tag")
	})

	t.Run("InvalidDefaultTag", func(t *testing.T) {
		type bad struct {
			Port int `toml:"port" default:"eighty"`
		}
		err := New().RegisterStruct("", bad{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid default tag")
	})

	t.Run("NotAStruct", func(t *testing.T) {
		assert.Error(t, New().RegisterStruct("", 42))
		assert.Error(t, New().RegisterStruct("", (*testConfig)(nil)))
	})
}

// TestRegisterField tests full field declarations
func TestRegisterField(t *testing.T) {
	t.Run("DefaultFactory", func(t *testing.T) {
		cfg := New()
		require.NoError(t, cfg.RegisterField(Field{
			Path:        "hosts",
			DefaultFunc: func() any { return []string{"a", "b"} },
		}))
		val, _ := cfg.Get("hosts")
		assert.Equal(t, []string{"a", "b"}, val)
	})

	t.Run("DefaultAndFactory", func(t *testing.T) {
		err := New().RegisterField(Field{
			Path:        "hosts",
			Default:     []string{"a"},
			DefaultFunc: func() any { return []string{"b"} },
		})
		assert.ErrorIs(t, err, ErrInvalidField)
		assert.Contains(t, err.Error(), "cannot specify both default and default factory")
	})

	t.Run("RequiredWithDefault", func(t *testing.T) {
		err := New().RegisterField(Field{Path: "name", Default: "x", Required: true})
		assert.ErrorIs(t, err, ErrInvalidField)
	})

	t.Run("DefaultIsCoerced", func(t *testing.T) {
		cfg := New()
		require.NoError(t, cfg.RegisterField(Field{
			Path:    "timeout",
			Type:    reflect.TypeOf(time.Duration(0)),
			Default: "1m",
		}))
		val, _ := cfg.Get("timeout")
		assert.Equal(t, time.Minute, val)
	})

	t.Run("ReRegisterKeepsPositionAndValues", func(t *testing.T) {
		cfg := New()
		require.NoError(t, cfg.Register("a", 1))
		require.NoError(t, cfg.Register("b", 2))
		require.NoError(t, cfg.Set("a", 10))
		require.NoError(t, cfg.RegisterField(Field{Path: "a", Default: 5, Description: "first"}))

		fields := cfg.Fields()
		require.Len(t, fields, 2)
		assert.Equal(t, "a", fields[0].Path)
		assert.Equal(t, "first", fields[0].Description)
		val, _ := cfg.Get("a")
		assert.Equal(t, 10, val)
	})
}

// TestSetInitial tests initial value generators
func TestSetInitial(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Register("secret", ""))

	assert.ErrorIs(t, cfg.SetInitial("secret", nil), ErrInvalidField)
	assert.ErrorIs(t, cfg.SetInitial("missing", func() any { return 1 }), ErrUnknownField)
	require.NoError(t, cfg.SetInitial("secret", func() any { return "generated" }))

	assert.Equal(t, "generated", cfg.Initial(nil)["secret"])
	val, _ := cfg.Get("secret")
	assert.Equal(t, "", val, "initial values are never loaded")
}

// TestUnregister tests path removal
func TestUnregister(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.RegisterStruct("", &testConfig{}))

	require.NoError(t, cfg.Unregister("server"))
	_, exists := cfg.Get("server.port")
	assert.False(t, exists)
	_, exists = cfg.Get("name")
	assert.True(t, exists)
	assert.NotContains(t, cfg.tables, "server")

	for _, f := range cfg.Fields() {
		assert.NotContains(t, f.Path, "server.")
	}

	assert.ErrorIs(t, cfg.Unregister("server"), ErrUnknownField)
}

// TestGetRegisteredPaths tests prefix filtering
func TestGetRegisteredPaths(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.RegisterStruct("", &testConfig{}))

	paths := cfg.GetRegisteredPaths("server.")
	assert.Equal(t, map[string]bool{
		"server.host":    true,
		"server.port":    true,
		"server.timeout": true,
	}, paths)
	assert.Len(t, cfg.GetRegisteredPaths(""), 11)
}

// TestFieldTypeName tests type spelling used in docs
func TestFieldTypeName(t *testing.T) {
	assert.Equal(t, "any", Field{}.TypeName())
	assert.Equal(t, "int", Field{Type: reflect.TypeOf(0)}.TypeName())
	assert.Equal(t, "[]string", Field{Type: reflect.TypeOf([]string{})}.TypeName())
	assert.Equal(t, "time.Duration", Field{Type: reflect.TypeOf(time.Second)}.TypeName())
	assert.Equal(t, "any", Field{Type: reflect.TypeOf((*any)(nil)).Elem()}.TypeName())
}
