package goodconf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidate tests required fields and coercion failures reported together
func TestValidate(t *testing.T) {
	t.Run("AllMissingReported", func(t *testing.T) {
		cfg := New()
		require.NoError(t, cfg.RegisterField(Field{Path: "a", Required: true}))
		require.NoError(t, cfg.Register("b", 1))
		require.NoError(t, cfg.RegisterField(Field{Path: "c", Required: true}))

		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRequired)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{"a", "c"}, verr.Missing())
		assert.Equal(t, []string{"a", "c"}, cfg.Missing())
		assert.Contains(t, err.Error(), "2 validation error(s) for configuration")
		assert.Contains(t, err.Error(), "a: field required")
	})

	t.Run("CoercionFailure", func(t *testing.T) {
		cfg := New()
		require.NoError(t, cfg.Register("port", 8080))
		require.NoError(t, cfg.RegisterField(Field{Path: "name", Required: true}))
		require.NoError(t, cfg.SetSource("port", SourceEnv, "eighty"))

		err := cfg.Validate()
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		require.Len(t, verr.Fields, 2)
		assert.Equal(t, "port", verr.Fields[0].Path)
		assert.NotErrorIs(t, verr.Fields[0], ErrRequired)
		assert.Equal(t, "name", verr.Fields[1].Path)
		assert.Equal(t, []string{"name"}, verr.Missing())

		var fieldErr FieldError
		require.True(t, errors.As(err, &fieldErr))
		assert.Equal(t, "port", fieldErr.Path)
	})

	t.Run("Satisfied", func(t *testing.T) {
		cfg := New()
		require.NoError(t, cfg.RegisterField(Field{Path: "name", Required: true}))
		require.NoError(t, cfg.SetSource("name", SourceFile, "x"))
		assert.NoError(t, cfg.Validate())
		assert.Empty(t, cfg.Missing())
	})

	t.Run("FalsyValuesCount", func(t *testing.T) {
		cfg := New()
		require.NoError(t, cfg.RegisterField(Field{Path: "flag", Required: true}))
		require.NoError(t, cfg.Set("flag", false))
		assert.NoError(t, cfg.Validate())
	})
}
