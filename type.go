// File: lixenwraith/goodconf/type.go
package goodconf

import (
	"fmt"
	"reflect"
)

var (
	int64Type   = reflect.TypeOf(int64(0))
	float64Type = reflect.TypeOf(float64(0))
	boolType    = reflect.TypeOf(false)
)

// String retrieves the value of path rendered as a string.
// Durations, URLs, IPs and other text values use their canonical form; nil is "".
func (c *Config) String(path string) (string, error) {
	val, err := c.resolved(path)
	if err != nil {
		return "", err
	}
	if val == nil {
		return "", nil
	}

	switch v := plainValue(val, c.tag()).(type) {
	case string:
		return v, nil
	case bool, int64, uint64, float64:
		return fmt.Sprint(v), nil
	}
	return "", fmt.Errorf("cannot convert type %T to string for path %s", val, path)
}

// Int64 retrieves the value of path as an int64.
// Numeric strings (including 0x/0o/0b prefixes), floats (truncated) and booleans convert.
func (c *Config) Int64(path string) (int64, error) {
	val, err := c.typed(path, int64Type)
	if err != nil {
		return 0, err
	}
	return val.(int64), nil
}

// Bool retrieves the value of path as a bool.
// Strings accept y/yes/t/true/on/1 and n/no/f/false/off/0; numbers are true when non-zero.
func (c *Config) Bool(path string) (bool, error) {
	val, err := c.typed(path, boolType)
	if err != nil {
		return false, err
	}
	return val.(bool), nil
}

// Float64 retrieves the value of path as a float64.
func (c *Config) Float64(path string) (float64, error) {
	val, err := c.typed(path, float64Type)
	if err != nil {
		return 0, err
	}
	return val.(float64), nil
}

// typed converts the resolved value of path into t. Nil values are an error.
func (c *Config) typed(path string, t reflect.Type) (any, error) {
	val, err := c.resolved(path)
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, fmt.Errorf("value for path %s is nil, cannot convert to %s", path, t)
	}
	converted, err := coerce(val, t, c.tag())
	if err != nil {
		return nil, fmt.Errorf("path %s: %w", path, err)
	}
	return converted, nil
}

// resolved returns the current value of path, or the reason it has none.
func (c *Config) resolved(path string) (any, error) {
	c.mutex.RLock()
	item, registered := c.items[path]
	c.mutex.RUnlock()

	switch {
	case !registered:
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, path)
	case item.err != nil:
		return nil, FieldError{Path: path, Err: item.err}
	case item.source == "" && item.field.Required:
		return nil, FieldError{Path: path, Err: ErrRequired}
	}
	return item.currentValue, nil
}

func (c *Config) tag() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.tagName
}
