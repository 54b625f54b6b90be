// FILE: lixenwraith/goodconf/decode.go
package goodconf

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// coerce converts a raw source value into the field type. Values that already
// have the target type, nil values and untyped fields pass through.
func coerce(value any, t reflect.Type, tagName string) (any, error) {
	if t == nil || value == nil || reflect.TypeOf(value) == t {
		return value, nil
	}

	target := reflect.New(t)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target.Interface(),
		TagName:          tagName,
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
	})
	if err != nil {
		return nil, fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(value); err != nil {
		return nil, fmt.Errorf("cannot convert %T to %s: %w", value, t, err)
	}
	return target.Elem().Interface(), nil
}

// Scan decodes the resolved configuration under basePath into target, then
// applies the target's `validate:"..."` rules. The target must be a non-nil
// pointer to a struct or map. Fields without a value are left untouched.
func (c *Config) Scan(basePath string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("target of Scan must be a non-nil pointer, got %T", target)
	}

	c.mutex.RLock()
	nestedMap := make(map[string]any)
	for path, item := range c.items {
		if item.source == "" || item.currentValue == nil {
			continue
		}
		setNestedValue(nestedMap, path, item.currentValue)
	}
	tagName := c.tagName
	c.mutex.RUnlock()

	sectionData := navigateToPath(nestedMap, basePath)

	sectionMap, ok := sectionData.(map[string]any)
	if !ok {
		if sectionData != nil {
			return fmt.Errorf("path %q refers to non-map value (type %T)", basePath, sectionData)
		}
		sectionMap = make(map[string]any)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          tagName,
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("decode failed for path %q: %w", basePath, err)
	}

	if rv.Elem().Kind() == reflect.Struct {
		return c.validateStruct(basePath, target)
	}
	return nil
}

// AsStruct returns a new pointer to the struct type last passed to
// RegisterStruct, filled with the current values.
func (c *Config) AsStruct() (any, error) {
	c.mutex.RLock()
	structType := c.structType
	prefix := c.structPrefix
	c.mutex.RUnlock()

	if structType == nil {
		return nil, fmt.Errorf("no struct registered")
	}
	target := reflect.New(structType).Interface()
	if err := c.Scan(prefix, target); err != nil {
		return nil, err
	}
	return target, nil
}

// validateStruct runs go-playground/validator over a scanned struct and
// reports violations by configuration path.
func (c *Config) validateStruct(basePath string, target any) error {
	err := c.structValidator.Struct(target)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation failed: %w", err)
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		path := fe.Namespace()
		// Drop the root struct type name.
		if i := strings.Index(path, "."); i >= 0 {
			path = path[i+1:]
		}
		if base := strings.TrimSuffix(basePath, "."); base != "" {
			path = base + "." + path
		}
		verr.add(path, fmt.Errorf("%w: %q rule (param %q) rejected %v", ErrConstraint, fe.Tag(), fe.Param(), fe.Value()))
	}
	return verr
}

// tagNameFunc makes validator namespaces use configuration keys.
func (c *Config) tagNameFunc(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get(c.tagName), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}
	return name
}

// decodeHook returns the composite decode hook for all type conversions
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		// Structured values passed as strings, e.g. from the environment
		stringToJSONHookFunc(),
		stringToTypedSliceHookFunc(","),

		// Network types
		stringToNetIPHookFunc(),
		stringToNetIPNetHookFunc(),
		stringToURLHookFunc(),

		// Standard hooks
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		stringToBoolHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// stringToJSONHookFunc decodes JSON arrays and objects given as strings when the
// target is a slice, map or struct.
func stringToJSONHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		switch t.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		default:
			return data, nil
		}
		if t == reflect.TypeOf(net.IP{}) {
			return data, nil
		}

		str := strings.TrimSpace(data.(string))
		if !(strings.HasPrefix(str, "[") && t.Kind() != reflect.Map && t.Kind() != reflect.Struct) &&
			!(strings.HasPrefix(str, "{") && (t.Kind() == reflect.Map || t.Kind() == reflect.Struct)) {
			return data, nil
		}

		var decoded any
		if err := json.Unmarshal([]byte(str), &decoded); err != nil {
			return nil, fmt.Errorf("invalid JSON value: %w", err)
		}
		return decoded, nil
	}
}

// stringToTypedSliceHookFunc splits a separated string for slices and arrays
// of non-string elements, leaving the element conversion to the decoder.
// []string targets are handled by mapstructure.StringToSliceHookFunc.
func stringToTypedSliceHookFunc(sep string) mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
			return data, nil
		}
		if t.Elem().Kind() == reflect.String || t.Elem().Kind() == reflect.Uint8 {
			return data, nil
		}

		str := strings.TrimSpace(data.(string))
		if str == "" {
			return []string{}, nil
		}
		parts := strings.Split(str, sep)
		for i, part := range parts {
			parts[i] = strings.TrimSpace(part)
		}
		return parts, nil
	}
}

// stringToBoolHookFunc accepts the usual spellings of true and false:
// y, yes, t, true, on, 1 and n, no, f, false, off, 0 (case-insensitive).
func stringToBoolHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Bool {
			return data, nil
		}
		return parseBool(data.(string))
	}
}

// parseBool interprets a truth value string.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "t", "true", "on", "1":
		return true, nil
	case "n", "no", "f", "false", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid truth value %q", s)
}

// stringToNetIPHookFunc handles net.IP conversion
func stringToNetIPHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}

		if t != reflect.TypeOf(net.IP{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 45 { // Max IPv6 length
			return nil, fmt.Errorf("invalid IP length: %d", len(str))
		}

		ip := net.ParseIP(str)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", str)
		}

		return ip, nil
	}
}

// stringToNetIPNetHookFunc handles net.IPNet conversion
func stringToNetIPNetHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(net.IPNet{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 49 { // Max IPv6 CIDR length
			return nil, fmt.Errorf("invalid CIDR length: %d", len(str))
		}
		_, ipnet, err := net.ParseCIDR(str)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR: %w", err)
		}
		if isPtr {
			return ipnet, nil
		}
		return *ipnet, nil
	}
}

// stringToURLHookFunc handles url.URL conversion
func stringToURLHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		targetType := t
		if isPtr {
			targetType = t.Elem()
		}
		if targetType != reflect.TypeOf(url.URL{}) {
			return data, nil
		}

		str := data.(string)
		if len(str) > 2048 {
			return nil, fmt.Errorf("URL too long: %d bytes", len(str))
		}
		u, err := url.Parse(str)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		if isPtr {
			return u, nil
		}
		return *u, nil
	}
}
