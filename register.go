package goodconf

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Register makes a configuration path known to the Config instance.
// The path should be dot-separated (e.g., "server.port", "debug").
// Each segment of the path must be a valid TOML key identifier.
// The field type is inferred from defaultValue; a nil default leaves it untyped.
func (c *Config) Register(path string, defaultValue any) error {
	return c.RegisterField(Field{Path: path, Default: defaultValue})
}

// RegisterField registers a field with full metadata. Re-registering a path
// replaces its declaration but keeps its position and any loaded values.
func (c *Config) RegisterField(f Field) error {
	if err := validatePath(f.Path); err != nil {
		return err
	}
	if f.Default != nil && f.DefaultFunc != nil {
		return fmt.Errorf("%w: %s: cannot specify both default and default factory", ErrInvalidField, f.Path)
	}
	if f.Required && (f.Default != nil || f.DefaultFunc != nil) {
		return fmt.Errorf("%w: %s: required field cannot declare a default", ErrInvalidField, f.Path)
	}

	defaultValue := f.Default
	if f.DefaultFunc != nil {
		defaultValue = f.DefaultFunc()
	}
	if f.Type == nil && defaultValue != nil {
		f.Type = reflect.TypeOf(defaultValue)
	}
	if defaultValue != nil {
		c.mutex.RLock()
		tagName := c.tagName
		c.mutex.RUnlock()

		coerced, err := coerce(defaultValue, f.Type, tagName)
		if err != nil {
			return fmt.Errorf("%w: %s: default: %v", ErrInvalidField, f.Path, err)
		}
		defaultValue = coerced
	}
	f.Default = defaultValue

	c.mutex.Lock()
	defer c.mutex.Unlock()

	existing, exists := c.items[f.Path]
	if !exists {
		c.order = append(c.order, f.Path)
	}
	c.items[f.Path] = configItem{
		field:        f,
		defaultValue: defaultValue,
		values:       existing.values,
	}
	c.refresh(f.Path)

	return nil
}

// SetInitial attaches a generator for the value written to templates.
func (c *Config) SetInitial(path string, fn InitialFunc) error {
	if fn == nil {
		return fmt.Errorf("%w: initial value for %q must be a function", ErrInvalidField, path)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	item, registered := c.items[path]
	if !registered {
		return fmt.Errorf("%w: %s", ErrUnknownField, path)
	}
	item.field.Initial = fn
	c.items[path] = item
	return nil
}

// Unregister removes a configuration path and all its children.
func (c *Config) Unregister(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	prefix := path + "."
	removed := false
	kept := c.order[:0]
	for _, p := range c.order {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(c.items, p)
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	c.order = kept

	if !removed {
		return fmt.Errorf("%w: %s", ErrUnknownField, path)
	}
	for table := range c.tables {
		if table == path || strings.HasPrefix(table, prefix) {
			delete(c.tables, table)
		}
	}
	return nil
}

// RegisterStruct registers configuration fields derived from a struct.
// Keys come from the configured tag (`toml:"..."` by default); "-" skips a field.
// Additional tags:
//
//	desc:"..."      help text (on a nested struct: the table description)
//	default:"..."   default parsed into the field type, overriding the struct value
//	required:"true" the field has no default and must be supplied
//	env:"NAME"      explicit environment variable
//
// The prefix is prepended to all paths (e.g., "log."). An empty prefix is allowed.
func (c *Config) RegisterStruct(prefix string, structWithDefaults any) error {
	v := reflect.ValueOf(structWithDefaults)

	// Handle pointer or direct struct value
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return fmt.Errorf("RegisterStruct requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return fmt.Errorf("RegisterStruct requires a struct or struct pointer, got %T", structWithDefaults)
	}

	if d, ok := structWithDefaults.(Describer); ok && prefix == "" {
		c.SetDescription(d.ConfigDescription())
	}

	c.mutex.Lock()
	tagName := c.tagName
	c.structType = v.Type()
	c.structPrefix = strings.TrimSuffix(prefix, ".")
	c.mutex.Unlock()

	var errors []string
	c.registerFields(v, tagName, strings.TrimSuffix(prefix, "."), "", &errors)

	if len(errors) > 0 {
		return fmt.Errorf("failed to register %d field(s): %s", len(errors), strings.Join(errors, "; "))
	}

	return nil
}

// registerFields handles the recursive field registration.
func (c *Config) registerFields(v reflect.Value, tagName, pathPrefix, fieldPath string, errors *[]string) {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get(tagName)
		if tag == "-" {
			continue
		}

		key := field.Name
		if tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				key = parts[0]
			}
		}

		currentPath := key
		if pathPrefix != "" {
			currentPath = pathPrefix + "." + key
		}

		if nested, ok := nestedStruct(fieldValue); ok {
			if desc := field.Tag.Get("desc"); desc != "" {
				c.mutex.Lock()
				c.tables[currentPath] = desc
				c.mutex.Unlock()
			}
			c.registerFields(nested, tagName, currentPath, fieldPath+field.Name+".", errors)
			continue
		}

		f := Field{
			Path:        currentPath,
			Description: field.Tag.Get("desc"),
			Type:        field.Type,
			Default:     fieldValue.Interface(),
			Env:         field.Tag.Get("env"),
		}

		if req := field.Tag.Get("required"); req != "" {
			required, err := strconv.ParseBool(req)
			if err != nil {
				*errors = append(*errors, fmt.Sprintf("field %s%s: invalid required tag %q", fieldPath, field.Name, req))
				continue
			}
			f.Required = required
		}

		if def, ok := field.Tag.Lookup("default"); ok {
			value, err := coerce(def, field.Type, tagName)
			if err != nil {
				*errors = append(*errors, fmt.Sprintf("field %s%s: invalid default tag: %v", fieldPath, field.Name, err))
				continue
			}
			f.Default = value
		}

		if f.Required {
			f.Default = nil
		} else if isNilValue(f.Default) {
			f.Default = nil
		}

		if err := c.RegisterField(f); err != nil {
			*errors = append(*errors, fmt.Sprintf("field %s%s (path %s): %v", fieldPath, field.Name, currentPath, err))
		}
	}
}

// GetRegisteredPaths returns all registered configuration paths with the specified prefix.
func (c *Config) GetRegisteredPaths(prefix string) map[string]bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make(map[string]bool)
	for path := range c.items {
		if strings.HasPrefix(path, prefix) {
			result[path] = true
		}
	}

	return result
}

var leafStructTypes = map[reflect.Type]bool{
	reflect.TypeOf(time.Time{}): true,
	reflect.TypeOf(url.URL{}):   true,
	reflect.TypeOf(net.IPNet{}): true,
}

// nestedStruct reports whether a field value is a table to recurse into.
// Nil struct pointers recurse into a zero value so their paths are still declared.
func nestedStruct(v reflect.Value) (reflect.Value, bool) {
	t := v.Type()
	switch {
	case t.Kind() == reflect.Struct && !leafStructTypes[t]:
		return v, true
	case t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct && !leafStructTypes[t.Elem()]:
		if v.IsNil() {
			return reflect.New(t.Elem()).Elem(), true
		}
		return v.Elem(), true
	}
	return reflect.Value{}, false
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
