package goodconf

import (
	"reflect"
)

// DefaultTagName is the struct tag used for keys unless overridden.
const DefaultTagName = "toml"

// InitialFunc produces the value written for a field in generated templates.
type InitialFunc func() any

// Describer is implemented by schema structs that carry a title, used as the
// header of generated templates and Markdown.
type Describer interface {
	ConfigDescription() string
}

// Field declares a single configuration value.
type Field struct {
	// Path is the dot-separated key, e.g. "server.port".
	Path string
	// Description is the help text shown in templates and docs.
	Description string
	// Type is the Go type values are coerced into. Nil disables coercion.
	Type reflect.Type
	// Default is the declared default. Ignored for required fields.
	Default any
	// DefaultFunc computes the default at registration. Exclusive with Default.
	DefaultFunc func() any
	// Required fields have no default and must be supplied by a source.
	Required bool
	// Initial generates the template value. Never used for loading.
	Initial InitialFunc
	// Env is an explicit environment variable name, used verbatim.
	Env string
}

// TypeName returns the Go spelling of the field type, "any" when untyped.
func (f Field) TypeName() string {
	if f.Type == nil || (f.Type.Kind() == reflect.Interface && f.Type.NumMethod() == 0) {
		return "any"
	}
	return f.Type.String()
}

// initialValue resolves the template value of an item: the initial generator,
// then the default, then nil for pointer-like types, then the zero value.
func initialValue(item configItem) any {
	if item.field.Initial != nil {
		return item.field.Initial()
	}
	if !item.field.Required && item.defaultValue != nil {
		return item.defaultValue
	}
	return emptyValue(item.field.Type)
}

// emptyValue returns the placeholder written for a field with nothing declared.
func emptyValue(t reflect.Type) any {
	if t == nil {
		return ""
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface:
		return nil
	case reflect.Slice:
		return reflect.MakeSlice(t, 0, 0).Interface()
	case reflect.Map:
		return reflect.MakeMap(t).Interface()
	default:
		return reflect.Zero(t).Interface()
	}
}
