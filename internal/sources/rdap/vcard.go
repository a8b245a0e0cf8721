package rdap

import (
	"fmt"
	"strings"
)

// VCard format (jCard, RFC 7095):
// ["vcard", [["version", {}, "text", "4.0"], ["fn", {}, "text", "John Doe"], ...]]
type vcardProperty struct {
	name  string
	value interface{}
}

// vcardProperties devuelve las propiedades en orden, con el nombre en minúsculas.
func vcardProperties(vcardArray []interface{}) []vcardProperty {
	if len(vcardArray) < 2 {
		return nil
	}
	items, ok := vcardArray[1].([]interface{})
	if !ok {
		return nil
	}

	props := make([]vcardProperty, 0, len(items))
	for _, item := range items {
		field, ok := item.([]interface{})
		if !ok || len(field) < 4 {
			continue
		}
		name, ok := field[0].(string)
		if !ok {
			continue
		}
		props = append(props, vcardProperty{name: strings.ToLower(name), value: field[3]})
	}
	return props
}

// text devuelve el valor como texto; los valores estructurados se unen.
func (p vcardProperty) text() string {
	if s, ok := p.value.(string); ok {
		return s
	}
	return strings.Join(p.parts(), ", ")
}

// parts aplana un valor estructurado (p. ej. adr) descartando vacíos.
func (p vcardProperty) parts() []string {
	var out []string
	var walk func(v interface{})
	walk = func(v interface{}) {
		switch val := v.(type) {
		case nil:
		case string:
			if val != "" {
				out = append(out, val)
			}
		case []interface{}:
			for _, item := range val {
				walk(item)
			}
		default:
			out = append(out, fmt.Sprint(val))
		}
	}
	walk(p.value)
	return out
}

// vcardField extracts a specific field from VCard array
func vcardField(vcardArray []interface{}, fieldName string) string {
	for _, prop := range vcardProperties(vcardArray) {
		if prop.name == strings.ToLower(fieldName) {
			if s, ok := prop.value.(string); ok {
				return s
			}
		}
	}
	return ""
}
