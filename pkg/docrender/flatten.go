package docrender

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// FlatMap maps dotted key paths to leaf values.
type FlatMap map[string]any

// Lookup returns the value stored under key.
func (m FlatMap) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// Flatten walks vars depth first and joins nested object keys with ".".
// Arrays, time values and scalars are leaves; nested objects are recursed
// into. A map already on the current path is stored as a leaf instead of
// being walked again.
func Flatten(vars map[string]any) FlatMap {
	flat := make(FlatMap, len(vars))
	flattenInto(flat, "", vars, map[uintptr]bool{})
	return flat
}

func flattenInto(flat FlatMap, prefix string, obj map[string]any, onPath map[uintptr]bool) {
	ptr := reflect.ValueOf(obj).Pointer()
	onPath[ptr] = true
	defer delete(onPath, ptr)

	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		child, ok := asObject(v)
		if !ok || onPath[reflect.ValueOf(child).Pointer()] {
			flat[key] = v
			continue
		}
		flattenInto(flat, key, child, onPath)
	}
}

// asObject reports whether v is a JSON-like object.
func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	case FlatMap:
		return m, true
	}
	return nil, false
}

// asArray resolves an array-valued variable. Strings are parsed as JSON.
func asArray(v any) ([]any, error) {
	switch a := v.(type) {
	case nil:
		return nil, fmt.Errorf("value is null")
	case []any:
		return a, nil
	case string:
		var out []any
		if err := json.Unmarshal([]byte(a), &out); err != nil {
			return nil, fmt.Errorf("malformed JSON array: %w", err)
		}
		return out, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("value of type %T is not an array", v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// formatValue stringifies a leaf: null is empty, arrays are joined by commas,
// objects become JSON and times use dateLayout.
func formatValue(v any, dateLayout string) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format(dateLayout)
	case *time.Time:
		if val == nil {
			return ""
		}
		return val.Format(dateLayout)
	case []byte:
		return string(val)
	}
	if obj, ok := asObject(v); ok {
		data, err := json.Marshal(obj)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = formatValue(rv.Index(i).Interface(), dateLayout)
		}
		return strings.Join(parts, ",")
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// truthy follows the document convention: missing, null, "", "0", "false",
// zero and empty collections are false.
func truthy(v any, found bool) bool {
	if !found || v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		s := strings.TrimSpace(strings.ToLower(val))
		return s != "" && s != "0" && s != "false"
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map || rv.Kind() == reflect.Array {
		return rv.Len() > 0
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return f != 0
	}
	return true
}
