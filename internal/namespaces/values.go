package namespaces

import (
	"maps"
	"slices"
	"strconv"

	"github.com/toyz/actioncheck/internal/php"
)

// entry is a key/value pair of a decoded configuration mapping
type entry struct {
	key   string
	value any
}

// lookup reads key from a decoded mapping; PHP arrays and JSON/YAML objects
// are accepted.
func lookup(v any, key string) (any, bool) {
	switch m := v.(type) {
	case *php.Array:
		return m.Get(key)
	case map[string]any:
		value, ok := m[key]
		return value, ok
	}
	return nil, false
}

// lookupString reads a string value from a decoded mapping
func lookupString(v any, key string) (string, bool) {
	value, ok := lookup(v, key)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// entries lists a decoded mapping or list. PHP arrays keep source order,
// decoded objects are sorted by key and lists use their indexes.
func entries(v any) ([]entry, bool) {
	switch m := v.(type) {
	case *php.Array:
		out := make([]entry, 0, m.Len())
		m.Each(func(key string, value any) {
			out = append(out, entry{key: key, value: value})
		})
		return out, true
	case map[string]any:
		out := make([]entry, 0, len(m))
		for _, key := range slices.Sorted(maps.Keys(m)) {
			out = append(out, entry{key: key, value: m[key]})
		}
		return out, true
	case []any:
		out := make([]entry, 0, len(m))
		for i, value := range m {
			out = append(out, entry{key: strconv.Itoa(i), value: value})
		}
		return out, true
	}
	return nil, false
}

// stringList reads a string or a list of strings
func stringList(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []string:
		return val
	}

	items, ok := entries(v)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
