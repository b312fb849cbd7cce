package php

import (
	"strconv"
)

// Unknown is the value of an expression that cannot be evaluated without
// running PHP: environment lookups, constants, closures, object creation.
type Unknown struct {
	Reason string
}

// IsUnknown reports whether v could not be evaluated
func IsUnknown(v any) bool {
	_, ok := v.(Unknown)
	return ok
}

// Array is an ordered PHP array. Integer keys are stored in their decimal
// string form, as PHP normalizes "1" and 1 to the same key.
type Array struct {
	keys   []string
	values map[string]any
	next   int64
}

// NewArray creates an empty array
func NewArray() *Array {
	return &Array{values: make(map[string]any)}
}

// Set stores v under key, keeping the original insertion position when the
// key already exists.
func (a *Array) Set(key string, v any) {
	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.values[key] = v
	if n, err := strconv.ParseInt(key, 10, 64); err == nil && strconv.FormatInt(n, 10) == key && n >= a.next {
		a.next = n + 1
	}
}

// Append stores v under the next integer key
func (a *Array) Append(v any) {
	a.Set(strconv.FormatInt(a.next, 10), v)
}

// Get returns the value stored under key
func (a *Array) Get(key string) (any, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Keys returns the keys in insertion order
func (a *Array) Keys() []string {
	return append([]string(nil), a.keys...)
}

// Len returns the number of entries
func (a *Array) Len() int {
	return len(a.keys)
}

// Each calls fn for every entry in insertion order
func (a *Array) Each(fn func(key string, v any)) {
	for _, key := range a.keys {
		fn(key, a.values[key])
	}
}

// isIntKey reports whether key is an integer key
func isIntKey(key string) bool {
	n, err := strconv.ParseInt(key, 10, 64)
	return err == nil && strconv.FormatInt(n, 10) == key
}

// arrayKey converts a scalar into an array key the way PHP does
func arrayKey(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatInt(int64(val), 10), true
	case bool:
		if val {
			return "1", true
		}
		return "0", true
	case nil:
		return "", true
	}
	return "", false
}

// stringValue converts a scalar into its string form
func stringValue(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		if val {
			return "1", true
		}
		return "", true
	case nil:
		return "", true
	}
	return "", false
}

// truthy applies PHP boolean conversion; ok is false for unknown values
func truthy(v any) (value, ok bool) {
	switch val := v.(type) {
	case nil:
		return false, true
	case bool:
		return val, true
	case int64:
		return val != 0, true
	case float64:
		return val != 0, true
	case string:
		return val != "" && val != "0", true
	case *Array:
		return val.Len() > 0, true
	}
	return false, false
}
