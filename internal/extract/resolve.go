// Package extract turns raw product-page JSON into flat export rows. Upstream
// payload shapes vary between plain objects, GraphQL envelopes, and batched
// lists, so every lookup here is best-effort: a missing or mistyped field
// degrades to an absent value, never to an error.
package extract

import (
	"strconv"
)

// ResolvePayload selects the object to treat as the payload root.
//
// Objects resolve to their "data" field when that field is itself an object
// (GraphQL envelope), otherwise to the object as-is. Lists resolve to the
// first object element under the same rule. Anything else resolves to an
// empty object, which downstream reads as "no product found".
func ResolvePayload(v any) map[string]any {
	switch val := v.(type) {
	case map[string]any:
		return unwrapData(val)
	case []any:
		for _, item := range val {
			if obj, ok := item.(map[string]any); ok {
				return unwrapData(obj)
			}
		}
	}
	return map[string]any{}
}

func unwrapData(obj map[string]any) map[string]any {
	if inner, ok := obj["data"].(map[string]any); ok {
		return inner
	}
	return obj
}

// dig walks a nested object path and returns the value at the end, or nil if
// any hop is missing or not an object.
func dig(obj map[string]any, path ...string) any {
	var cur any = obj
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

func digObject(obj map[string]any, path ...string) map[string]any {
	m, _ := dig(obj, path...).(map[string]any)
	return m
}

func digList(obj map[string]any, path ...string) []any {
	l, _ := dig(obj, path...).([]any)
	return l
}

// firstString resolves the first path that yields a non-empty string-like
// value. Numeric JSON values coerce to their decimal representation, since
// upstream is inconsistent about quoting identifiers.
func firstString(obj map[string]any, paths ...[]string) string {
	for _, path := range paths {
		if s := stringValue(dig(obj, path...)); s != "" {
			return s
		}
	}
	return ""
}

// firstNumber resolves the first path that yields a numeric value. Zero is a
// present value, not a miss.
func firstNumber(obj map[string]any, paths ...[]string) *float64 {
	for _, path := range paths {
		if n, ok := numberValue(dig(obj, path...)); ok {
			return &n
		}
	}
	return nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}

func numberValue(v any) (float64, bool) {
	n, ok := v.(float64)
	return n, ok
}
