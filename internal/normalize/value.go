// Package normalize turns backend records with mixed camelCase/PascalCase keys
// into the canonical domain records.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// lookup returns raw[key] in camelCase, then in PascalCase. Nil values count as absent.
func lookup(raw map[string]any, key string) (any, bool) {
	if raw == nil {
		return nil, false
	}
	if v, ok := raw[key]; ok && v != nil {
		return v, true
	}
	if v, ok := raw[pascal(key)]; ok && v != nil {
		return v, true
	}
	return nil, false
}

// lookupAny tries each key in order.
func lookupAny(raw map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := lookup(raw, k); ok {
			return v, true
		}
	}
	return nil, false
}

func pascal(key string) string {
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError {
		return key
	}
	return string(unicode.ToUpper(r)) + key[size:]
}

func stringOf(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatInt(int64(x), 10), true
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}

// str returns the trimmed string under the first present key, or "".
func str(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := lookup(raw, k)
		if !ok {
			continue
		}
		if s, ok := stringOf(v); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

func intOf(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return int(x), true
	case int:
		return x, true
	case int64:
		return int(x), true
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func optInt(raw map[string]any, keys ...string) *int {
	for _, k := range keys {
		if v, ok := lookup(raw, k); ok {
			if n, ok := intOf(v); ok {
				return &n
			}
		}
	}
	return nil
}

func boolOf(raw map[string]any, key string, def bool) bool {
	v, ok := lookup(raw, key)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return def
		}
		return b
	}
	if n, ok := intOf(v); ok {
		return n != 0
	}
	return def
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timeOf accepts RFC 3339, zone-less ISO timestamps (read as UTC) and Unix milliseconds.
// Results are always in UTC.
func timeOf(v any) (time.Time, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		return time.Time{}, false
	}
	if n, ok := intOf(v); ok {
		return time.UnixMilli(int64(n)).UTC(), true
	}
	return time.Time{}, false
}

func timeField(raw map[string]any, keys ...string) time.Time {
	for _, k := range keys {
		if v, ok := lookup(raw, k); ok {
			if t, ok := timeOf(v); ok {
				return t
			}
		}
	}
	return time.Time{}
}

func object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
