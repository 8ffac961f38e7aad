package record

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// The helpers below accept every encoding the supported stores produce for
// a value: native Go types from the memory store, JSON-decoded values from
// Postgres, attribute-value decoded values from DynamoDB, and legacy
// client-written shapes.

func first(r map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringValue(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case *string:
		if s == nil {
			return "", false
		}
		return *s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

func stringField(r map[string]any, keys ...string) string {
	v, ok := first(r, keys...)
	if !ok {
		return ""
	}
	s, _ := stringValue(v)
	return s
}

func optionalString(r map[string]any, keys ...string) *string {
	v, ok := first(r, keys...)
	if !ok {
		return nil
	}
	s, ok := stringValue(v)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func stringList(v any) []string {
	switch l := v.(type) {
	case []string:
		out := make([]string, 0, len(l))
		for _, s := range l {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			if s, ok := stringValue(item); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if l == "" {
			return nil
		}
		return []string{l}
	}
	return nil
}

func boolValue(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case *bool:
		if b == nil {
			return false, false
		}
		return *b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, false
		}
		return parsed, true
	}
	return false, false
}

func optionalBool(r map[string]any, keys ...string) *bool {
	v, ok := first(r, keys...)
	if !ok {
		return nil
	}
	b, ok := boolValue(v)
	if !ok {
		return nil
	}
	return &b
}

func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// Unix numbers are interpreted by magnitude: nanoseconds, milliseconds or
// seconds.
func unixTime(n float64) time.Time {
	switch {
	case n > 1e17:
		return time.Unix(0, int64(n)).UTC()
	case n > 1e11:
		return time.UnixMilli(int64(n)).UTC()
	default:
		return time.Unix(int64(n), 0).UTC()
	}
}

func unixInt(n int64) time.Time {
	switch {
	case n > 1e17:
		return time.Unix(0, n).UTC()
	case n > 1e11:
		return time.UnixMilli(n).UTC()
	default:
		return time.Unix(n, 0).UTC()
	}
}

func timeValue(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	case string:
		s := strings.TrimSpace(t)
		if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return parsed.UTC(), true
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return unixTime(n), true
		}
		return time.Time{}, false
	case int64:
		return unixInt(t), true
	case int:
		return unixInt(int64(t)), true
	case map[string]any:
		// {"seconds": .., "nanoseconds": ..} as exported by hosted document stores.
		sec, ok := numberValue(t["seconds"])
		if !ok {
			sec, ok = numberValue(t["_seconds"])
		}
		if !ok {
			return time.Time{}, false
		}
		nsec, _ := numberValue(t["nanoseconds"])
		return time.Unix(int64(sec), int64(nsec)).UTC(), true
	}
	if n, ok := numberValue(v); ok {
		return unixTime(n), true
	}
	return time.Time{}, false
}

func timeField(r map[string]any, keys ...string) (time.Time, bool) {
	v, ok := first(r, keys...)
	if !ok {
		return time.Time{}, false
	}
	return timeValue(v)
}

func optionalTime(r map[string]any, keys ...string) *time.Time {
	t, ok := timeField(r, keys...)
	if !ok {
		return nil
	}
	return &t
}

func bytesValue(v any) []byte {
	switch b := v.(type) {
	case []byte:
		if len(b) == 0 {
			return nil
		}
		out := make([]byte, len(b))
		copy(out, b)
		return out
	case string:
		if b == "" {
			return nil
		}
		if decoded, err := base64.StdEncoding.DecodeString(b); err == nil {
			return decoded
		}
		return []byte(b)
	}
	return nil
}
