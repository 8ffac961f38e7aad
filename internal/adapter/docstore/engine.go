package docstore

import (
	"bytes"
	"cmp"
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// Execute runs q over candidate records of one collection: filter, order,
// skip to the cursor, and cut to the limit. Candidates are not modified.
func Execute(candidates []Record, q Query) Result {
	matched := make([]Record, 0, len(candidates))
	for _, r := range candidates {
		if Matches(r, q.Filters) {
			matched = append(matched, r)
		}
	}

	slices.SortFunc(matched, func(a, b Record) int {
		return compareRecords(a, b, q.OrderBy)
	})

	if q.After != nil {
		start := len(matched)
		for i, r := range matched {
			if compareToCursor(r, *q.After, q.OrderBy) > 0 {
				start = i
				break
			}
		}
		matched = matched[start:]
	}

	var res Result
	if q.Limit > 0 && len(matched) >= q.Limit {
		matched = matched[:q.Limit]
		res.Next = CursorOf(matched[len(matched)-1], q.OrderBy)
	}
	res.Records = make([]Record, len(matched))
	for i, r := range matched {
		res.Records[i] = Clone(r)
	}
	return res
}

// Matches reports whether r satisfies every filter.
func Matches(r Record, filters []Filter) bool {
	for _, f := range filters {
		if !matchField(r, f.Field, f.Value) {
			return false
		}
	}
	return true
}

func matchField(r Record, field string, want any) bool {
	if opt, ok := want.(OrAbsent); ok {
		if v, present := r[field]; !present || v == nil {
			return true
		}
		want = opt.Value
	}
	return Equal(r[field], want)
}

// Equal compares two stored values across the encodings the stores produce.
func Equal(a, b any) bool {
	return Compare(a, b) == 0
}

func compareRecords(a, b Record, order OrderBy) int {
	c := Compare(a[order.Field], b[order.Field])
	if c == 0 {
		idA, _ := a[FieldID].(string)
		idB, _ := b[FieldID].(string)
		c = strings.Compare(idA, idB)
	}
	if order.Desc {
		return -c
	}
	return c
}

func compareToCursor(r Record, cur Cursor, order OrderBy) int {
	return compareRecords(r, Record{order.Field: cur.Value, FieldID: cur.ID}, order)
}

// Compare orders two stored values. Values of different kinds order by kind:
// nil, bool, number, time, string, other.
func Compare(a, b any) int {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	switch ka {
	case kindNil:
		return 0
	case kindBool:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	case kindNumber:
		return cmp.Compare(toFloat(a), toFloat(b))
	case kindTime:
		return a.(time.Time).Compare(b.(time.Time))
	case kindString:
		return strings.Compare(a.(string), b.(string))
	}
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	return bytes.Compare(ja, jb)
}

const (
	kindNil = iota
	kindBool
	kindNumber
	kindTime
	kindString
	kindOther
)

func kindOf(v any) int {
	switch v.(type) {
	case nil:
		return kindNil
	case bool:
		return kindBool
	case int, int32, int64, float32, float64, json.Number:
		return kindNumber
	case time.Time:
		return kindTime
	case string:
		return kindString
	}
	return kindOther
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}

// Clone deep-copies a record so callers never share nested slices or maps
// with a store.
func Clone(r Record) Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Clone(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return slices.Clone(t)
	case []byte:
		return bytes.Clone(t)
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out
	}
	return v
}

// Merge applies patch onto base in place, key by key.
func Merge(base, patch Record) {
	for k, v := range patch {
		base[k] = cloneValue(v)
	}
}

// Satisfies reports whether r holds every precondition value.
func Satisfies(r Record, precondition map[string]any) bool {
	for k, want := range precondition {
		if !matchField(r, k, want) {
			return false
		}
	}
	return true
}
