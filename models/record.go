package models

import (
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is one extracted item: a flat mapping whose keys keep the order in
// which the adapter set them. The shape varies per source.
type Record struct {
	*orderedmap.OrderedMap[string, any]
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{orderedmap.New[string, any]()}
}

// RecordOf builds a record from alternating key/value arguments.
func RecordOf(kv ...any) Record {
	r := NewRecord()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(fmt.Sprint(kv[i]), kv[i+1])
	}
	return r
}

// Keys returns the record's keys in insertion order.
func (r Record) Keys() []string {
	if r.OrderedMap == nil {
		return nil
	}
	keys := make([]string, 0, r.Len())
	for p := r.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Value returns the value for key, or nil when absent.
func (r Record) Value(key string) any {
	if r.OrderedMap == nil {
		return nil
	}
	v, _ := r.Get(key)
	return v
}

// Text returns the value for key rendered as text.
func (r Record) Text(key string) string {
	return Stringify(r.Value(key))
}

// MarshalJSON keeps key order; a zero Record encodes as an empty object.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.OrderedMap == nil {
		return []byte("{}"), nil
	}
	return r.OrderedMap.MarshalJSON()
}

// UnmarshalJSON decodes an object preserving key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	if r.OrderedMap == nil {
		r.OrderedMap = orderedmap.New[string, any]()
	}
	return r.OrderedMap.UnmarshalJSON(data)
}

// Stringify renders a record value as flat text for CSV cells and XML nodes.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
