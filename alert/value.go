package alert

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	ScalarKind Kind = iota
	ListKind
	MapKind
)

func (k Kind) String() string {
	switch k {
	case ScalarKind:
		return "scalar"
	case ListKind:
		return "list"
	case MapKind:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a single field of a Record: a scalar string, an ordered list of
// strings or a string to string mapping.
type Value struct {
	kind   Kind
	scalar string
	list   []string
	attrs  map[string]string
}

// String creates a scalar value.
func String(s string) Value {
	return Value{kind: ScalarKind, scalar: s}
}

// List creates a list value. The items are copied.
func List(items ...string) Value {
	l := make([]string, len(items))
	copy(l, items)
	return Value{kind: ListKind, list: l}
}

// Map creates a mapping value. The mapping is copied, a nil mapping yields an empty one.
func Map(m map[string]string) Value {
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return Value{kind: MapKind, attrs: c}
}

func (v Value) Kind() Kind {
	return v.kind
}

// AsString returns the scalar held by v.
func (v Value) AsString() (string, bool) {
	if v.kind != ScalarKind {
		return "", false
	}
	return v.scalar, true
}

// AsList returns a copy of the list held by v.
func (v Value) AsList() ([]string, bool) {
	if v.kind != ListKind {
		return nil, false
	}
	l := make([]string, len(v.list))
	copy(l, v.list)
	return l, true
}

// AsMap returns a copy of the mapping held by v.
func (v Value) AsMap() (map[string]string, bool) {
	if v.kind != MapKind {
		return nil, false
	}
	m := make(map[string]string, len(v.attrs))
	for k, val := range v.attrs {
		m[k] = val
	}
	return m, true
}

// Interface returns the plain Go representation of v: string, []string or map[string]string.
func (v Value) Interface() interface{} {
	switch v.kind {
	case ListKind:
		l, _ := v.AsList()
		return l
	case MapKind:
		m, _ := v.AsMap()
		return m
	default:
		return v.scalar
	}
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ListKind:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	case MapKind:
		if len(v.attrs) != len(o.attrs) {
			return false
		}
		for k, val := range v.attrs {
			if ov, ok := o.attrs[k]; !ok || ov != val {
				return false
			}
		}
		return true
	default:
		return v.scalar == o.scalar
	}
}

func (v Value) String() string {
	switch v.kind {
	case ListKind:
		return "[" + strings.Join(v.list, ", ") + "]"
	case MapKind:
		keys := make([]string, 0, len(v.attrs))
		for k := range v.attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = fmt.Sprintf("%s: %s", k, v.attrs[k])
		}
		return "{" + strings.Join(pairs, ", ") + "}"
	default:
		return v.scalar
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ListKind:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case MapKind:
		if v.attrs == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.attrs)
	default:
		return json.Marshal(v.scalar)
	}
}
