package vidispine

import (
	"net/url"
	"strconv"
	"strings"
)

// Value is a parameter value: either a single string or a list of strings.
// A list renders as one key=value pair per element.
type Value struct {
	items []string
	list  bool
}

// Scalar returns a single-valued parameter.
func Scalar(s string) Value {
	return Value{items: []string{s}}
}

// Int is Scalar for integers.
func Int(n int64) Value {
	return Scalar(strconv.FormatInt(n, 10))
}

// Bool is Scalar for booleans, rendered as "true" or "false".
func Bool(b bool) Value {
	return Scalar(strconv.FormatBool(b))
}

// List returns a multi-valued parameter.
func List(items ...string) Value {
	return Value{items: append([]string(nil), items...), list: true}
}

// IsList reports whether the value was built with List.
func (v Value) IsList() bool { return v.list }

// Values returns the value's elements in order.
func (v Value) Values() []string { return append([]string(nil), v.items...) }

// String returns the first element, or "" for an empty list.
func (v Value) String() string {
	if len(v.items) == 0 {
		return ""
	}
	return v.items[0]
}

// Param is one key of a Params set.
type Param struct {
	Key   string
	Value Value
}

// Params is an ordered set of matrix or query parameters.
type Params []Param

// Set replaces key's value in place, or appends it if absent.
func (p Params) Set(key string, v Value) Params {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = v
			return p
		}
	}
	return append(p, Param{Key: key, Value: v})
}

// Add appends key without replacing an existing entry.
func (p Params) Add(key string, v Value) Params {
	return append(p, Param{Key: key, Value: v})
}

// Get returns key's value.
func (p Params) Get(key string) (Value, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return Value{}, false
}

// Merge returns a copy of p with every key of other set on it.
func (p Params) Merge(other Params) Params {
	out := append(Params(nil), p...)
	for _, param := range other {
		out = out.Set(param.Key, param.Value)
	}
	return out
}

func (p Params) pairs() []string {
	var pairs []string
	for _, param := range p {
		key := escapeComponent(param.Key)
		for _, item := range param.Value.items {
			pairs = append(pairs, key+"="+escapeComponent(item))
		}
	}
	return pairs
}

// BuildURL appends matrix parameters (";k=v") and a query string ("?k=v&...")
// to basePath. Keys and values are escaped individually; "/" inside a value
// becomes %2F.
func BuildURL(basePath string, matrix, query Params) string {
	var b strings.Builder
	b.WriteString(basePath)
	for _, pair := range matrix.pairs() {
		b.WriteByte(';')
		b.WriteString(pair)
	}
	if q := query.pairs(); len(q) > 0 {
		b.WriteByte('?')
		b.WriteString(strings.Join(q, "&"))
	}
	return b.String()
}

// escapeComponent escapes everything except unreserved characters.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// apiPath prefixes the API root and escapes literal spaces in the caller's path.
func apiPath(path string) string {
	return APIRoot + strings.ReplaceAll(path, " ", "%20")
}
