package store

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// Op is a filter operator.
type Op string

const (
	OpEqual         Op = "=="
	OpArrayContains Op = "array-contains"
	OpIn            Op = "in"
)

// FieldID filters or orders on the document id instead of a data field.
const FieldID = "__id__"

// MaxInValues bounds the value list of an "in" filter.
const MaxInValues = 30

type Filter struct {
	Field string
	Op    Op
	Value any
}

type Order struct {
	Field string
	Desc  bool
}

// Query selects documents either from one collection (Parent) or from
// every collection with a given id at any depth (CollectionGroup).
type Query struct {
	Parent          string
	CollectionGroup string
	Filters         []Filter
	Orders          []Order
	Limit           int
}

// Collection queries the documents directly under a collection path.
func Collection(path string) Query {
	return Query{Parent: path}
}

// Group queries every collection named id, wherever it is nested.
func Group(id string) Query {
	return Query{CollectionGroup: id}
}

func (q Query) Where(field string, op Op, value any) Query {
	q.Filters = append(slices.Clone(q.Filters), Filter{Field: field, Op: op, Value: value})
	return q
}

func (q Query) OrderBy(field string, desc bool) Query {
	q.Orders = append(slices.Clone(q.Orders), Order{Field: field, Desc: desc})
	return q
}

func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

// Validate rejects queries the store cannot serve.
func (q Query) Validate() error {
	if (q.Parent == "") == (q.CollectionGroup == "") {
		return fmt.Errorf("query needs exactly one of parent or collection group")
	}
	if q.Parent != "" && len(strings.Split(q.Parent, "/"))%2 != 1 {
		return fmt.Errorf("%w: %q is not a collection", ErrInvalidPath, q.Parent)
	}
	for _, f := range q.Filters {
		switch f.Op {
		case OpEqual, OpArrayContains:
		case OpIn:
			n := reflect.ValueOf(f.Value)
			if n.Kind() != reflect.Slice {
				return fmt.Errorf("in filter on %q needs a slice", f.Field)
			}
			if n.Len() > MaxInValues {
				return fmt.Errorf("in filter on %q has %d values, max %d", f.Field, n.Len(), MaxInValues)
			}
		default:
			return fmt.Errorf("unsupported operator %q", f.Op)
		}
	}
	return nil
}

// Covers reports whether a write to path can change the result of q.
func (q Query) Covers(path string) bool {
	if q.Parent != "" {
		return Parent(path) == q.Parent
	}
	return CollectionID(path) == q.CollectionGroup
}

// Affects reports whether c can change the result of q: the path is in
// the query's collection and the document matched the filters before or
// after the write.
func (q Query) Affects(c Change) bool {
	if !q.Covers(c.Path) {
		return false
	}
	if c.Opaque {
		return true
	}
	return q.mayMatch(c.Path, c.Before) || q.mayMatch(c.Path, c.After)
}

// mayMatch is Matches on routing fields only. A filter on a field data
// does not carry cannot rule the document out.
func (q Query) mayMatch(path string, data map[string]any) bool {
	if data == nil {
		return false
	}
	d := Document{Path: path, Data: data}
	for _, f := range q.Filters {
		if _, ok := fieldValue(d, f.Field); !ok {
			continue
		}
		if !(Query{Filters: []Filter{f}}).Matches(d) {
			return false
		}
	}
	return true
}

// Apply filters, sorts and limits docs the way the query asks. Documents
// outside the query's collection are expected to be excluded already.
func (q Query) Apply(docs []Document) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if q.Matches(d) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		for _, o := range q.Orders {
			c := compareField(out[i], out[j], o.Field)
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return out[i].Path < out[j].Path
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// Matches evaluates every filter against d.
func (q Query) Matches(d Document) bool {
	for _, f := range q.Filters {
		v, ok := fieldValue(d, f.Field)
		switch f.Op {
		case OpEqual:
			if !ok || !equal(v, f.Value) {
				return false
			}
		case OpArrayContains:
			arr, isArr := v.([]any)
			if !ok || !isArr || !slices.ContainsFunc(arr, func(e any) bool { return equal(e, f.Value) }) {
				return false
			}
		case OpIn:
			if !ok || !inSlice(v, f.Value) {
				return false
			}
		}
	}
	return true
}

func fieldValue(d Document, field string) (any, bool) {
	if field == FieldID {
		return d.ID(), true
	}
	return GetField(d.Data, field)
}

// GetField reads a dotted field path from data.
func GetField(data map[string]any, field string) (any, bool) {
	cur := any(data)
	for _, part := range strings.Split(field, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func inSlice(v, list any) bool {
	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if equal(v, rv.Index(i).Interface()) {
			return true
		}
	}
	return false
}

func equal(a, b any) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum || bNum {
		return aNum && bNum && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// compareField orders missing values after present ones.
func compareField(a, b Document, field string) int {
	va, okA := fieldValue(a, field)
	vb, okB := fieldValue(b, field)
	okA = okA && va != nil
	okB = okB && vb != nil
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	return compareValues(va, vb)
}

func typeRank(v any) int {
	if _, ok := toFloat(v); ok {
		return 2
	}
	switch v.(type) {
	case bool:
		return 1
	case string:
		return 3
	}
	return 4
}

func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 1:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	case 2:
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 3:
		return strings.Compare(a.(string), b.(string))
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
