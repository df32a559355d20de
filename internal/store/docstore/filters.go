package docstore

import (
	"encoding/json"
	"regexp"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"taskboard/internal/store"
)

const dialectPostgres = "postgres"

// jsonKey limits which field names are inlined into Postgres JSON paths.
var jsonKey = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// sqlFilters translates the filters SQL can evaluate. The rest come back
// as residual and are left to Query.Apply, which checks every filter again
// on the rows SQL returns.
func sqlFilters(dialect string, q store.Query) (exprs []clause.Expression, residual int) {
	for _, f := range q.Filters {
		e, ok := sqlFilter(dialect, q, f)
		if !ok {
			residual++
			continue
		}
		exprs = append(exprs, e)
	}
	return exprs, residual
}

func sqlFilter(dialect string, q store.Query, f store.Filter) (clause.Expression, bool) {
	if f.Field == store.FieldID {
		return idFilter(q, f)
	}
	keys := strings.Split(f.Field, ".")
	for _, k := range keys {
		if !jsonKey.MatchString(k) {
			return nil, false
		}
	}
	if dialect == dialectPostgres {
		return postgresFilter(keys, f)
	}

	switch f.Op {
	case store.OpEqual:
		if _, ok := f.Value.(string); !ok {
			return nil, false
		}
		return datatypes.JSONQuery("data").Equals(f.Value, keys...), true
	case store.OpIn:
		values, ok := stringValues(f.Value)
		if !ok {
			return nil, false
		}
		return datatypes.JSONArrayQuery("data").In(values, keys...), true
	case store.OpArrayContains:
		if _, ok := f.Value.(string); !ok {
			return nil, false
		}
		return datatypes.JSONArrayQuery("data").Contains(f.Value, keys...), true
	}
	return nil, false
}

// postgresFilter uses jsonb operators so the expression index on
// (collection, data->>'projectId') and the GIN index on data apply.
func postgresFilter(keys []string, f store.Filter) (clause.Expression, bool) {
	text := "(data->>'" + keys[0] + "')"
	if len(keys) > 1 {
		text = "(data#>>'{" + strings.Join(keys, ",") + "}')"
	}

	switch f.Op {
	case store.OpEqual:
		if _, ok := f.Value.(string); !ok {
			return nil, false
		}
		return clause.Expr{SQL: text + " = ?", Vars: []any{f.Value}}, true
	case store.OpIn:
		values, ok := stringValues(f.Value)
		if !ok {
			return nil, false
		}
		return clause.Expr{SQL: text + " IN ?", Vars: []any{values}}, true
	case store.OpArrayContains:
		if _, ok := f.Value.(string); !ok {
			return nil, false
		}
		var doc any = []any{f.Value}
		for i := len(keys) - 1; i >= 0; i-- {
			doc = map[string]any{keys[i]: doc}
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, false
		}
		return clause.Expr{SQL: "data @> ?::jsonb", Vars: []any{string(raw)}}, true
	}
	return nil, false
}

// idFilter turns id filters on a collection into primary key lookups.
// Collection groups have no single parent, so they stay in Go.
func idFilter(q store.Query, f store.Filter) (clause.Expression, bool) {
	if q.Parent == "" {
		return nil, false
	}
	switch f.Op {
	case store.OpEqual:
		id, ok := f.Value.(string)
		if !ok {
			return nil, false
		}
		return clause.Expr{SQL: "path = ?", Vars: []any{store.Join(q.Parent, id)}}, true
	case store.OpIn:
		ids, ok := stringValues(f.Value)
		if !ok {
			return nil, false
		}
		paths := make([]string, len(ids))
		for i, id := range ids {
			paths[i] = store.Join(q.Parent, id)
		}
		return clause.Expr{SQL: "path IN ?", Vars: []any{paths}}, true
	}
	return nil, false
}

// stringValues accepts a non-empty list of strings.
func stringValues(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, len(list) > 0
	case []any:
		out := make([]string, 0, len(list))
		for _, e := range list {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, len(out) > 0
	}
	return nil, false
}
