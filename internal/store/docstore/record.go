package docstore

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"taskboard/internal/store"
)

// Record is the row behind every document. Parent and Collection are kept
// as columns so collection and collection group queries hit an index.
type Record struct {
	Path       string            `gorm:"primaryKey"`
	Parent     string            `gorm:"not null;index"`
	Collection string            `gorm:"not null;index"`
	Data       datatypes.JSONMap `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Record) TableName() string {
	return "documents"
}

func newRecord(path string, data map[string]any, now time.Time) Record {
	return Record{
		Path:       path,
		Parent:     store.Parent(path),
		Collection: store.CollectionID(path),
		Data:       datatypes.JSONMap(data),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (r Record) document() store.Document {
	data, _ := plain(map[string]any(r.Data)).(map[string]any)
	if data == nil {
		data = map[string]any{}
	}
	return store.Document{Path: r.Path, Data: data, UpdatedAt: r.UpdatedAt}
}

// plain replaces json.Number values produced by the JSON column scanner
// with float64 so documents look the same on every backend.
func plain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	}
	return v
}
