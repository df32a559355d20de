// Package docstore implements store.Store on a single gorm table. It runs
// on Postgres in production and on SQLite in tests and local runs.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskboard/internal/store"
)

// maxNotifyPayload stays under the Postgres NOTIFY payload limit.
const maxNotifyPayload = 7900

type Store struct {
	db      *gorm.DB
	hub     *store.Hub
	channel string
	logger  *slog.Logger
	now     func() time.Time
}

var _ store.Store = (*Store)(nil)

type Option func(*Store)

// WithNotifyChannel makes commits announce changed paths with pg_notify on
// channel instead of waking the local hub directly. Pair it with Listen.
func WithNotifyChannel(channel string) Option {
	return func(s *Store) { s.channel = channel }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		hub:    store.NewHub(),
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hub returns the hub that drives subscriptions.
func (s *Store) Hub() *store.Hub {
	return s.hub
}

func (s *Store) Get(ctx context.Context, path string) (store.Document, error) {
	if err := store.ValidateDocPath(path); err != nil {
		return store.Document{}, err
	}
	var rec Record
	if err := s.db.WithContext(ctx).Where("path = ?", path).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.Document{}, fmt.Errorf("get %s: %w", path, store.ErrNotFound)
		}
		return store.Document{}, fmt.Errorf("get %s: %w", path, err)
	}
	return rec.document(), nil
}

func (s *Store) Set(ctx context.Context, path string, data map[string]any) error {
	return s.Batch(ctx, func(b *store.WriteBatch) { b.Set(path, data) })
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]any) error {
	return s.Batch(ctx, func(b *store.WriteBatch) { b.Update(path, fields) })
}

func (s *Store) Delete(ctx context.Context, path string) error {
	return s.Batch(ctx, func(b *store.WriteBatch) { b.Delete(path) })
}

func (s *Store) Query(ctx context.Context, q store.Query) ([]store.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	tx := s.db.WithContext(ctx).Model(&Record{})
	if q.Parent != "" {
		tx = tx.Where("parent = ?", q.Parent)
	} else {
		tx = tx.Where("collection = ?", q.CollectionGroup)
	}
	exprs, residual := sqlFilters(s.db.Dialector.Name(), q)
	for _, e := range exprs {
		tx = tx.Where(e)
	}
	if residual == 0 && len(q.Orders) == 0 && q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	var recs []Record
	if err := tx.Order("path").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	docs := make([]store.Document, len(recs))
	for i, r := range recs {
		docs[i] = r.document()
	}
	return q.Apply(docs), nil
}

func (s *Store) Batch(ctx context.Context, fn func(b *store.WriteBatch)) error {
	var b store.WriteBatch
	fn(&b)
	if b.Len() == 0 {
		return nil
	}
	return s.commit(ctx, func(t *txn) error {
		b.Apply(t)
		return nil
	})
}

func (s *Store) RunTransaction(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.commit(ctx, func(t *txn) error { return fn(t) })
}

func (s *Store) Subscribe(ctx context.Context, q store.Query, onSnapshot func([]store.Document), onError func(error)) (func(), error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	fetch := func(ctx context.Context) ([]store.Document, error) {
		return s.Query(ctx, q)
	}
	return s.hub.Watch(ctx, q, fetch, onSnapshot, onError), nil
}

func (s *Store) commit(ctx context.Context, fn func(t *txn) error) error {
	var changed []store.Change
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t := &txn{tx: tx}
		if err := fn(t); err != nil {
			return err
		}
		if t.err != nil {
			return t.err
		}
		changes, err := t.flush(s.now())
		if err != nil {
			return err
		}
		changed = changes
		if s.channel == "" {
			return nil
		}
		// NOTIFY is delivered only if the transaction commits
		for _, payload := range notifyPayloads(changes) {
			if err := tx.Exec("SELECT pg_notify(?, ?)", s.channel, payload).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Debug("commit rejected", "err", err)
		return err
	}
	if s.channel == "" {
		s.hub.Publish(changed)
	}
	return nil
}

// notifyPayloads packs changes into JSON arrays that each fit one NOTIFY.
// A change too large on its own goes out opaque, with its path only.
func notifyPayloads(changes []store.Change) []string {
	var payloads []string
	var cur []byte
	for _, c := range changes {
		raw, err := json.Marshal(c)
		if err != nil || len(raw)+2 > maxNotifyPayload {
			raw, _ = json.Marshal(store.Change{Path: c.Path, Opaque: true})
		}
		if len(cur) > 0 && len(cur)+len(raw)+2 > maxNotifyPayload {
			payloads = append(payloads, string(cur)+"]")
			cur = nil
		}
		if len(cur) == 0 {
			cur = append(cur, '[')
		} else {
			cur = append(cur, ',')
		}
		cur = append(cur, raw...)
	}
	if len(cur) > 0 {
		payloads = append(payloads, string(cur)+"]")
	}
	return payloads
}

// txn buffers writes; they are applied in order when the transaction
// function returns without error.
type txn struct {
	tx     *gorm.DB
	writes []store.Write
	err    error
}

func (t *txn) Get(ctx context.Context, path string) (store.Document, error) {
	if err := store.ValidateDocPath(path); err != nil {
		return store.Document{}, err
	}
	var rec Record
	err := t.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("path = ?", path).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.Document{}, fmt.Errorf("get %s: %w", path, store.ErrNotFound)
		}
		return store.Document{}, fmt.Errorf("get %s: %w", path, err)
	}
	return rec.document(), nil
}

func (t *txn) Set(path string, data map[string]any) {
	t.queue(store.Write{Kind: store.OpSet, Path: path, Data: data})
}

func (t *txn) Update(path string, fields map[string]any) {
	t.queue(store.Write{Kind: store.OpUpdate, Path: path, Data: fields})
}

func (t *txn) Delete(path string) {
	t.queue(store.Write{Kind: store.OpDelete, Path: path})
}

func (t *txn) queue(w store.Write) {
	if err := store.ValidateDocPath(w.Path); err != nil {
		if t.err == nil {
			t.err = err
		}
		return
	}
	t.writes = append(t.writes, w)
}

// flush applies the queued writes and reports one change per path, from
// its state before the first write to its state after the last.
func (t *txn) flush(now time.Time) ([]store.Change, error) {
	at := make(map[string]int, len(t.writes))
	changes := make([]store.Change, 0, len(t.writes))
	for _, w := range t.writes {
		before, after, err := t.apply(w, now)
		if err != nil {
			return nil, err
		}
		if i, ok := at[w.Path]; ok {
			changes[i].After = store.RoutingFields(after)
			continue
		}
		at[w.Path] = len(changes)
		changes = append(changes, store.NewChange(w.Path, before, after))
	}
	return changes, nil
}

// locked reads the current data of path with a row lock. It returns nil
// when the document does not exist.
func (t *txn) locked(path string) (map[string]any, error) {
	var rec Record
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("path = ?", path).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	data, _ := plain(map[string]any(rec.Data)).(map[string]any)
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

func (t *txn) apply(w store.Write, now time.Time) (before, after map[string]any, err error) {
	before, err = t.locked(w.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", w.Path, err)
	}

	switch w.Kind {
	case store.OpSet:
		data, err := store.PrepareSet(w.Data)
		if err != nil {
			return nil, nil, err
		}
		rec := newRecord(w.Path, data, now)
		err = t.tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).Create(&rec).Error
		if err != nil {
			return nil, nil, fmt.Errorf("set %s: %w", w.Path, err)
		}
		return before, data, nil
	case store.OpUpdate:
		if before == nil {
			return nil, nil, fmt.Errorf("update %s: %w", w.Path, store.ErrNotFound)
		}
		data, err := store.ApplyUpdate(before, w.Data)
		if err != nil {
			return nil, nil, fmt.Errorf("update %s: %w", w.Path, err)
		}
		err = t.tx.Model(&Record{}).Where("path = ?", w.Path).Updates(map[string]any{
			"data":       datatypes.JSONMap(data),
			"updated_at": now,
		}).Error
		if err != nil {
			return nil, nil, fmt.Errorf("update %s: %w", w.Path, err)
		}
		return before, data, nil
	case store.OpDelete:
		if err := t.tx.Where("path = ?", w.Path).Delete(&Record{}).Error; err != nil {
			return nil, nil, fmt.Errorf("delete %s: %w", w.Path, err)
		}
		return before, nil, nil
	}
	return before, before, nil
}
