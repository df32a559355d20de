// Package store defines the document store the board engine talks to:
// documents addressed by slash separated paths, collection and collection
// group queries, atomic batches, transactions and push subscriptions.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = errors.New("document not found")

	// ErrInvalidPath is returned for paths that do not address a document
	ErrInvalidPath = errors.New("invalid document path")
)

// Document is a stored document and its decoded data.
type Document struct {
	Path      string
	Data      map[string]any
	UpdatedAt time.Time
}

// ID returns the last path segment.
func (d Document) ID() string {
	return ID(d.Path)
}

// Store is the remote store adapter.
type Store interface {
	Get(ctx context.Context, path string) (Document, error)
	Set(ctx context.Context, path string, data map[string]any) error
	Update(ctx context.Context, path string, fields map[string]any) error
	Delete(ctx context.Context, path string) error
	Query(ctx context.Context, q Query) ([]Document, error)

	// Batch applies every write queued by fn or none of them.
	Batch(ctx context.Context, fn func(b *WriteBatch)) error

	// RunTransaction runs fn with reads and writes applied as one unit.
	// Returning an error from fn discards every write.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error

	// Subscribe delivers the full result set of q now and after every
	// committed change that may affect it. The returned cancel func is
	// idempotent; a delivery already under way may still complete.
	Subscribe(ctx context.Context, q Query, onSnapshot func([]Document), onError func(error)) (cancel func(), err error)
}

// Tx is the view of the store inside RunTransaction.
type Tx interface {
	Get(ctx context.Context, path string) (Document, error)
	Set(path string, data map[string]any)
	Update(path string, fields map[string]any)
	Delete(path string)
}

// OpKind identifies a queued write.
type OpKind int

const (
	OpSet OpKind = iota
	OpUpdate
	OpDelete
)

// Write is one queued write in a batch.
type Write struct {
	Kind OpKind
	Path string
	Data map[string]any
}

// WriteBatch collects writes to be committed together.
type WriteBatch struct {
	writes []Write
}

func (b *WriteBatch) Set(path string, data map[string]any) {
	b.writes = append(b.writes, Write{Kind: OpSet, Path: path, Data: data})
}

func (b *WriteBatch) Update(path string, fields map[string]any) {
	b.writes = append(b.writes, Write{Kind: OpUpdate, Path: path, Data: fields})
}

func (b *WriteBatch) Delete(path string) {
	b.writes = append(b.writes, Write{Kind: OpDelete, Path: path})
}

// Writes returns the queued writes in order.
func (b *WriteBatch) Writes() []Write {
	return b.writes
}

// Len returns the number of queued writes.
func (b *WriteBatch) Len() int {
	return len(b.writes)
}

// Apply replays the batch on a transaction.
func (b *WriteBatch) Apply(tx Tx) {
	for _, w := range b.writes {
		switch w.Kind {
		case OpSet:
			tx.Set(w.Path, w.Data)
		case OpUpdate:
			tx.Update(w.Path, w.Data)
		case OpDelete:
			tx.Delete(w.Path)
		}
	}
}
