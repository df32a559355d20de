package docstore_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"taskboard/internal/store"
	"taskboard/internal/store/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *docstore.Store {
	t.Helper()
	db, err := docstore.OpenSQLite(filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	return docstore.New(db)
}

func TestStore_SetGetUpdateDelete(t *testing.T) {
	// Arrange
	ctx := context.Background()
	s := newSQLiteStore(t)
	path := "projects/p1/sections/s1/tasks/t1"

	// Act
	require.NoError(t, s.Set(ctx, path, map[string]any{"name": "Write", "order": 0, "likedBy": map[string]any{"u1": true}}))
	require.NoError(t, s.Update(ctx, path, map[string]any{
		"order":      3,
		"likeCount":  store.Increment(1),
		"likedBy.u2": true,
		"likedBy.u1": store.DeleteField,
	}))
	doc, err := s.Get(ctx, path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "t1", doc.ID())
	assert.Equal(t, "Write", doc.Data["name"])
	assert.Equal(t, float64(3), doc.Data["order"])
	assert.Equal(t, float64(1), doc.Data["likeCount"])
	assert.Equal(t, map[string]any{"u2": true}, doc.Data["likedBy"])
	assert.False(t, doc.UpdatedAt.IsZero())

	require.NoError(t, s.Delete(ctx, path))
	_, err = s.Get(ctx, path)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_InvalidPath(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	_, err := s.Get(ctx, "projects")
	assert.ErrorIs(t, err, store.ErrInvalidPath)
	assert.ErrorIs(t, s.Set(ctx, "projects/p1/sections", map[string]any{}), store.ErrInvalidPath)
}

func TestStore_BatchIsAllOrNothing(t *testing.T) {
	// Arrange
	ctx := context.Background()
	s := newSQLiteStore(t)
	require.NoError(t, s.Set(ctx, "projects/p1", map[string]any{"name": "A"}))

	// Act: второе обновление указывает на несуществующий документ
	err := s.Batch(ctx, func(b *store.WriteBatch) {
		b.Update("projects/p1", map[string]any{"name": "B"})
		b.Set("projects/p2", map[string]any{"name": "C"})
		b.Update("projects/missing", map[string]any{"name": "D"})
	})

	// Assert
	assert.ErrorIs(t, err, store.ErrNotFound)
	doc, err := s.Get(ctx, "projects/p1")
	require.NoError(t, err)
	assert.Equal(t, "A", doc.Data["name"])
	_, err = s.Get(ctx, "projects/p2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_TransactionErrorDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	require.NoError(t, s.Set(ctx, "projects/p1", map[string]any{"name": "A"}))
	boom := errors.New("boom")

	err := s.RunTransaction(ctx, func(tx store.Tx) error {
		doc, err := tx.Get(ctx, "projects/p1")
		if err != nil {
			return err
		}
		tx.Set("projects/p1", map[string]any{"name": doc.Data["name"].(string) + "!"})
		return boom
	})

	assert.ErrorIs(t, err, boom)
	doc, err := s.Get(ctx, "projects/p1")
	require.NoError(t, err)
	assert.Equal(t, "A", doc.Data["name"])
}

func TestStore_TransactionMovesDocument(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	from := "projects/p1/sections/s1/tasks/t1"
	to := "projects/p1/sections/s2/tasks/t1"
	require.NoError(t, s.Set(ctx, from, map[string]any{"name": "T", "sectionId": "s1"}))

	err := s.RunTransaction(ctx, func(tx store.Tx) error {
		doc, err := tx.Get(ctx, from)
		if err != nil {
			return err
		}
		data, err := store.ApplyUpdate(doc.Data, map[string]any{"sectionId": "s2"})
		if err != nil {
			return err
		}
		tx.Set(to, data)
		tx.Delete(from)
		return nil
	})

	require.NoError(t, err)
	_, err = s.Get(ctx, from)
	assert.ErrorIs(t, err, store.ErrNotFound)
	doc, err := s.Get(ctx, to)
	require.NoError(t, err)
	assert.Equal(t, "s2", doc.Data["sectionId"])
}

func TestStore_QueryCollectionAndGroup(t *testing.T) {
	// Arrange
	ctx := context.Background()
	s := newSQLiteStore(t)
	require.NoError(t, s.Batch(ctx, func(b *store.WriteBatch) {
		b.Set("projects/p1/sections/s1/tasks/a", map[string]any{"projectId": "p1", "order": 1})
		b.Set("projects/p1/sections/s2/tasks/b", map[string]any{"projectId": "p1", "order": 0})
		b.Set("projects/p2/sections/s3/tasks/c", map[string]any{"projectId": "p2", "order": 0})
		b.Set("projects/p1/sections/s1", map[string]any{"order": 0})
	}))

	// Act
	group, err := s.Query(ctx, store.Group("tasks").Where("projectId", store.OpEqual, "p1").OrderBy("order", false))
	require.NoError(t, err)
	coll, err := s.Query(ctx, store.Collection("projects/p1/sections/s1/tasks"))
	require.NoError(t, err)

	// Assert
	require.Len(t, group, 2)
	assert.Equal(t, "b", group[0].ID())
	assert.Equal(t, "a", group[1].ID())
	require.Len(t, coll, 1)
	assert.Equal(t, "a", coll[0].ID())

	_, err = s.Query(ctx, store.Query{})
	assert.Error(t, err)
}

func TestStore_SubscribeDeliversChangesUntilCancel(t *testing.T) {
	// Arrange
	ctx := context.Background()
	s := newSQLiteStore(t)
	snapshots := make(chan []store.Document, 8)

	cancel, err := s.Subscribe(ctx, store.Collection("projects/p1/sections"),
		func(docs []store.Document) { snapshots <- docs }, nil)
	require.NoError(t, err)

	next := func() []store.Document {
		select {
		case docs := <-snapshots:
			return docs
		case <-time.After(5 * time.Second):
			t.Fatal("no snapshot")
			return nil
		}
	}

	// Act & Assert
	assert.Empty(t, next())

	require.NoError(t, s.Set(ctx, "projects/p1/sections/s1", map[string]any{"title": "Todo"}))
	assert.Len(t, next(), 1)

	// запись в другую коллекцию подписку не будит
	require.NoError(t, s.Set(ctx, "projects/p2/sections/s9", map[string]any{"title": "Other"}))
	require.NoError(t, s.Set(ctx, "projects/p1/sections/s2", map[string]any{"title": "Done"}))
	assert.Len(t, next(), 2)

	cancel()
	cancel()
	require.NoError(t, s.Set(ctx, "projects/p1/sections/s3", map[string]any{"title": "Later"}))
	select {
	case <-snapshots:
		t.Fatal("snapshot after cancel")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, 0, s.Hub().Len())
}

func TestStore_QueryFiltersOnSQLite(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	require.NoError(t, s.Batch(ctx, func(b *store.WriteBatch) {
		b.Set("taskIndex/a", map[string]any{"projectId": "p1", "assignees": []any{"u1", "u2"}})
		b.Set("taskIndex/b", map[string]any{"projectId": "p2", "assignees": []any{"u2"}})
		b.Set("taskIndex/c", map[string]any{"projectId": "p3", "assignees": []any{}})
		b.Set("projects/p1", map[string]any{"name": "One"})
		b.Set("projects/p2", map[string]any{"name": "Two"})
	}))

	ids := func(docs []store.Document) []string {
		out := make([]string, len(docs))
		for i, d := range docs {
			out[i] = d.ID()
		}
		return out
	}

	tests := []struct {
		name string
		q    store.Query
		want []string
	}{
		{"ArrayContains", store.Group("taskIndex").Where("assignees", store.OpArrayContains, "u2"), []string{"a", "b"}},
		{"ArrayContainsNone", store.Group("taskIndex").Where("assignees", store.OpArrayContains, "u9"), []string{}},
		{"In", store.Group("taskIndex").Where("projectId", store.OpIn, []string{"p1", "p3"}), []string{"a", "c"}},
		{"Equal", store.Group("taskIndex").Where("projectId", store.OpEqual, "p2"), []string{"b"}},
		{"IDs", store.Collection("projects").Where(store.FieldID, store.OpIn, []string{"p2", "p9"}), []string{"p2"}},
		{"Limit", store.Group("taskIndex").WithLimit(2), []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := s.Query(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(docs))
		})
	}
}

func TestStore_SubscribeIgnoresOtherProjects(t *testing.T) {
	// Arrange
	ctx := context.Background()
	s := newSQLiteStore(t)
	var snapshots atomic.Int32
	cancel, err := s.Subscribe(ctx, store.Group("tasks").Where("projectId", store.OpEqual, "pB"),
		func([]store.Document) { snapshots.Add(1) }, nil)
	require.NoError(t, err)
	defer cancel()
	require.Eventually(t, func() bool { return snapshots.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

	// Act: двадцать задач в чужом проекте
	for i := 0; i < 20; i++ {
		path := fmt.Sprintf("projects/pA/sections/s/tasks/t%d", i)
		require.NoError(t, s.Set(ctx, path, map[string]any{"projectId": "pA", "order": i}))
	}
	time.Sleep(100 * time.Millisecond)

	// Assert
	assert.Equal(t, int32(1), snapshots.Load())

	// перенос задачи из pB будит подписку: документ совпадал до записи
	require.NoError(t, s.Set(ctx, "projects/pB/sections/s/tasks/x", map[string]any{"projectId": "pB"}))
	require.Eventually(t, func() bool { return snapshots.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Update(ctx, "projects/pB/sections/s/tasks/x", map[string]any{"projectId": "pA"}))
	require.Eventually(t, func() bool { return snapshots.Load() == 3 }, 5*time.Second, 10*time.Millisecond)
}

func TestStore_ConcurrentIncrementsAreNotLost(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	path := "taskIndex/t1"
	require.NoError(t, s.Set(ctx, path, map[string]any{"likeCount": 0}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Update(ctx, path, map[string]any{"likeCount": store.Increment(1)}))
		}()
	}
	wg.Wait()

	doc, err := s.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, float64(20), doc.Data["likeCount"])
}
