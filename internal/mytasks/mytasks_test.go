package mytasks_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/mytasks"
	"taskboard/internal/repository"
	"taskboard/internal/store"
	"taskboard/internal/store/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts queries so tests can prove views never re-query.
type countingStore struct {
	store.Store
	queries atomic.Int32
}

func (c *countingStore) Query(ctx context.Context, q store.Query) ([]store.Document, error) {
	c.queries.Add(1)
	return c.Store.Query(ctx, q)
}

func day(d int) *time.Time {
	t := time.Date(2025, 3, d, 9, 0, 0, 0, time.UTC)
	return &t
}

type seeded struct {
	store   *countingStore
	alpha   *model.Project
	beta    *model.Project
	removed *model.Project
}

func seed(t *testing.T) seeded {
	t.Helper()
	ctx := context.Background()
	db, err := docstore.OpenSQLite(filepath.Join(t.TempDir(), "mytasks.db"))
	require.NoError(t, err)
	st := &countingStore{Store: docstore.New(db)}

	projects := repository.NewProjectRepository(st)
	sections := repository.NewSectionRepository(st)
	tasks := repository.NewTaskRepository(st)

	mk := func(name string) (*model.Project, string) {
		p, err := projects.Create(ctx, name, "owner")
		require.NoError(t, err)
		s, err := sections.Create(ctx, p.ID, "Todo")
		require.NoError(t, err)
		return p, s.ID
	}
	alpha, alphaSection := mk("Alpha")
	beta, betaSection := mk("Beta")
	removed, removedSection := mk("Removed")

	add := func(p *model.Project, section, id, status, priority string, due *time.Time, assignees ...string) {
		task := &model.Task{
			ID: id, Name: "Task " + id, ProjectID: p.ID, SectionID: section,
			Status: status, Priority: priority, DueDate: due, Assignees: assignees,
		}
		require.NoError(t, tasks.Create(ctx, task, nil))
	}
	add(alpha, alphaSection, "a1", model.StatusInProgress, model.PriorityLow, day(10), "bob")
	add(alpha, alphaSection, "a2", model.StatusCompleted, model.PriorityHigh, day(2), "bob", "carol")
	add(beta, betaSection, "b1", model.StatusNotStarted, model.PriorityMedium, day(5), "bob")
	add(beta, betaSection, "b2", model.StatusNotStarted, "", nil, "bob")
	add(beta, betaSection, "b3", model.StatusNotStarted, model.PriorityHigh, day(1), "carol")
	add(removed, removedSection, "r1", model.StatusNotStarted, model.PriorityHigh, day(3), "bob")

	// индекс ещё ссылается на удалённый проект
	require.NoError(t, st.Delete(ctx, model.ProjectPath(removed.ID)))

	return seeded{store: st, alpha: alpha, beta: beta, removed: removed}
}

func taskIDs(rows []mytasks.Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.Task.TaskID
	}
	return ids
}

func TestAggregator_FetchAcrossProjects(t *testing.T) {
	// Arrange
	s := seed(t)
	agg := mytasks.NewAggregator(s.store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// Act
	list, err := agg.Fetch(context.Background(), "bob")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, list.Dropped)
	assert.Equal(t, []string{"a2", "b1", "a1", "b2"}, taskIDs(list.View(mytasks.Options{})))
	for _, r := range list.Rows {
		assert.NotEqual(t, s.removed.ID, r.Project.ID)
		assert.NotEmpty(t, r.Project.Name)
	}
}

func TestList_ViewsNeverRequery(t *testing.T) {
	// Arrange
	s := seed(t)
	list, err := mytasks.NewAggregator(s.store, nil).Fetch(context.Background(), "bob")
	require.NoError(t, err)
	queries := s.store.queries.Load()

	// Act
	hidden := list.View(mytasks.Options{HideCompleted: true})
	byProject := list.View(mytasks.Options{SortBy: mytasks.SortProject})
	byStatus := list.View(mytasks.Options{SortBy: mytasks.SortStatus})
	byPriority := list.View(mytasks.Options{SortBy: mytasks.SortPriority})
	onlyBeta := list.View(mytasks.Options{ProjectID: s.beta.ID})
	started := list.View(mytasks.Options{Status: model.StatusInProgress})

	// Assert
	assert.Equal(t, queries, s.store.queries.Load())
	assert.Equal(t, []string{"b1", "a1", "b2"}, taskIDs(hidden))
	assert.Equal(t, []string{"a2", "a1", "b1", "b2"}, taskIDs(byProject))
	assert.Equal(t, []string{"b1", "b2", "a1", "a2"}, taskIDs(byStatus))
	assert.Equal(t, []string{"a2", "b1", "a1", "b2"}, taskIDs(byPriority))
	assert.Equal(t, []string{"b1", "b2"}, taskIDs(onlyBeta))
	assert.Equal(t, []string{"a1"}, taskIDs(started))
	// исходный список не пересортирован
	assert.Len(t, list.Rows, 4)
}

func TestAggregator_NoAssignments(t *testing.T) {
	s := seed(t)

	list, err := mytasks.NewAggregator(s.store, nil).Fetch(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Empty(t, list.Rows)
	assert.Zero(t, list.Dropped)
}

func TestParseSortBy(t *testing.T) {
	by, err := mytasks.ParseSortBy("")
	assert.NoError(t, err)
	assert.Equal(t, mytasks.SortDue, by)

	by, err = mytasks.ParseSortBy("priority")
	assert.NoError(t, err)
	assert.Equal(t, mytasks.SortPriority, by)

	_, err = mytasks.ParseSortBy("random")
	assert.Error(t, err)
}
