package render_test

import (
	"bytes"
	"testing"
	"time"

	"taskboard/internal/board"
	"taskboard/internal/model"
	"taskboard/internal/mytasks"
	"taskboard/internal/render"

	"github.com/stretchr/testify/assert"
)

func TestBoard_ShowsColumnsInOrder(t *testing.T) {
	// Arrange
	v := board.View{
		Sections: []board.SectionView{
			{ID: "s1", Title: "Todo", Tasks: []board.TaskView{
				{ID: "a", Name: "Write tests", Status: model.StatusInProgress, LikeCount: 2, Liked: true},
				{ID: "draft-1", Name: "New idea", IsNew: true},
			}},
			{ID: "s2", Title: "Done", Collapsed: true, Tasks: []board.TaskView{{ID: "b", Name: "Hidden"}}},
		},
		Panes: map[board.Pane]board.PaneState{
			board.PaneSections:    {Loaded: true},
			board.PaneAttachments: {Error: "could not load attachments"},
		},
		Focus: &board.Focus{TaskID: "draft-1", SelectAll: true},
	}

	// Act
	out := render.Board(v)

	// Assert
	assert.Contains(t, out, "Todo")
	assert.Contains(t, out, "Write tests")
	assert.Contains(t, out, "♥2")
	assert.Contains(t, out, "+ New idea")
	assert.Contains(t, out, "could not load attachments")
	assert.Less(t, bytes.Index([]byte(out), []byte("Todo")), bytes.Index([]byte(out), []byte("Done")))
	// свёрнутая колонка не показывает задачи
	assert.NotContains(t, out, "Hidden")
}

func TestBoard_Loading(t *testing.T) {
	assert.Contains(t, render.Board(board.View{}), "loading")
}

func TestTerminal_Render(t *testing.T) {
	var buf bytes.Buffer
	term := render.NewTerminal(&buf)

	term.Render(board.View{Sections: []board.SectionView{{ID: "s", Title: "Backlog"}}, Panes: map[board.Pane]board.PaneState{board.PaneSections: {Loaded: true}}})

	assert.Contains(t, buf.String(), "Backlog")
}

func TestMyTasks(t *testing.T) {
	due := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	rows := []mytasks.Row{
		{Task: model.TaskIndex{TaskID: "1", Name: "Ship it", Status: model.StatusNotStarted, DueDate: &due}, Project: mytasks.ProjectRef{ID: "p", Name: "Launch"}},
		{Task: model.TaskIndex{TaskID: "2", Name: "Review", Status: model.StatusCompleted}, Project: mytasks.ProjectRef{ID: "p", Name: "Launch"}},
	}

	out := render.MyTasks(rows)

	assert.Contains(t, out, "Ship it")
	assert.Contains(t, out, "2025-04-01")
	assert.Contains(t, out, "Launch")
	assert.Contains(t, render.MyTasks(nil), "nothing assigned")
	assert.Contains(t, render.Summary(2, 3, 1), "1 skipped")
}
