// Package ordering holds the integer order rules for sections and tasks.
// Nothing here does I/O.
package ordering

import (
	"slices"
	"sort"

	"taskboard/internal/model"
)

// Assignment is the order a document gets after a renumber.
type Assignment struct {
	ID    string
	Order int
}

// SortSections orders sections by Order, ties broken by id.
func SortSections(sections []model.Section) {
	sort.SliceStable(sections, func(i, j int) bool {
		if sections[i].Order != sections[j].Order {
			return sections[i].Order < sections[j].Order
		}
		return sections[i].ID < sections[j].ID
	})
}

// SortTasks orders tasks by Order, ties broken by id.
func SortTasks(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Order != tasks[j].Order {
			return tasks[i].Order < tasks[j].Order
		}
		return tasks[i].ID < tasks[j].ID
	})
}

// Renumber gives every id its index in ids. The final presentation order
// is the only tie-break.
func Renumber(ids []string) []Assignment {
	out := make([]Assignment, len(ids))
	for i, id := range ids {
		out[i] = Assignment{ID: id, Order: i}
	}
	return out
}

// Move returns ids with id moved to index (clamped). ids is not modified.
// An id that is not present is inserted.
func Move(ids []string, id string, index int) []string {
	out := Remove(ids, id)
	return Insert(out, id, index)
}

// Transfer moves id from one list to another at index. Both inputs are
// left untouched.
func Transfer(from, to []string, id string, index int) (newFrom, newTo []string) {
	return Remove(from, id), Insert(Remove(to, id), id, index)
}

// Remove returns ids without id.
func Remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Insert returns ids with id placed at index, clamped to the valid range.
func Insert(ids []string, id string, index int) []string {
	index = max(0, min(index, len(ids)))
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:index]...)
	out = append(out, id)
	return append(out, ids[index:]...)
}

// Next returns an order that sorts after every order in orders.
func Next(orders []int) int {
	if len(orders) == 0 {
		return 0
	}
	return slices.Max(orders) + 1
}

// Distinct reports whether every id and every order is assigned once.
// An order list naming an id twice fails it.
func Distinct(assignments []Assignment) bool {
	ids := make(map[string]bool, len(assignments))
	orders := make(map[int]bool, len(assignments))
	for _, a := range assignments {
		if ids[a.ID] || orders[a.Order] {
			return false
		}
		ids[a.ID], orders[a.Order] = true, true
	}
	return true
}

// TaskIDs returns the ids of tasks in their current order.
func TaskIDs(tasks []model.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
