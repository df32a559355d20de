package repository

import (
	"taskboard/internal/model"
	"taskboard/internal/store"
)

func DecodeProject(doc store.Document) (model.Project, error) {
	var p model.Project
	if err := store.Decode(doc.Data, &p); err != nil {
		return p, err
	}
	p.ID = doc.ID()
	return p, nil
}

func DecodeSection(doc store.Document) (model.Section, error) {
	var s model.Section
	if err := store.Decode(doc.Data, &s); err != nil {
		return s, err
	}
	s.ID = doc.ID()
	return s, nil
}

func DecodeTask(doc store.Document) (model.Task, error) {
	var t model.Task
	if err := store.Decode(doc.Data, &t); err != nil {
		return t, err
	}
	t.ID = doc.ID()
	return t, nil
}

func DecodeTaskIndex(doc store.Document) (model.TaskIndex, error) {
	var idx model.TaskIndex
	if err := store.Decode(doc.Data, &idx); err != nil {
		return idx, err
	}
	if idx.TaskID == "" {
		idx.TaskID = doc.ID()
	}
	return idx, nil
}

func DecodeAttachment(doc store.Document) (model.Attachment, error) {
	var a model.Attachment
	if err := store.Decode(doc.Data, &a); err != nil {
		return a, err
	}
	a.ID = doc.ID()
	return a, nil
}

// DecodeSections skips documents that fail to decode and reports how many
// were skipped.
func DecodeSections(docs []store.Document) ([]model.Section, int) {
	out := make([]model.Section, 0, len(docs))
	bad := 0
	for _, d := range docs {
		s, err := DecodeSection(d)
		if err != nil {
			bad++
			continue
		}
		out = append(out, s)
	}
	return out, bad
}

func DecodeTasks(docs []store.Document) ([]model.Task, int) {
	out := make([]model.Task, 0, len(docs))
	bad := 0
	for _, d := range docs {
		t, err := DecodeTask(d)
		if err != nil {
			bad++
			continue
		}
		out = append(out, t)
	}
	return out, bad
}

func DecodeAttachments(docs []store.Document) ([]model.Attachment, int) {
	out := make([]model.Attachment, 0, len(docs))
	bad := 0
	for _, d := range docs {
		a, err := DecodeAttachment(d)
		if err != nil {
			bad++
			continue
		}
		out = append(out, a)
	}
	return out, bad
}
