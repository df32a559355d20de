package store

import (
	"fmt"
	"strings"
)

// Join builds a path from alternating collection and document ids.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// ValidateDocPath checks that path names a document: a non-empty, even
// number of non-empty segments.
func ValidateDocPath(path string) error {
	segs := strings.Split(path, "/")
	if path == "" || len(segs)%2 != 0 {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	for _, s := range segs {
		if s == "" {
			return fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return nil
}

// ID returns the document id of path.
func ID(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Parent returns the collection path that contains the document.
func Parent(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return ""
}

// CollectionID returns the id of the collection holding the document,
// e.g. "tasks" for "projects/p1/sections/s1/tasks/t1".
func CollectionID(path string) string {
	return ID(Parent(path))
}
