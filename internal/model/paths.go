package model

import "taskboard/internal/store"

const (
	CollectionProjects    = "projects"
	CollectionSections    = "sections"
	CollectionTasks       = "tasks"
	CollectionTaskIndex   = "taskIndex"
	CollectionThreads     = "threads"
	CollectionAttachments = "attachments"
)

func ProjectPath(projectID string) string {
	return store.Join(CollectionProjects, projectID)
}

func SectionsPath(projectID string) string {
	return store.Join(CollectionProjects, projectID, CollectionSections)
}

func SectionPath(projectID, sectionID string) string {
	return store.Join(SectionsPath(projectID), sectionID)
}

func TasksPath(projectID, sectionID string) string {
	return store.Join(SectionPath(projectID, sectionID), CollectionTasks)
}

func TaskPath(projectID, sectionID, taskID string) string {
	return store.Join(TasksPath(projectID, sectionID), taskID)
}

func TaskIndexPath(taskID string) string {
	return store.Join(CollectionTaskIndex, taskID)
}

func AttachmentPath(projectID, threadID, attachmentID string) string {
	return store.Join(ProjectPath(projectID), CollectionThreads, threadID, CollectionAttachments, attachmentID)
}
