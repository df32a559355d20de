package model

// Section is a board column. Order is unique within a project but need
// not be contiguous.
type Section struct {
	ID        string `json:"-"`
	ProjectID string `json:"projectId"`
	Title     string `json:"title"`
	Order     int    `json:"order"`
	Collapsed bool   `json:"collapsed"`
}
