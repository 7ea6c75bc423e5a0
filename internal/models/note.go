package models

// Note is the unit of content under authorship control.
// AuthorID references the user that created the note and never changes.
type Note struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	AuthorID string `json:"author_id"`
}
