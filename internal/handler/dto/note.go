package dto

// NoteRequest represents the request body for creating, updating or
// replacing a note. Both fields are always required; domain rules
// (the title case rule) are enforced downstream.
type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateAllNotesRequest represents the request body for retitling every
// note the caller owns.
type UpdateAllNotesRequest struct {
	Title string `json:"title"`
}
