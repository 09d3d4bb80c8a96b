package model

import (
	"strings"
	"time"
)

// Note is a user-owned text note.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteWithOwner is the read view produced by joining a note to its owner.
// OwnerName is populated only by the title-filtered variant.
type NoteWithOwner struct {
	Title      string    `json:"title"`
	OwnerID    string    `json:"owner_id"`
	CreatedAt  time.Time `json:"created_at"`
	OwnerEmail string    `json:"owner_email"`
	OwnerName  string    `json:"owner_name,omitempty"`
}

// ValidNoteTitle reports whether a title passes the schema rule:
// non-empty and not identical to its upper-case form.
func ValidNoteTitle(title string) bool {
	return title != "" && title != strings.ToUpper(title)
}
