package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/notevault/notevault/internal/metrics"
	"github.com/notevault/notevault/internal/model"
)

func newNoteService(store *fakeStore) *NoteService {
	return NewNoteService(store, store, metrics.NewNoop())
}

func addUser(store *fakeStore, id, name, email string) {
	now := time.Now().UTC()
	store.users[id] = &model.User{
		ID: id, Name: name, Email: email, Password: "hash", Phone: "", Age: 25,
		CreatedAt: now, UpdatedAt: now,
	}
}

func addNote(store *fakeStore, id, ownerID, title, content string, createdAt time.Time) {
	store.notes[id] = &model.Note{
		ID: id, Title: title, Content: content, OwnerID: ownerID,
		CreatedAt: createdAt, UpdatedAt: createdAt,
	}
}

func TestCreate(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	addUser(store, "alice", "Alice", "a@x.com")
	svc := newNoteService(store)

	note, err := svc.Create(context.Background(), "alice", NoteInput{Title: "Hello", Content: "World"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if note.ID == "" || note.OwnerID != "alice" {
		t.Errorf("created note should be owned by the requester, got %+v", note)
	}
	if _, ok := store.notes[note.ID]; !ok {
		t.Error("note was not persisted")
	}
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	addUser(store, "alice", "Alice", "a@x.com")
	svc := newNoteService(store)

	tests := []struct {
		name       string
		input      NoteInput
		wantStatus int
	}{
		{"empty_title", NoteInput{Title: "", Content: "World"}, http.StatusBadRequest},
		{"empty_content", NoteInput{Title: "Hello", Content: ""}, http.StatusBadRequest},
		{"all_uppercase_title", NoteInput{Title: "HELLO", Content: "World"}, http.StatusBadRequest},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "alice", test.input)
			wantStatus(t, err, test.wantStatus)
		})
	}
}

func TestCreate_MissingUser(t *testing.T) {
	t.Parallel()

	svc := newNoteService(newFakeStore())
	_, err := svc.Create(context.Background(), "ghost", NoteInput{Title: "Hello", Content: "World"})
	wantStatus(t, err, http.StatusNotFound)
}

func TestUpdate_OwnershipAfterExistence(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	addUser(store, "alice", "Alice", "a@x.com")
	addUser(store, "bob", "Bob", "b@x.com")
	addNote(store, "n1", "alice", "Hello", "World", time.Now().UTC())
	svc := newNoteService(store)

	input := NoteInput{Title: "Stolen", Content: "Rewritten"}

	// Absent note: NotFound, not Unauthorized.
	_, err := svc.Update(context.Background(), "bob", "missing", input)
	wantStatus(t, err, http.StatusNotFound)

	// Existing note owned by someone else: Unauthorized, note unmodified.
	_, err = svc.Update(context.Background(), "bob", "n1", input)
	wantStatus(t, err, http.StatusUnauthorized)
	if store.notes["n1"].Title != "Hello" || store.notes["n1"].Content != "World" {
		t.Error("a foreign update attempt must leave the note unmodified")
	}
}

func TestUpdate_PartialSemantics(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	addUser(store, "alice", "Alice", "a@x.com")
	addNote(store, "n1", "alice", "Hello", "World", time.Now().UTC())
	svc := newNoteService(store)

	// Identical body: no write at all.
	note, err := svc.Update(context.Background(), "alice", "n1", NoteInput{Title: "Hello", Content: "World"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if store.noteWrites != 0 {
		t.Errorf("identical body should issue no write, got %d", store.noteWrites)
	}

	// Changed content only.
	note, err = svc.Update(context.Background(), "alice", "n1", NoteInput{Title: "Hello", Content: "Updated"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if note.Title != "Hello" || note.Content != "Updated" {
		t.Errorf("unexpected note after update: %+v", note)
	}
}

func TestReplace(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	addUser(store, "alice", "Alice", "a@x.com")
	addUser(store, "bob", "Bob", "b@x.com")
	addNote(store, "n1", "alice", "Hello", "World", time.Now().UTC())
	svc := newNoteService(store)

	replaced, err := svc.Replace(context.Background(), "alice", "n1", NoteInput{Title: "New title", Content: "New content"})
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if replaced.OwnerID != "alice" {
		t.Error("replace must preserve the owner reference")
	}
	if replaced.Title != "New title" || replaced.Content != "New content" {
		t.Errorf("unexpected note after replace: %+v", replaced)
	}

	_, err = svc.Replace(context.Background(), "bob", "n1", NoteInput{Title: "Mine now", Content: "x"})
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestUpdateAllByOwner(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	addUser(store, "alice", "Alice", "a@x.com")
	addUser(store, "bob", "Bob", "b@x.com")
	now := time.Now().UTC()
	addNote(store, "n1", "alice", "One", "c1", now)
	addNote(store, "n2", "alice", "Two", "c2", now.Add(time.Second))
	addNote(store, "n3", "bob", "Three", "c3", now)
	svc := newNoteService(store)

	matched, err := svc.UpdateAllByOwner(context.Background(), "alice", "Renamed")
	if err != nil {
		t.Fatalf("UpdateAllByOwner failed: %v", err)
	}
	if matched != 2 {
		t.Errorf("expected 2 matched notes, got %d", matched)
	}
	if store.notes["n3"].Title != "Three" {
		t.Error("other owners' notes must be untouched")
	}

	_, err = svc.UpdateAllByOwner(context.Background(), "alice", "")
	wantStatus(t, err, http.StatusBadRequest)

	_, err = svc.UpdateAllByOwner(context.Background(), "nobody", "Renamed")
	wantStatus(t, err, http.StatusNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	addUser(store, "alice", "Alice", "a@x.com")
	addNote(store, "n1", "alice", "Hello", "World", time.Now().UTC())
	svc := newNoteService(store)

	// Deleting someone else's note deletes nothing.
	wantStatus(t, svc.Delete(context.Background(), "bob", "n1"), http.StatusNotFound)
	if _, ok := store.notes["n1"]; !ok {
		t.Fatal("foreign delete attempt must not remove the note")
	}

	if err := svc.Delete(context.Background(), "alice", "n1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	wantStatus(t, svc.Delete(context.Background(), "alice", "n1"), http.StatusNotFound)
}

func TestDeleteAllByOwner(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	addUser(store, "alice", "Alice", "a@x.com")
	now := time.Now().UTC()
	addNote(store, "n1", "alice", "One", "c1", now)
	addNote(store, "n2", "alice", "Two", "c2", now)
	svc := newNoteService(store)

	deleted, err := svc.DeleteAllByOwner(context.Background(), "alice")
	if err != nil {
		t.Fatalf("DeleteAllByOwner failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", deleted)
	}

	_, err = svc.DeleteAllByOwner(context.Background(), "alice")
	wantStatus(t, err, http.StatusNotFound)
}

func TestListPaginatedSorted(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	addUser(store, "alice", "Alice", "a@x.com")
	base := time.Now().UTC()
	for i := 0; i < 25; i++ {
		addNote(store, fmt.Sprintf("n%02d", i), "alice",
			fmt.Sprintf("Note %d", i), fmt.Sprintf("content %d", i),
			base.Add(time.Duration(i)*time.Second))
	}
	svc := newNoteService(store)

	page, err := svc.ListPaginatedSorted(context.Background(), "alice", 2, 10)
	if err != nil {
		t.Fatalf("ListPaginatedSorted failed: %v", err)
	}
	if len(page.Notes) != 10 {
		t.Errorf("expected 10 notes, got %d", len(page.Notes))
	}
	if page.TotalNotes != 25 || page.TotalPages != 3 {
		t.Errorf("expected totalNotes=25 totalPages=3, got %d/%d", page.TotalNotes, page.TotalPages)
	}
	// Newest first: page 2 starts at the 11th newest.
	if page.Notes[0].Title != "Note 14" {
		t.Errorf("expected page 2 to start at Note 14, got %s", page.Notes[0].Title)
	}

	// Past the last page.
	_, err = svc.ListPaginatedSorted(context.Background(), "alice", 4, 10)
	wantStatus(t, err, http.StatusNotFound)
}

func TestListPaginatedSorted_ClampsInputs(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	addUser(store, "alice", "Alice", "a@x.com")
	addNote(store, "n1", "alice", "Only", "one", time.Now().UTC())
	svc := newNoteService(store)

	page, err := svc.ListPaginatedSorted(context.Background(), "alice", 0, -5)
	if err != nil {
		t.Fatalf("ListPaginatedSorted failed: %v", err)
	}
	if page.Page != 1 || page.Limit != 1 {
		t.Errorf("page and limit should clamp to 1, got %d/%d", page.Page, page.Limit)
	}
}

func TestGetByID(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	addUser(store, "alice", "Alice", "a@x.com")
	addUser(store, "bob", "Bob", "b@x.com")
	addNote(store, "n1", "alice", "Hello", "World", time.Now().UTC())
	svc := newNoteService(store)

	note, err := svc.GetByID(context.Background(), "alice", "n1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if note.Title != "Hello" {
		t.Errorf("unexpected note: %+v", note)
	}

	// The owner filter scopes the lookup, so a foreign read is NotFound.
	_, err = svc.GetByID(context.Background(), "bob", "n1")
	wantStatus(t, err, http.StatusNotFound)

	_, err = svc.GetByID(context.Background(), "alice", "missing")
	wantStatus(t, err, http.StatusNotFound)
}

func TestGetByContent(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	addUser(store, "alice", "Alice", "a@x.com")
	addNote(store, "n1", "alice", "Hello", "World", time.Now().UTC())
	svc := newNoteService(store)

	note, err := svc.GetByContent(context.Background(), "alice", "World")
	if err != nil {
		t.Fatalf("GetByContent failed: %v", err)
	}
	if note.ID != "n1" {
		t.Errorf("unexpected note: %+v", note)
	}

	_, err = svc.GetByContent(context.Background(), "alice", "missing")
	wantStatus(t, err, http.StatusNotFound)
}

func TestListWithOwnerInfo(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	addUser(store, "alice", "Alice", "a@x.com")
	now := time.Now().UTC()
	addNote(store, "n1", "alice", "Hello", "c1", now)
	addNote(store, "n2", "alice", "Other", "c2", now.Add(time.Second))
	svc := newNoteService(store)

	views, err := svc.ListWithOwnerInfo(context.Background(), "alice", nil)
	if err != nil {
		t.Fatalf("ListWithOwnerInfo failed: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if views[0].OwnerEmail != "a@x.com" {
		t.Errorf("view should project the owner email, got %+v", views[0])
	}
	if views[0].OwnerName != "" {
		t.Error("unfiltered variant should not project the owner name")
	}

	title := "Hello"
	filtered, err := svc.ListWithOwnerInfo(context.Background(), "alice", &title)
	if err != nil {
		t.Fatalf("ListWithOwnerInfo failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].OwnerName != "Alice" {
		t.Errorf("title-filtered variant should project the owner name, got %+v", filtered)
	}

	missing := "Nope"
	_, err = svc.ListWithOwnerInfo(context.Background(), "alice", &missing)
	wantStatus(t, err, http.StatusNotFound)
}

func TestListWithOwnerInfo_DanglingOwner(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	addNote(store, "n1", "gone", "Hello", "c1", time.Now().UTC())
	svc := newNoteService(store)

	// Owner deleted after the note: the join yields no rows.
	_, err := svc.ListWithOwnerInfo(context.Background(), "gone", nil)
	wantStatus(t, err, http.StatusNotFound)
}
