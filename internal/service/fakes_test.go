package service

import (
	"context"
	"sort"
	"time"

	"github.com/notevault/notevault/internal/model"
	"github.com/notevault/notevault/internal/repository"
)

// fakeStore is an in-memory stand-in for *repository.Repository.
// It mirrors the store's filter semantics, including owner scoping and
// the email uniqueness constraint, and counts writes so tests can assert
// that unchanged fields issue no write.
type fakeStore struct {
	users map[string]*model.User
	notes map[string]*model.Note

	userWrites int
	noteWrites int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]*model.User),
		notes: make(map[string]*model.Note),
	}
}

func copyUser(u *model.User) *model.User {
	c := *u
	return &c
}

func copyNote(n *model.Note) *model.Note {
	c := *n
	return &c
}

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	f.users[user.ID] = copyUser(user)
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeStore) EmailTaken(_ context.Context, email, excludeUserID string) (bool, error) {
	for _, user := range f.users {
		if user.Email == email && user.ID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, id string, update repository.UserUpdate) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if update.Email != nil {
		for _, other := range f.users {
			if other.ID != id && other.Email == *update.Email {
				return nil, repository.ErrEmailExists
			}
		}
		user.Email = *update.Email
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	user.UpdatedAt = time.Now().UTC()
	f.userWrites++
	return copyUser(user), nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeStore) CreateNote(_ context.Context, note *model.Note) error {
	f.notes[note.ID] = copyNote(note)
	return nil
}

func (f *fakeStore) GetNoteByID(_ context.Context, id string) (*model.Note, error) {
	note, ok := f.notes[id]
	if !ok {
		return nil, repository.ErrNoteNotFound
	}
	return copyNote(note), nil
}

func (f *fakeStore) GetNoteOwned(_ context.Context, id, ownerID string) (*model.Note, error) {
	note, ok := f.notes[id]
	if !ok || note.OwnerID != ownerID {
		return nil, repository.ErrNoteNotFound
	}
	return copyNote(note), nil
}

func (f *fakeStore) GetNoteByContent(_ context.Context, ownerID, content string) (*model.Note, error) {
	for _, note := range f.notes {
		if note.OwnerID == ownerID && note.Content == content {
			return copyNote(note), nil
		}
	}
	return nil, repository.ErrNoteNotFound
}

func (f *fakeStore) UpdateNote(_ context.Context, id string, update repository.NoteUpdate) (*model.Note, error) {
	note, ok := f.notes[id]
	if !ok {
		return nil, repository.ErrNoteNotFound
	}
	if update.Title != nil {
		note.Title = *update.Title
	}
	if update.Content != nil {
		note.Content = *update.Content
	}
	note.UpdatedAt = time.Now().UTC()
	f.noteWrites++
	return copyNote(note), nil
}

func (f *fakeStore) ReplaceNote(_ context.Context, id, ownerID, title, content string) (*model.Note, error) {
	note, ok := f.notes[id]
	if !ok || note.OwnerID != ownerID {
		return nil, repository.ErrNoteNotFound
	}
	note.Title = title
	note.Content = content
	note.OwnerID = ownerID
	note.UpdatedAt = time.Now().UTC()
	f.noteWrites++
	return copyNote(note), nil
}

func (f *fakeStore) UpdateAllTitles(_ context.Context, ownerID, title string) (int64, error) {
	var matched int64
	for _, note := range f.notes {
		if note.OwnerID == ownerID {
			note.Title = title
			note.UpdatedAt = time.Now().UTC()
			matched++
		}
	}
	if matched > 0 {
		f.noteWrites++
	}
	return matched, nil
}

func (f *fakeStore) DeleteNote(_ context.Context, id, ownerID string) error {
	note, ok := f.notes[id]
	if !ok || note.OwnerID != ownerID {
		return repository.ErrNoteNotFound
	}
	delete(f.notes, id)
	return nil
}

func (f *fakeStore) DeleteAllByOwner(_ context.Context, ownerID string) (int64, error) {
	var deleted int64
	for id, note := range f.notes {
		if note.OwnerID == ownerID {
			delete(f.notes, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeStore) ownedSorted(ownerID string) []*model.Note {
	var owned []*model.Note
	for _, note := range f.notes {
		if note.OwnerID == ownerID {
			owned = append(owned, copyNote(note))
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return owned
}

func (f *fakeStore) ListNotes(_ context.Context, ownerID string, limit, offset int) ([]*model.Note, error) {
	owned := f.ownedSorted(ownerID)
	if offset >= len(owned) {
		return nil, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], nil
}

func (f *fakeStore) CountNotes(_ context.Context, ownerID string) (int64, error) {
	var count int64
	for _, note := range f.notes {
		if note.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) ListNotesWithOwner(_ context.Context, ownerID string, title *string) ([]*model.NoteWithOwner, error) {
	var views []*model.NoteWithOwner
	for _, note := range f.ownedSorted(ownerID) {
		if title != nil && note.Title != *title {
			continue
		}
		owner, ok := f.users[note.OwnerID]
		if !ok {
			// Dangling owner reference: the join yields no row.
			continue
		}
		view := &model.NoteWithOwner{
			Title:      note.Title,
			OwnerID:    note.OwnerID,
			CreatedAt:  note.CreatedAt,
			OwnerEmail: owner.Email,
		}
		if title != nil {
			view.OwnerName = owner.Name
		}
		views = append(views, view)
	}
	return views, nil
}
