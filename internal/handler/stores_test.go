package handler

import (
	"context"
	"sort"
	"time"

	"github.com/notevault/notevault/internal/model"
	"github.com/notevault/notevault/internal/repository"
)

// memStore is an in-memory stand-in for *repository.Repository used by the
// routing tests. It mirrors the store's filter semantics, including owner
// scoping and email uniqueness.
type memStore struct {
	users map[string]*model.User
	notes map[string]*model.Note
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[string]*model.User),
		notes: make(map[string]*model.Note),
	}
}

func (m *memStore) CreateUser(_ context.Context, user *model.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	c := *user
	m.users[user.ID] = &c
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	c := *user
	return &c, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			c := *user
			return &c, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) EmailTaken(_ context.Context, email, excludeUserID string) (bool, error) {
	for _, user := range m.users {
		if user.Email == email && user.ID != excludeUserID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) UpdateUser(_ context.Context, id string, update repository.UserUpdate) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	user.UpdatedAt = time.Now().UTC()
	c := *user
	return &c, nil
}

func (m *memStore) DeleteUser(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memStore) CreateNote(_ context.Context, note *model.Note) error {
	c := *note
	m.notes[note.ID] = &c
	return nil
}

func (m *memStore) GetNoteByID(_ context.Context, id string) (*model.Note, error) {
	note, ok := m.notes[id]
	if !ok {
		return nil, repository.ErrNoteNotFound
	}
	c := *note
	return &c, nil
}

func (m *memStore) GetNoteOwned(_ context.Context, id, ownerID string) (*model.Note, error) {
	note, ok := m.notes[id]
	if !ok || note.OwnerID != ownerID {
		return nil, repository.ErrNoteNotFound
	}
	c := *note
	return &c, nil
}

func (m *memStore) GetNoteByContent(_ context.Context, ownerID, content string) (*model.Note, error) {
	for _, note := range m.notes {
		if note.OwnerID == ownerID && note.Content == content {
			c := *note
			return &c, nil
		}
	}
	return nil, repository.ErrNoteNotFound
}

func (m *memStore) UpdateNote(_ context.Context, id string, update repository.NoteUpdate) (*model.Note, error) {
	note, ok := m.notes[id]
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
	c := *note
	return &c, nil
}

func (m *memStore) ReplaceNote(_ context.Context, id, ownerID, title, content string) (*model.Note, error) {
	note, ok := m.notes[id]
	if !ok || note.OwnerID != ownerID {
		return nil, repository.ErrNoteNotFound
	}
	note.Title = title
	note.Content = content
	note.UpdatedAt = time.Now().UTC()
	c := *note
	return &c, nil
}

func (m *memStore) UpdateAllTitles(_ context.Context, ownerID, title string) (int64, error) {
	var matched int64
	for _, note := range m.notes {
		if note.OwnerID == ownerID {
			note.Title = title
			note.UpdatedAt = time.Now().UTC()
			matched++
		}
	}
	return matched, nil
}

func (m *memStore) DeleteNote(_ context.Context, id, ownerID string) error {
	note, ok := m.notes[id]
	if !ok || note.OwnerID != ownerID {
		return repository.ErrNoteNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *memStore) DeleteAllByOwner(_ context.Context, ownerID string) (int64, error) {
	var deleted int64
	for id, note := range m.notes {
		if note.OwnerID == ownerID {
			delete(m.notes, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memStore) ownedSorted(ownerID string) []*model.Note {
	var owned []*model.Note
	for _, note := range m.notes {
		if note.OwnerID == ownerID {
			c := *note
			owned = append(owned, &c)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return owned
}

func (m *memStore) ListNotes(_ context.Context, ownerID string, limit, offset int) ([]*model.Note, error) {
	owned := m.ownedSorted(ownerID)
	if offset >= len(owned) {
		return nil, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], nil
}

func (m *memStore) CountNotes(_ context.Context, ownerID string) (int64, error) {
	var count int64
	for _, note := range m.notes {
		if note.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (m *memStore) ListNotesWithOwner(_ context.Context, ownerID string, title *string) ([]*model.NoteWithOwner, error) {
	var views []*model.NoteWithOwner
	for _, note := range m.ownedSorted(ownerID) {
		if title != nil && note.Title != *title {
			continue
		}
		owner, ok := m.users[note.OwnerID]
		if !ok {
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
