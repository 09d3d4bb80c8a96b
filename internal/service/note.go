package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/notevault/notevault/internal/apperr"
	"github.com/notevault/notevault/internal/metrics"
	"github.com/notevault/notevault/internal/model"
	"github.com/notevault/notevault/internal/repository"
)

// NoteStore is the persistence surface the note service depends on.
// *repository.Repository satisfies it; tests substitute in-memory fakes.
type NoteStore interface {
	CreateNote(ctx context.Context, note *model.Note) error
	GetNoteByID(ctx context.Context, id string) (*model.Note, error)
	GetNoteOwned(ctx context.Context, id, ownerID string) (*model.Note, error)
	GetNoteByContent(ctx context.Context, ownerID, content string) (*model.Note, error)
	UpdateNote(ctx context.Context, id string, update repository.NoteUpdate) (*model.Note, error)
	ReplaceNote(ctx context.Context, id, ownerID, title, content string) (*model.Note, error)
	UpdateAllTitles(ctx context.Context, ownerID, title string) (int64, error)
	DeleteNote(ctx context.Context, id, ownerID string) error
	DeleteAllByOwner(ctx context.Context, ownerID string) (int64, error)
	ListNotes(ctx context.Context, ownerID string, limit, offset int) ([]*model.Note, error)
	CountNotes(ctx context.Context, ownerID string) (int64, error)
	ListNotesWithOwner(ctx context.Context, ownerID string, title *string) ([]*model.NoteWithOwner, error)
}

// UserFinder is the slice of the user store the note service needs for
// requester existence checks.
type UserFinder interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// NoteService handles note business logic. Every operation is scoped to the
// requester; ownership is asserted after existence is confirmed.
type NoteService struct {
	notes   NoteStore
	users   UserFinder
	metrics metrics.Recorder
}

// NewNoteService creates a new NoteService.
func NewNoteService(notes NoteStore, users UserFinder, recorder metrics.Recorder) *NoteService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &NoteService{
		notes:   notes,
		users:   users,
		metrics: recorder,
	}
}

// NoteInput carries a note body for create, update and replace.
type NoteInput struct {
	Title   string
	Content string
}

func validateNoteInput(input NoteInput) error {
	if input.Title == "" || input.Content == "" {
		return apperr.BadRequest("Title and content are required")
	}
	if !model.ValidNoteTitle(input.Title) {
		return apperr.BadRequest(fmt.Sprintf("%s cannot be all uppercase letters!", input.Title))
	}
	return nil
}

// requesterExists resolves the requester or fails NotFound.
func (s *NoteService) requesterExists(ctx context.Context, requesterID string) error {
	if _, err := s.users.GetUserByID(ctx, requesterID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("user not found")
		}
		return fmt.Errorf("get user: %w", err)
	}
	return nil
}

// Create persists a new note owned by the requester.
func (s *NoteService) Create(ctx context.Context, requesterID string, input NoteInput) (*model.Note, error) {
	if err := validateNoteInput(input); err != nil {
		return nil, err
	}
	if err := s.requesterExists(ctx, requesterID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note := &model.Note{
		ID:        ulid.Make().String(),
		Title:     input.Title,
		Content:   input.Content,
		OwnerID:   requesterID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.notes.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	s.metrics.IncNoteCreated()

	return note, nil
}

// Update applies partial semantics: both fields are required, but only the
// ones that differ from the stored values are written.
func (s *NoteService) Update(ctx context.Context, requesterID, noteID string, input NoteInput) (*model.Note, error) {
	if err := validateNoteInput(input); err != nil {
		return nil, err
	}
	if err := s.requesterExists(ctx, requesterID); err != nil {
		return nil, err
	}

	note, err := s.notes.GetNoteByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, apperr.NotFound("Note not found")
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	if err := requireOwner(note.OwnerID, requesterID); err != nil {
		return nil, err
	}

	var update repository.NoteUpdate
	if input.Title != note.Title {
		update.Title = &input.Title
	}
	if input.Content != note.Content {
		update.Content = &input.Content
	}
	if update.Title == nil && update.Content == nil {
		return note, nil
	}

	updated, err := s.notes.UpdateNote(ctx, noteID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, apperr.NotFound("Note not found")
		}
		return nil, fmt.Errorf("update note: %w", err)
	}

	s.metrics.IncNoteUpdated()

	return updated, nil
}

// Replace substitutes the entire note body while preserving the owner.
// The storage-layer id+owner filter re-checks ownership at write time.
func (s *NoteService) Replace(ctx context.Context, requesterID, noteID string, input NoteInput) (*model.Note, error) {
	if err := validateNoteInput(input); err != nil {
		return nil, err
	}
	if err := s.requesterExists(ctx, requesterID); err != nil {
		return nil, err
	}

	note, err := s.notes.GetNoteByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, apperr.NotFound("Note not found")
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	if err := requireOwner(note.OwnerID, requesterID); err != nil {
		return nil, err
	}

	replaced, err := s.notes.ReplaceNote(ctx, noteID, requesterID, input.Title, input.Content)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, apperr.NotFound("Note not found or not yours")
		}
		return nil, fmt.Errorf("replace note: %w", err)
	}

	s.metrics.IncNoteUpdated()

	return replaced, nil
}

// UpdateAllByOwner rewrites the title of every note the requester owns and
// returns the number of notes matched.
func (s *NoteService) UpdateAllByOwner(ctx context.Context, requesterID, title string) (int64, error) {
	if title == "" {
		return 0, apperr.BadRequest("Title  are required")
	}
	if !model.ValidNoteTitle(title) {
		return 0, apperr.BadRequest(fmt.Sprintf("%s cannot be all uppercase letters!", title))
	}

	matched, err := s.notes.UpdateAllTitles(ctx, requesterID, title)
	if err != nil {
		return 0, fmt.Errorf("update notes: %w", err)
	}
	if matched == 0 {
		return 0, apperr.NotFound("no notes found")
	}

	s.metrics.IncNoteUpdated()

	return matched, nil
}

// Delete removes a note only if both id and owner match.
func (s *NoteService) Delete(ctx context.Context, requesterID, noteID string) error {
	if err := s.notes.DeleteNote(ctx, noteID, requesterID); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return apperr.NotFound("no notes found")
		}
		return fmt.Errorf("delete note: %w", err)
	}

	s.metrics.IncNoteDeleted()

	return nil
}

// DeleteAllByOwner removes every note the requester owns and returns the count.
func (s *NoteService) DeleteAllByOwner(ctx context.Context, requesterID string) (int64, error) {
	deleted, err := s.notes.DeleteAllByOwner(ctx, requesterID)
	if err != nil {
		return 0, fmt.Errorf("delete notes: %w", err)
	}
	if deleted == 0 {
		return 0, apperr.NotFound("no notes found")
	}

	s.metrics.IncNoteDeleted()

	return deleted, nil
}

// NotePage is one page of a user's notes plus pagination arithmetic.
type NotePage struct {
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalNotes int64         `json:"totalNotes"`
	TotalPages int64         `json:"totalPages"`
	Notes      []*model.Note `json:"notes"`
}

// ListPaginatedSorted returns the requester's notes newest first. Page and
// limit are clamped to a minimum of 1; a page past the last fails NotFound.
func (s *NoteService) ListPaginatedSorted(ctx context.Context, requesterID string, page, limit int) (*NotePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	offset := (page - 1) * limit

	notes, err := s.notes.ListNotes(ctx, requesterID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if len(notes) == 0 {
		return nil, apperr.NotFound("No notes found")
	}

	total, err := s.notes.CountNotes(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("count notes: %w", err)
	}

	return &NotePage{
		Page:       page,
		Limit:      limit,
		TotalNotes: total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
		Notes:      notes,
	}, nil
}

// GetByID fetches a single note scoped to the requester. The ownership
// guard runs even though the filter already scoped by owner, keeping the
// authorization contract uniform across single-resource reads.
func (s *NoteService) GetByID(ctx context.Context, requesterID, noteID string) (*model.Note, error) {
	note, err := s.notes.GetNoteOwned(ctx, noteID, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, apperr.NotFound("Note not found")
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	if err := requireOwner(note.OwnerID, requesterID); err != nil {
		return nil, err
	}

	return note, nil
}

// GetByContent fetches a single note by exact content match, owner-scoped.
func (s *NoteService) GetByContent(ctx context.Context, requesterID, content string) (*model.Note, error) {
	note, err := s.notes.GetNoteByContent(ctx, requesterID, content)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, apperr.NotFound("Note not found")
		}
		return nil, fmt.Errorf("get note by content: %w", err)
	}

	if err := requireOwner(note.OwnerID, requesterID); err != nil {
		return nil, err
	}

	return note, nil
}

// ListWithOwnerInfo joins the requester's notes to their owner and projects
// the read view; a non-nil title filters by exact match and adds the owner
// name to the projection.
func (s *NoteService) ListWithOwnerInfo(ctx context.Context, requesterID string, title *string) ([]*model.NoteWithOwner, error) {
	views, err := s.notes.ListNotesWithOwner(ctx, requesterID, title)
	if err != nil {
		return nil, fmt.Errorf("join notes: %w", err)
	}
	if len(views) == 0 {
		return nil, apperr.NotFound("No notes found")
	}

	return views, nil
}
