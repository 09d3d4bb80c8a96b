package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/notevault/notevault/internal/model"
)

// ErrNoteNotFound indicates the note does not exist for the given filter.
var ErrNoteNotFound = errors.New("note not found")

const noteColumns = `id, title, content, owner_id, created_at, updated_at`

func scanNote(row pgx.Row) (*model.Note, error) {
	var note model.Note
	err := row.Scan(
		&note.ID,
		&note.Title,
		&note.Content,
		&note.OwnerID,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return &note, nil
}

// CreateNote inserts a new note.
func (r *Repository) CreateNote(ctx context.Context, note *model.Note) error {
	query := `
		INSERT INTO notes (id, title, content, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		note.ID,
		note.Title,
		note.Content,
		note.OwnerID,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

// GetNoteByID retrieves a note regardless of owner.
func (r *Repository) GetNoteByID(ctx context.Context, id string) (*model.Note, error) {
	note, err := scanNote(r.pool.QueryRow(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get note by ID: %w", err)
	}
	return note, nil
}

// GetNoteOwned retrieves a note scoped to its owner.
func (r *Repository) GetNoteOwned(ctx context.Context, id, ownerID string) (*model.Note, error) {
	note, err := scanNote(r.pool.QueryRow(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1 AND owner_id = $2`, id, ownerID))
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

// GetNoteByContent retrieves the first note with exactly matching content,
// scoped to its owner.
func (r *Repository) GetNoteByContent(ctx context.Context, ownerID, content string) (*model.Note, error) {
	note, err := scanNote(r.pool.QueryRow(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE content = $1 AND owner_id = $2 LIMIT 1`, content, ownerID))
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get note by content: %w", err)
	}
	return note, nil
}

// NoteUpdate describes a partial note update. Nil fields are left untouched.
type NoteUpdate struct {
	Title   *string
	Content *string
}

// UpdateNote applies a partial update by ID and returns the updated row.
func (r *Repository) UpdateNote(ctx context.Context, id string, update NoteUpdate) (*model.Note, error) {
	query := `
		UPDATE notes
		SET title      = COALESCE($2, title),
		    content    = COALESCE($3, content),
		    updated_at = $4
		WHERE id = $1
		RETURNING ` + noteColumns

	note, err := scanNote(r.pool.QueryRow(ctx, query, id, update.Title, update.Content, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return note, nil
}

// ReplaceNote substitutes the whole note body in one statement, conditional
// on both id and owner. The owner filter double-checks ownership at the
// storage layer, guarding against a race between the guard and the write.
func (r *Repository) ReplaceNote(ctx context.Context, id, ownerID, title, content string) (*model.Note, error) {
	query := `
		UPDATE notes
		SET title      = $3,
		    content    = $4,
		    owner_id   = $2,
		    updated_at = $5
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + noteColumns

	note, err := scanNote(r.pool.QueryRow(ctx, query, id, ownerID, title, content, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to replace note: %w", err)
	}
	return note, nil
}

// UpdateAllTitles rewrites the title of every note owned by ownerID.
// Returns the number of matched notes.
func (r *Repository) UpdateAllTitles(ctx context.Context, ownerID, title string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notes SET title = $2, updated_at = $3 WHERE owner_id = $1`,
		ownerID, title, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to update notes: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteNote deletes the note only if both id and owner match.
func (r *Repository) DeleteNote(ctx context.Context, id, ownerID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM notes WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// DeleteAllByOwner deletes every note owned by ownerID and returns the count.
func (r *Repository) DeleteAllByOwner(ctx context.Context, ownerID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notes: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListNotes returns a page of the owner's notes, newest first.
func (r *Repository) ListNotes(ctx context.Context, ownerID string, limit, offset int) ([]*model.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*model.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notes: %w", err)
	}

	return notes, nil
}

// CountNotes returns the total number of notes owned by ownerID.
func (r *Repository) CountNotes(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notes WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return count, nil
}

// ListNotesWithOwner joins the owner's notes to the users table and projects
// the read view. A nil title lists all notes; a non-nil title filters by
// exact match and additionally projects the owner name. Dangling owner
// references simply produce no rows.
func (r *Repository) ListNotesWithOwner(ctx context.Context, ownerID string, title *string) ([]*model.NoteWithOwner, error) {
	query := `
		SELECT n.title, n.owner_id, n.created_at, u.email, u.name
		FROM notes n
		JOIN users u ON u.id = n.owner_id
		WHERE n.owner_id = $1 AND ($2::text IS NULL OR n.title = $2)
		ORDER BY n.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID, title)
	if err != nil {
		return nil, fmt.Errorf("failed to join notes with owner: %w", err)
	}
	defer rows.Close()

	withName := title != nil

	var views []*model.NoteWithOwner
	for rows.Next() {
		var view model.NoteWithOwner
		var ownerName string
		if err := rows.Scan(&view.Title, &view.OwnerID, &view.CreatedAt, &view.OwnerEmail, &ownerName); err != nil {
			return nil, fmt.Errorf("failed to scan note view: %w", err)
		}
		if withName {
			view.OwnerName = ownerName
		}
		views = append(views, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read note views: %w", err)
	}

	return views, nil
}
