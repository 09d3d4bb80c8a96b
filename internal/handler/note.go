package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/notevault/notevault/internal/apperr"
	"github.com/notevault/notevault/internal/auth"
	"github.com/notevault/notevault/internal/handler/dto"
	"github.com/notevault/notevault/internal/service"
)

// NoteHandler handles HTTP requests for note operations. Every route is
// mounted behind the auth middleware, so the requester is always resolved.
type NoteHandler struct {
	svc         *service.NoteService
	logger      *slog.Logger
	development bool
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(svc *service.NoteService, logger *slog.Logger, development bool) *NoteHandler {
	return &NoteHandler{
		svc:         svc,
		logger:      logger,
		development: development,
	}
}

func (h *NoteHandler) error(w http.ResponseWriter, r *http.Request, err error) {
	renderError(w, r, h.logger, h.development, err)
}

func decodeNoteRequest(r *http.Request) (dto.NoteRequest, error) {
	var req dto.NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, apperr.BadRequest("Invalid request body")
	}
	return req, nil
}

// Create handles POST /api/v1/notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeNoteRequest(r)
	if err != nil {
		h.error(w, r, err)
		return
	}

	note, err := h.svc.Create(r.Context(), auth.UserIDFromContext(r.Context()), service.NoteInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		h.error(w, r, err)
		return
	}

	h.logger.Info("note_created", "note_id", note.ID, "owner_id", note.OwnerID)

	writeSuccess(w, http.StatusCreated, "Note created successfully", note)
}

// Update handles PATCH /api/v1/notes/{noteID}.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, err := decodeNoteRequest(r)
	if err != nil {
		h.error(w, r, err)
		return
	}

	note, err := h.svc.Update(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "noteID"), service.NoteInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		h.error(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Note updated successfully", note)
}

// Replace handles PUT /api/v1/notes/replace/{noteID}.
func (h *NoteHandler) Replace(w http.ResponseWriter, r *http.Request) {
	req, err := decodeNoteRequest(r)
	if err != nil {
		h.error(w, r, err)
		return
	}

	note, err := h.svc.Replace(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "noteID"), service.NoteInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		h.error(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Note replaced successfully", note)
}

// UpdateAll handles PATCH /api/v1/notes/all.
func (h *NoteHandler) UpdateAll(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateAllNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, r, apperr.BadRequest("Invalid request body"))
		return
	}

	matched, err := h.svc.UpdateAllByOwner(r.Context(), auth.UserIDFromContext(r.Context()), req.Title)
	if err != nil {
		h.error(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Notes updated successfully", map[string]int64{"matched": matched})
}

// Delete handles DELETE /api/v1/notes/{noteID}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")

	if err := h.svc.Delete(r.Context(), auth.UserIDFromContext(r.Context()), noteID); err != nil {
		h.error(w, r, err)
		return
	}

	h.logger.Info("note_deleted", "note_id", noteID)

	writeSuccess(w, http.StatusOK, "Note deleted successfully", nil)
}

// DeleteAll handles DELETE /api/v1/notes/all.
func (h *NoteHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.DeleteAllByOwner(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.error(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Notes deleted successfully", map[string]int64{"deleted": deleted})
}

// ListPaginatedSorted handles GET /api/v1/notes/paginate-sort.
func (h *NoteHandler) ListPaginatedSorted(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// Out-of-range values are clamped downstream.
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	result, err := h.svc.ListPaginatedSorted(r.Context(), auth.UserIDFromContext(r.Context()), page, limit)
	if err != nil {
		h.error(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Notes retrieved successfully", result)
}

// GetByID handles GET /api/v1/notes/{noteID}.
func (h *NoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.GetByID(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "noteID"))
	if err != nil {
		h.error(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Note retrieved successfully", note)
}

// GetByContent handles GET /api/v1/notes/by-content.
func (h *NoteHandler) GetByContent(w http.ResponseWriter, r *http.Request) {
	content := r.URL.Query().Get("content")
	if content == "" {
		h.error(w, r, apperr.BadRequest("Content is required"))
		return
	}

	note, err := h.svc.GetByContent(r.Context(), auth.UserIDFromContext(r.Context()), content)
	if err != nil {
		h.error(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Note retrieved successfully", note)
}

// ListWithOwner handles GET /api/v1/notes/with-owner and
// GET /api/v1/notes/with-owner/{title}.
func (h *NoteHandler) ListWithOwner(w http.ResponseWriter, r *http.Request) {
	var title *string
	if t := chi.URLParam(r, "title"); t != "" {
		title = &t
	}

	views, err := h.svc.ListWithOwnerInfo(r.Context(), auth.UserIDFromContext(r.Context()), title)
	if err != nil {
		h.error(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Notes retrieved successfully", views)
}
