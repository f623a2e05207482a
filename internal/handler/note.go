package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/notevault/notevault/internal/auth"
	"github.com/notevault/notevault/internal/handler/dto"
	"github.com/notevault/notevault/internal/service"
)

// NoteHandler handles HTTP requests for note operations. All routes sit
// behind the bearer gate, so the owner is always on the context.
type NoteHandler struct {
	svc    *service.NoteService
	logger *slog.Logger
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(svc *service.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/users/me/notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustUserFromContext(r.Context())

	var req dto.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	note, err := h.svc.Create(r.Context(), owner, service.CreateNoteInput{
		Title:     req.Title,
		Content:   req.Content,
		Category:  req.Category,
		Published: req.Published,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("note_created",
		"note_id", note.ID,
		"user_id", owner.ID,
	)

	writeJSON(w, http.StatusCreated, dto.ToNoteResponse(note))
}

// Get handles GET /api/v1/users/me/notes/{id}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustUserFromContext(r.Context())

	id, ok := noteID(w, r)
	if !ok {
		return
	}

	note, err := h.svc.Get(r.Context(), owner, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToNoteResponse(note))
}

// List handles GET /api/v1/users/me/notes.
// Supports limit, page and search query parameters; search matches note
// titles case-insensitively.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustUserFromContext(r.Context())
	query := r.URL.Query()

	limit := 0
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	page := 0
	if p := query.Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			page = parsed
		}
	}

	notes, err := h.svc.List(r.Context(), owner, limit, page, query.Get("search"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if limit < 1 {
		limit = len(notes)
	}
	if page < 1 {
		page = 1
	}

	writeJSON(w, http.StatusOK, dto.ToNoteListResponse(notes, limit, page))
}

// Update handles PATCH /api/v1/users/me/notes/{id}.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustUserFromContext(r.Context())

	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	note, err := h.svc.Update(r.Context(), owner, id, service.UpdateNoteInput{
		Title:     req.Title,
		Content:   req.Content,
		Category:  req.Category,
		Published: req.Published,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("note_updated",
		"note_id", note.ID,
		"user_id", owner.ID,
	)

	writeJSON(w, http.StatusOK, dto.ToNoteResponse(note))
}

// Delete handles DELETE /api/v1/users/me/notes/{id}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner := auth.MustUserFromContext(r.Context())

	id, ok := noteID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), owner, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("note_deleted",
		"note_id", id,
		"user_id", owner.ID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// noteID parses the {id} path parameter, writing the error response on
// failure.
func noteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "INVALID_NOTE_ID", "Note ID must be a positive integer")
		return 0, false
	}
	return id, true
}

// handleServiceError maps note service errors to HTTP responses.
func (h *NoteHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "TITLE_REQUIRED", "Title is required")
	case errors.Is(err, service.ErrNoteNotFound):
		writeError(w, http.StatusNotFound, "NOTE_NOT_FOUND", "Note not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
