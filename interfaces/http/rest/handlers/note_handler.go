package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"studycapture/application/ports"
	"studycapture/domain/core/entities"
	"studycapture/pkg/common"
	appErrors "studycapture/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultNoteLimit = 50

// NoteHandler serves the read-only topic and note endpoints.
type NoteHandler struct {
	topics ports.TopicRepository
	notes  ports.NoteRepository
	errors *appErrors.ErrorHandler
	logger *zap.Logger
}

func NewNoteHandler(
	topics ports.TopicRepository,
	notes ports.NoteRepository,
	errorHandler *appErrors.ErrorHandler,
	logger *zap.Logger,
) *NoteHandler {
	return &NoteHandler{
		topics: topics,
		notes:  notes,
		errors: errorHandler,
		logger: logger,
	}
}

// TopicsResponse is the body of GET /topics.
type TopicsResponse struct {
	Topics []entities.Topic `json:"topics"`
}

// NotesResponse is the body of GET /notes.
type NotesResponse struct {
	Notes  []entities.NoteSummary `json:"notes"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

// ListTopics handles GET /topics
func (h *NoteHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.topics.ListTopics(r.Context())
	if err != nil {
		h.errors.Handle(w, r, appErrors.NewPersistenceError("list topics", err))
		return
	}
	if topics == nil {
		topics = []entities.Topic{}
	}
	common.RespondJSON(w, http.StatusOK, TopicsResponse{Topics: topics})
}

// ListNotes handles GET /notes?limit=&offset=
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	limit, err := common.QueryInt(r, "limit", defaultNoteLimit)
	if err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError(err.Error()))
		return
	}
	offset, err := common.QueryInt(r, "offset", 0)
	if err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError(err.Error()))
		return
	}

	notes, err := h.notes.ListNotes(r.Context(), limit, offset)
	if err != nil {
		h.errors.Handle(w, r, appErrors.NewPersistenceError("list notes", err))
		return
	}
	if notes == nil {
		notes = []entities.NoteSummary{}
	}
	common.RespondJSON(w, http.StatusOK, NotesResponse{Notes: notes, Limit: limit, Offset: offset})
}

// GetNote handles GET /notes/{noteID}
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "noteID"), 10, 64)
	if err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError("note id must be an integer"))
		return
	}

	note, err := h.notes.GetNote(r.Context(), entities.NoteID(id))
	if errors.Is(err, ports.ErrNotFound) {
		h.errors.Handle(w, r, appErrors.NewNotFoundError("Note"))
		return
	}
	if err != nil {
		h.errors.Handle(w, r, appErrors.NewPersistenceError("get note", err))
		return
	}
	common.RespondJSON(w, http.StatusOK, note)
}
