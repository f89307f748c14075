package handlers

import (
	"net/http"

	"studycapture/application/services"
	"studycapture/pkg/common"
	appErrors "studycapture/pkg/errors"
	"studycapture/pkg/utils"

	"go.uber.org/zap"
)

// CaptureHandler serves POST /capture.
type CaptureHandler struct {
	pipeline     *services.CapturePipeline
	maxBodyBytes int64
	errors       *appErrors.ErrorHandler
	logger       *zap.Logger
}

func NewCaptureHandler(
	pipeline *services.CapturePipeline,
	maxBodyBytes int64,
	errorHandler *appErrors.ErrorHandler,
	logger *zap.Logger,
) *CaptureHandler {
	return &CaptureHandler{
		pipeline:     pipeline,
		maxBodyBytes: maxBodyBytes,
		errors:       errorHandler,
		logger:       logger,
	}
}

// CaptureRequest is the body sent by the browser extension. Only the
// presence of text is checked; its content, the url and the title are
// stored as sent. The mirror truncates titles it cannot hold.
type CaptureRequest struct {
	Text      *string `json:"text" validate:"required"`
	URL       string  `json:"url,omitempty"`
	PageTitle string  `json:"pageTitle,omitempty"`
}

// CaptureData is the data member of a successful capture response.
// Keywords is the comma-joined form that is stored.
type CaptureData struct {
	NoteID         int64  `json:"note_id"`
	Subject        string `json:"subject"`
	Topic          string `json:"topic"`
	Keywords       string `json:"keywords"`
	NotionURL      string `json:"notion_url"`
	SavedToDB      bool   `json:"saved_to_db"`
	SyncedToNotion bool   `json:"synced_to_notion"`
}

// Capture handles POST /capture
func (h *CaptureHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if err := common.ParseJSONBody(r, &req, h.maxBodyBytes); err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError("Invalid request body: "+err.Error()))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, appErrors.NewValidationError(err.Error()))
		return
	}

	res, err := h.pipeline.Capture(r.Context(), services.CaptureRequest{
		Text:      *req.Text,
		SourceURL: req.URL,
		PageTitle: req.PageTitle,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondEnvelope(w, http.StatusOK, "Note saved successfully!", CaptureData{
		NoteID:         int64(res.NoteID),
		Subject:        res.Subject,
		Topic:          res.Topic,
		Keywords:       res.Keywords,
		NotionURL:      res.NotionURL,
		SavedToDB:      res.SavedToDB,
		SyncedToNotion: res.SyncedToNotion,
	})
}
