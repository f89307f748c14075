package services

import (
	"context"
	"fmt"

	"studycapture/application/ports"
	"studycapture/domain/core/entities"
	appErrors "studycapture/pkg/errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// CaptureRequest is one passage to capture.
type CaptureRequest struct {
	Text      string
	SourceURL string
	PageTitle string
}

// CaptureResult is what a successful capture reports. SyncedToNotion is
// true only when mirroring is on and a page URL came back.
type CaptureResult struct {
	NoteID             entities.NoteID
	Subject            string
	Topic              string
	Keywords           string
	NotionURL          string
	SavedToDB          bool
	SyncedToNotion     bool
	TopicCreated       bool
	ClassificationPath entities.ClassificationPath
	Mirror             MirrorStatus
}

// CapturePipeline runs classify → resolve topic → persist → mirror for each
// passage. Steps up to persistence are fatal on failure; the mirror step
// only ever degrades the result.
type CapturePipeline struct {
	classifier *Classifier
	topics     *TopicRegistry
	notes      ports.NoteRepository
	mirror     *HierarchySync
	syncOn     bool
	metrics    ports.Metrics
	logger     *zap.Logger
}

// NewCapturePipeline wires the pipeline. syncEnabled switches the mirror
// step on; when off, HierarchySync is never called.
func NewCapturePipeline(
	classifier *Classifier,
	topics *TopicRegistry,
	notes ports.NoteRepository,
	mirror *HierarchySync,
	syncEnabled bool,
	metrics ports.Metrics,
	logger *zap.Logger,
) *CapturePipeline {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &CapturePipeline{
		classifier: classifier,
		topics:     topics,
		notes:      notes,
		mirror:     mirror,
		syncOn:     syncEnabled && mirror != nil,
		metrics:    metrics,
		logger:     logger,
	}
}

// SyncEnabled reports whether captures are mirrored.
func (p *CapturePipeline) SyncEnabled() bool {
	return p.syncOn
}

// Capture processes one passage. Any text is accepted, including an empty
// one. The work is not cancelled when ctx is, so a client that disconnects
// mid-request still gets its note saved.
func (p *CapturePipeline) Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error) {
	ctx = context.WithoutCancel(ctx)

	captureID := uuid.NewString()
	log := p.logger.With(zap.String("capture_id", captureID))

	ctx, span := tracer.Start(ctx, "CapturePipeline.Capture")
	defer span.End()
	span.SetAttributes(
		attribute.String("capture_id", captureID),
		attribute.Int("text_length", len(req.Text)),
	)

	fatal := func(err error) (*CaptureResult, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "capture failed")
		log.Error("capture failed", zap.Error(err))
		return nil, err
	}

	// 1. Known topics bias the model towards reuse.
	known, err := p.topics.KnownTopics(ctx)
	if err != nil {
		return fatal(err)
	}
	log.Debug("loaded known topics", zap.Int("count", len(known)))

	// 2. Classification cannot fail; the keyword path absorbs model errors.
	cls := p.classifier.Classify(ctx, req.Text, entities.TopicNames(known))
	log.Info("classified passage",
		zap.String("subject", cls.Subject),
		zap.String("topic", cls.Topic),
		zap.String("path", string(cls.Path)),
		zap.Bool("create_new", cls.CreateNew),
	)

	// 3. Resolve or create the topic.
	topic, created, err := p.topics.ResolveOrCreate(ctx, cls.Topic, cls.Subject)
	if err != nil {
		return fatal(err)
	}

	// 4. Persist.
	title := req.PageTitle
	if title == "" {
		title = fmt.Sprintf("%s - %s", cls.Subject, cls.Topic)
	}
	noteID, err := p.notes.CreateNote(ctx, entities.NewNote{
		Title:        title,
		TopicID:      topic.ID,
		OriginalText: req.Text,
		Keywords:     cls.Keywords,
		SourceURL:    req.SourceURL,
	})
	if err != nil {
		return fatal(appErrors.NewPersistenceError("insert note", err))
	}
	p.metrics.NoteCaptured()
	log = log.With(zap.Int64("note_id", int64(noteID)))
	log.Info("saved note", zap.Int64("topic_id", int64(topic.ID)), zap.Bool("topic_created", created))

	res := &CaptureResult{
		NoteID:             noteID,
		Subject:            cls.Subject,
		Topic:              cls.Topic,
		Keywords:           entities.JoinKeywords(cls.Keywords),
		SavedToDB:          true,
		TopicCreated:       created,
		ClassificationPath: cls.Path,
		Mirror:             MirrorSkipped,
	}

	// 5. Mirror, best effort.
	if p.syncOn {
		m := p.mirrorNote(ctx, log, noteID)
		if m.Err != nil {
			// The note is stored; nothing past this point aborts the capture.
			span.RecordError(m.Err)
			if appErrors.IsFatal(m.Err) {
				log.Error("unexpected mirror error; saved locally", zap.Error(m.Err))
			} else {
				log.Warn("note not mirrored; saved locally", zap.Error(m.Err))
			}
		}
		res.Mirror = m.Status
		res.NotionURL = m.URL
	}
	res.SyncedToNotion = p.syncOn && res.NotionURL != ""
	p.metrics.MirrorOutcome(string(res.Mirror))

	span.SetAttributes(
		attribute.Int64("note_id", int64(noteID)),
		attribute.String("mirror", string(res.Mirror)),
	)
	return res, nil
}

// mirrorNote syncs the stored form of the note and records the page on
// success. Failures are carried in the result.
func (p *CapturePipeline) mirrorNote(ctx context.Context, log *zap.Logger, id entities.NoteID) MirrorResult {
	detail, err := p.notes.GetNote(ctx, id)
	if err != nil {
		return MirrorResult{
			Status: MirrorFailed,
			PageID: FailedPageID,
			Err:    appErrors.NewMirrorSyncError("reload note", err),
		}
	}

	m := p.mirror.Sync(ctx, *detail)
	switch m.Status {
	case MirrorSynced:
		if err := p.notes.SetNoteMirror(ctx, id, m.PageID, m.URL); err != nil {
			log.Warn("could not record mirror page", zap.String("page_id", m.PageID), zap.Error(err))
		}
	case MirrorDisabled:
		log.Info("mirroring enabled but page service is not configured")
	}
	return m
}
