package services

import (
	"context"

	"studycapture/application/ports"
	"studycapture/domain/core/entities"
	appErrors "studycapture/pkg/errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// maxLeafTitle is the longest title the page service accepts.
const maxLeafTitle = 2000

// MirrorStatus is the outcome of one sync attempt.
type MirrorStatus string

const (
	MirrorSynced   MirrorStatus = "synced"
	MirrorDisabled MirrorStatus = "disabled"
	MirrorFailed   MirrorStatus = "failed"
	// MirrorSkipped means mirroring is switched off and Sync was not called.
	MirrorSkipped MirrorStatus = "skipped"
)

// Sentinel page ids reported when no page was created.
const (
	DisabledPageID = "notion-disabled"
	FailedPageID   = "notion-error"
)

// MirrorResult describes what Sync did. URL is empty unless Status is
// MirrorSynced; Err is set only when Status is MirrorFailed.
type MirrorResult struct {
	Status MirrorStatus
	PageID string
	URL    string
	Err    error
}

// HierarchySync mirrors notes into a Database → Subject → Topic → Note page
// tree. Subject and topic pages are found by title before being created;
// the note page is always new, so syncing the same note twice duplicates it.
type HierarchySync struct {
	pages  ports.PageService
	rootID string
	logger *zap.Logger
}

// NewHierarchySync returns a sync rooted at rootID. With a nil page service
// or an empty root every Sync reports MirrorDisabled without any call.
func NewHierarchySync(pages ports.PageService, rootID string, logger *zap.Logger) *HierarchySync {
	return &HierarchySync{pages: pages, rootID: rootID, logger: logger}
}

// Enabled reports whether Sync will contact the page service.
func (h *HierarchySync) Enabled() bool {
	return h.pages != nil && h.rootID != ""
}

// Sync ensures the subject and topic pages exist and creates the note page
// beneath them. Failures are returned in the result, never as a panic or a
// separate error.
func (h *HierarchySync) Sync(ctx context.Context, note entities.NoteDetail) MirrorResult {
	if !h.Enabled() {
		return MirrorResult{Status: MirrorDisabled, PageID: DisabledPageID}
	}

	ctx, span := tracer.Start(ctx, "HierarchySync.Sync")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("note_id", int64(note.ID)),
		attribute.String("subject", note.Subject),
		attribute.String("topic", note.Topic),
	)

	fail := func(step string, err error) MirrorResult {
		span.RecordError(err)
		span.SetStatus(codes.Error, step)
		return MirrorResult{
			Status: MirrorFailed,
			PageID: FailedPageID,
			Err:    appErrors.NewMirrorSyncError(step, err),
		}
	}

	subjectID, err := h.FindOrCreatePage(ctx, h.rootID, note.Subject)
	if err != nil {
		return fail("subject page", err)
	}

	topicID, err := h.FindOrCreatePage(ctx, subjectID, note.Topic)
	if err != nil {
		return fail("topic page", err)
	}

	leaf, err := h.pages.CreateLeafPage(ctx, topicID, ports.LeafPage{
		Title:     truncate(note.Title, maxLeafTitle),
		Lines:     note.BodyLines(),
		SourceURL: note.SourceURL,
		Keywords:  note.KeywordList(),
	})
	if err != nil {
		return fail("note page", err)
	}

	h.logger.Info("mirrored note",
		zap.Int64("note_id", int64(note.ID)),
		zap.String("subject", note.Subject),
		zap.String("topic", note.Topic),
		zap.String("page_id", leaf.ID),
	)
	return MirrorResult{Status: MirrorSynced, PageID: leaf.ID, URL: leaf.URL}
}

// FindOrCreatePage returns the id of the child of parentID titled title,
// creating the page when search finds none.
func (h *HierarchySync) FindOrCreatePage(ctx context.Context, parentID, title string) (string, error) {
	ctx, span := tracer.Start(ctx, "HierarchySync.FindOrCreatePage")
	defer span.End()
	span.SetAttributes(attribute.String("title", title))

	candidates, err := h.pages.SearchPages(ctx, title)
	if err != nil {
		return "", err
	}
	for _, c := range candidates {
		if matchesTitle(c, parentID, title) {
			span.SetAttributes(attribute.Bool("found", true))
			return c.ID, nil
		}
	}

	created, err := h.pages.CreatePage(ctx, parentID, title)
	if err != nil {
		return "", err
	}
	h.logger.Debug("created category page", zap.String("title", title), zap.String("page_id", created.ID))
	return created.ID, nil
}

// matchesTitle decides whether a search hit is the category page for title
// under parentID. The page service has no upsert, so this exact plain-text
// comparison is the only identity a category page has: renaming a page in
// the workspace, or two pages sharing a title under one parent, breaks it.
// Search is eventually consistent, so a page created moments ago may not be
// found and a duplicate can appear.
func matchesTitle(page ports.PageRef, parentID, title string) bool {
	return page.Title == title && ports.SamePageID(page.ParentID, parentID)
}
