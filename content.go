package community

import (
	"context"
	"log/slog"

	"github.com/teenchurch/community/log"
	"github.com/teenchurch/community/render"
	"github.com/teenchurch/community/trigger"
)

// ContentCreated renders a new content document's markdown description into
// sanitized HTML and writes it back onto the document, so clients never
// render user-authored markup themselves.
func (h *Handlers) ContentCreated(ctx context.Context, ev trigger.Event) trigger.Report {
	var rep trigger.Report

	contentID := ev.Params["contentId"]
	logger := log.LoggerFromContext(ctx).With(slog.String(contentIDLogField, contentID))

	description := ev.After.String("description")
	if contentID == "" || ev.After.String("title") == "" || description == "" {
		logger.Warn("content document incomplete, skipping render")
		rep.Add(stepValidate, trigger.StatusFatal, nil)
		return rep
	}
	rep.Add(stepValidate, trigger.StatusOK, nil)

	html := render.Markdown(description)
	rep.Add(stepRender, trigger.StatusOK, nil)

	if err := h.Store.SetContentHTML(ctx, contentID, html); err != nil {
		logger.Error("error writing rendered content body", slog.String(ErrorMsgLogField, err.Error()))
		rep.Add(stepCommit, trigger.StatusFailed, err)
		return rep
	}
	rep.Add(stepCommit, trigger.StatusOK, nil)
	return rep
}
