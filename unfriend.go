package community

import (
	"context"
	"log/slog"

	"github.com/teenchurch/community/log"
	"github.com/teenchurch/community/trigger"
)

// FriendDeleted reacts to one side of a friendship being removed: the
// mirror edge is deleted and the originating accepted request (when it can
// be found) is marked unfriended, in one batch. The initiating user's edge
// is already gone by the time this fires, so a commit failure leaves the
// graph asymmetric until the next unfriend attempt.
func (h *Handlers) FriendDeleted(ctx context.Context, ev trigger.Event) trigger.Report {
	var rep trigger.Report

	unfrienderID := ev.Params["userId"]
	unfriendedID := ev.Params["friendId"]
	logger := log.LoggerFromContext(ctx).With(
		slog.String(userIDLogField, unfrienderID),
		slog.String(friendIDLogField, unfriendedID),
	)

	if unfrienderID == "" || unfriendedID == "" {
		logger.Warn("friend deletion event missing path parameters, skipping")
		rep.Add(stepValidate, trigger.StatusFatal, nil)
		return rep
	}
	rep.Add(stepValidate, trigger.StatusOK, nil)

	if err := h.friends.EdgeDeleted(ctx, unfrienderID, unfriendedID); err != nil {
		logger.Error("error committing unfriend batch", slog.String(ErrorMsgLogField, err.Error()))
		rep.Add(stepCommit, trigger.StatusFailed, err)
		return rep
	}
	logger.Info("reciprocal unfriend completed")
	rep.Add(stepCommit, trigger.StatusOK, nil)
	return rep
}
