// Package friend keeps the symmetric friends relation consistent: a
// friendship is two mirrored edge documents, created atomically when a
// request is accepted and torn down reciprocally when one side unfriends.
package friend

import (
	"context"
	"errors"
	"log/slog"

	"github.com/teenchurch/community/contract"
	"github.com/teenchurch/community/log"
	"github.com/teenchurch/community/store"
)

const (
	errorMsgLogField     = "errorMsg"
	unfrienderIDLogField = "unfrienderID"
	unfriendedIDLogField = "unfriendedID"
)

// ErrMissingUserData is returned when an accepted request lacks the ids or
// display names needed to build the edge documents.
var ErrMissingUserData = errors.New("friend: missing user ids or names")

type Maintainer struct {
	store store.Store
}

func NewMaintainer(s store.Store) *Maintainer {
	return &Maintainer{store: s}
}

// Accept creates the two mirrored friend edges for an accepted request in
// one atomic batch. When the batch fails no edges exist, so callers must
// not announce the friendship.
func (m *Maintainer) Accept(ctx context.Context, sender, recipient contract.Participant) error {
	if sender.UID == "" || recipient.UID == "" || sender.DisplayName == "" || recipient.DisplayName == "" {
		return ErrMissingUserData
	}
	return m.store.CreateFriendship(ctx, sender, recipient)
}

// EdgeDeleted reacts to the deletion of the unfriender's edge: it deletes
// the mirror edge on the unfriended user's side and marks the originating
// accepted request unfriended, in one batch. A missing originating request
// is tolerated (friendships may predate requests carrying a status) and the
// reciprocal deletion still commits.
func (m *Maintainer) EdgeDeleted(ctx context.Context, unfrienderID, unfriendedID string) error {
	logger := log.LoggerFromContext(ctx)

	requestID, err := m.store.FindAcceptedRequest(ctx, unfrienderID, unfriendedID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		logger.Warn("no accepted friend request found to mark unfriended",
			slog.String(unfrienderIDLogField, unfrienderID),
			slog.String(unfriendedIDLogField, unfriendedID),
		)
		requestID = ""
	case err != nil:
		logger.Error("error querying originating friend request",
			slog.String(unfrienderIDLogField, unfrienderID),
			slog.String(unfriendedIDLogField, unfriendedID),
			slog.String(errorMsgLogField, err.Error()),
		)
		requestID = ""
	}

	return m.store.CommitUnfriend(ctx, unfriendedID, unfrienderID, requestID)
}
