// Package store abstracts every read and write the trigger handlers perform
// against the backing document store, so handlers can be tested against
// doubles instead of a live project.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/teenchurch/community/contract"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("store: not found")

type Store interface {
	// Conversation loads a conversation document.
	Conversation(ctx context.Context, id string) (*contract.Conversation, error)

	// SetLastMessage writes the denormalized last-message snapshot and the
	// conversation's updatedAt.
	SetLastMessage(ctx context.Context, conversationID string, lm contract.LastMessage) error

	// FlagMessage marks a message as flagged by moderation.
	FlagMessage(ctx context.Context, conversationID, messageID string, categories []string) error

	// DeviceTokens lists the registered push tokens of a user.
	DeviceTokens(ctx context.Context, userID string) ([]contract.DeviceToken, error)

	// SaveDeviceToken registers a push token under a user.
	SaveDeviceToken(ctx context.Context, userID, id string, tok contract.DeviceToken) error

	// DeleteDeviceToken removes every token record of the user holding the
	// given token string.
	DeleteDeviceToken(ctx context.Context, userID, token string) error

	// CreateFriendship writes the two mirrored friend edges in one atomic
	// batch. Either both edges exist afterwards or neither does.
	CreateFriendship(ctx context.Context, a, b contract.Participant) error

	// FindAcceptedRequest looks for the accepted friend request between two
	// users, checking both sender/recipient orderings, and returns its id.
	// Returns ErrNotFound when no such request exists.
	FindAcceptedRequest(ctx context.Context, userA, userB string) (string, error)

	// CommitUnfriend deletes the unfriended user's mirror edge and, when
	// requestID is non-empty, marks that request unfriended, atomically.
	CommitUnfriend(ctx context.Context, unfriendedID, unfrienderID, requestID string) error

	// SetContentHTML writes the rendered body of a content document.
	SetContentHTML(ctx context.Context, contentID, html string) error

	// StalePresence returns the ids of presence documents last refreshed
	// before cutoff.
	StalePresence(ctx context.Context, cutoff time.Time) ([]string, error)

	// DeletePresence removes presence documents by id.
	DeletePresence(ctx context.Context, userIDs []string) error
}
