// Package community holds the Cloud Functions of the teen-community app:
// Firestore trigger handlers reacting to chat and friend-graph writes, and a
// pair of HTTP endpoints for device registration and presence cleanup.
package community

import (
	"context"
	"log/slog"

	"github.com/teenchurch/community/friend"
	"github.com/teenchurch/community/log"
	"github.com/teenchurch/community/moderate"
	"github.com/teenchurch/community/push"
	"github.com/teenchurch/community/store"
)

const (
	ErrorMsgLogField = "errorMsg"

	conversationIDLogField = "conversationId"
	messageIDLogField      = "messageId"
	requestIDLogField      = "requestId"
	userIDLogField         = "userID"
	friendIDLogField       = "friendId"
	contentIDLogField      = "contentId"

	defaultSenderName = "Someone"
	chatIcon          = "/chat-icon.png"
	defaultAvatarIcon = "/default-avatar.png"
)

// step names, shared between handlers and their tests
const (
	stepValidate           = "validate"
	stepModerate           = "moderate"
	stepUpdateConversation = "update-conversation"
	stepLoadConversation   = "load-conversation"
	stepCreateFriendship   = "create-friendship"
	stepFetchTokens        = "fetch-tokens"
	stepSend               = "send"
	stepCommit             = "commit"
	stepRender             = "render"
)

// ModerationChecker is the subset of the moderation client the message
// handler needs. A nil checker disables moderation.
type ModerationChecker interface {
	Check(ctx context.Context, text string) (moderate.Verdict, error)
}

// Handlers carries the trigger handlers' collaborators. Each invocation is
// stateless; concurrency control is left entirely to the backing store's
// per-document write semantics.
type Handlers struct {
	Store     store.Store
	Push      *push.Dispatcher
	Moderator ModerationChecker

	friends *friend.Maintainer
}

func NewHandlers(s store.Store, dispatcher *push.Dispatcher, moderator ModerationChecker) *Handlers {
	return &Handlers{
		Store:     s,
		Push:      dispatcher,
		Moderator: moderator,
		friends:   friend.NewMaintainer(s),
	}
}

// collectTargets loads the device tokens of every recipient. A token fetch
// failure for one recipient is logged and skips that recipient only.
func (h *Handlers) collectTargets(ctx context.Context, recipients []string) []push.Target {
	logger := log.LoggerFromContext(ctx)

	var targets []push.Target
	for _, userID := range recipients {
		tokens, err := h.Store.DeviceTokens(ctx, userID)
		if err != nil {
			logger.Error("error fetching device tokens",
				slog.String(userIDLogField, userID),
				slog.String(ErrorMsgLogField, err.Error()),
			)
			continue
		}
		for _, tok := range tokens {
			targets = append(targets, push.Target{UserID: userID, Token: tok.Token})
		}
	}
	return targets
}
