package community

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teenchurch/community/contract"
	"github.com/teenchurch/community/log"
	"github.com/teenchurch/community/push"
	"github.com/teenchurch/community/trigger"
)

// MessageCreated reacts to a new message: it refreshes the conversation's
// last-message snapshot and notifies every participant except the sender.
// The conversation update is best-effort; only validation and a missing
// conversation abort the handler.
func (h *Handlers) MessageCreated(ctx context.Context, ev trigger.Event) trigger.Report {
	var rep trigger.Report

	conversationID := ev.Params["conversationId"]
	messageID := ev.Params["messageId"]
	logger := log.LoggerFromContext(ctx).With(
		slog.String(conversationIDLogField, conversationID),
		slog.String(messageIDLogField, messageID),
	)

	text := ev.After.String("text")
	senderID := ev.After.String("userId")
	createdAt, hasCreatedAt := ev.After.Time("createdAt")
	if conversationID == "" || text == "" || senderID == "" || !hasCreatedAt {
		logger.Warn("message data incomplete or invalid, skipping")
		rep.Add(stepValidate, trigger.StatusFatal, nil)
		return rep
	}
	rep.Add(stepValidate, trigger.StatusOK, nil)

	h.moderateMessage(ctx, &rep, conversationID, messageID, text)

	lastMessage := contract.LastMessage{
		Text:      text,
		SenderID:  senderID,
		CreatedAt: createdAt,
	}
	if err := h.Store.SetLastMessage(ctx, conversationID, lastMessage); err != nil {
		// notification still goes out when the denormalized update fails
		logger.Error("error updating conversation last message", slog.String(ErrorMsgLogField, err.Error()))
		rep.Add(stepUpdateConversation, trigger.StatusFailed, err)
	} else {
		rep.Add(stepUpdateConversation, trigger.StatusOK, nil)
	}

	conv, err := h.Store.Conversation(ctx, conversationID)
	if err != nil {
		logger.Error("error loading conversation", slog.String(ErrorMsgLogField, err.Error()))
		rep.Add(stepLoadConversation, trigger.StatusFatal, err)
		return rep
	}
	rep.Add(stepLoadConversation, trigger.StatusOK, nil)

	var recipients []string
	for _, p := range conv.Participants {
		if p != senderID {
			recipients = append(recipients, p)
		}
	}
	if len(recipients) == 0 {
		logger.Info("no recipients for notification")
		rep.Add(stepSend, trigger.StatusSkipped, nil)
		return rep
	}

	targets := h.collectTargets(ctx, recipients)
	rep.Add(stepFetchTokens, trigger.StatusOK, nil)
	if len(targets) == 0 {
		logger.Info("no device tokens registered for any recipient")
		rep.Add(stepSend, trigger.StatusSkipped, nil)
		return rep
	}

	senderName := ev.After.String("displayName")
	if senderName == "" {
		senderName = defaultSenderName
	}
	notification := push.Notification{
		Title: fmt.Sprintf("New message from %s", senderName),
		Body:  push.TruncateBody(text),
		Icon:  chatIcon,
	}
	data := map[string]string{
		"url":            "/chat?conversationId=" + conversationID,
		"conversationId": conversationID,
		"senderId":       senderID,
	}

	succeeded, failed, err := h.Push.Send(ctx, targets, notification, data)
	if err != nil {
		logger.Error("error sending multicast", slog.String(ErrorMsgLogField, err.Error()))
		rep.Add(stepSend, trigger.StatusFailed, err)
		return rep
	}
	logger.Info("message notification multicast completed",
		slog.Int("successCount", succeeded),
		slog.Int("failureCount", failed),
	)
	rep.Add(stepSend, trigger.StatusOK, nil)
	return rep
}

// moderateMessage flags the message document when moderation trips. Any
// failure here is non-fatal and never blocks delivery.
func (h *Handlers) moderateMessage(ctx context.Context, rep *trigger.Report, conversationID, messageID, text string) {
	logger := log.LoggerFromContext(ctx)

	if h.Moderator == nil {
		rep.Add(stepModerate, trigger.StatusSkipped, nil)
		return
	}
	verdict, err := h.Moderator.Check(ctx, text)
	if err != nil {
		logger.Error("moderation check failed", slog.String(ErrorMsgLogField, err.Error()))
		rep.Add(stepModerate, trigger.StatusFailed, err)
		return
	}
	if !verdict.Flagged {
		rep.Add(stepModerate, trigger.StatusOK, nil)
		return
	}
	logger.Warn("message flagged by moderation",
		slog.String(conversationIDLogField, conversationID),
		slog.String(messageIDLogField, messageID),
		slog.Any("categories", verdict.Categories),
	)
	if err := h.Store.FlagMessage(ctx, conversationID, messageID, verdict.Categories); err != nil {
		logger.Error("error flagging message", slog.String(ErrorMsgLogField, err.Error()))
		rep.Add(stepModerate, trigger.StatusFailed, err)
		return
	}
	rep.Add(stepModerate, trigger.StatusOK, nil)
}
