package community

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teenchurch/community/contract"
	"github.com/teenchurch/community/friend"
	"github.com/teenchurch/community/log"
	"github.com/teenchurch/community/push"
	"github.com/teenchurch/community/trigger"
)

// FriendRequestCreated notifies the recipient of a new pending request.
func (h *Handlers) FriendRequestCreated(ctx context.Context, ev trigger.Event) trigger.Report {
	var rep trigger.Report

	requestID := ev.Params["requestId"]
	logger := log.LoggerFromContext(ctx).With(slog.String(requestIDLogField, requestID))

	recipientID := ev.After.String("recipientId")
	senderID := ev.After.String("senderId")
	senderName := ev.After.String("senderName")
	if ev.After.String("status") != contract.RequestStatusPending || recipientID == "" || senderName == "" {
		logger.Warn("friend request data incomplete or status not pending, skipping notification")
		rep.Add(stepValidate, trigger.StatusSkipped, nil)
		return rep
	}
	rep.Add(stepValidate, trigger.StatusOK, nil)

	targets := h.collectTargets(ctx, []string{recipientID})
	rep.Add(stepFetchTokens, trigger.StatusOK, nil)
	if len(targets) == 0 {
		logger.Info("no device tokens for recipient", slog.String(userIDLogField, recipientID))
		rep.Add(stepSend, trigger.StatusSkipped, nil)
		return rep
	}

	icon := ev.After.String("senderPhotoURL")
	if icon == "" {
		icon = defaultAvatarIcon
	}
	notification := push.Notification{
		Title: "New Friend Request",
		Body:  fmt.Sprintf("%s sent you a friend request.", senderName),
		Icon:  icon,
	}
	data := map[string]string{
		"url":       "/friends",
		"type":      "friend_request",
		"senderId":  senderID,
		"requestId": requestID,
	}

	succeeded, failed, err := h.Push.Send(ctx, targets, notification, data)
	if err != nil {
		logger.Error("error sending friend request notification", slog.String(ErrorMsgLogField, err.Error()))
		rep.Add(stepSend, trigger.StatusFailed, err)
		return rep
	}
	logger.Info("friend request notification completed",
		slog.Int("successCount", succeeded),
		slog.Int("failureCount", failed),
	)
	rep.Add(stepSend, trigger.StatusOK, nil)
	return rep
}

// FriendRequestUpdated creates the friendship when a request transitions
// exactly pending→accepted, then best-effort notifies the original sender.
// Edge creation failing blocks the notification; the reverse never holds.
func (h *Handlers) FriendRequestUpdated(ctx context.Context, ev trigger.Event) trigger.Report {
	var rep trigger.Report

	requestID := ev.Params["requestId"]
	logger := log.LoggerFromContext(ctx).With(slog.String(requestIDLogField, requestID))

	if ev.Before.String("status") != contract.RequestStatusPending ||
		ev.After.String("status") != contract.RequestStatusAccepted {
		rep.Add(stepValidate, trigger.StatusSkipped, nil)
		return rep
	}
	rep.Add(stepValidate, trigger.StatusOK, nil)

	sender := contract.Participant{
		UID:         ev.After.String("senderId"),
		DisplayName: ev.After.String("senderName"),
		PhotoURL:    ev.After.String("senderPhotoURL"),
	}
	recipient := contract.Participant{
		UID:         ev.After.String("recipientId"),
		DisplayName: ev.After.String("recipientName"),
		PhotoURL:    ev.After.String("recipientPhotoURL"),
	}

	if err := h.friends.Accept(ctx, sender, recipient); err != nil {
		if errors.Is(err, friend.ErrMissingUserData) {
			logger.Error("friend request missing user ids or names, friendship not created")
		} else {
			logger.Error("error creating friendship documents", slog.String(ErrorMsgLogField, err.Error()))
		}
		rep.Add(stepCreateFriendship, trigger.StatusFatal, err)
		return rep
	}
	rep.Add(stepCreateFriendship, trigger.StatusOK, nil)

	targets := h.collectTargets(ctx, []string{sender.UID})
	rep.Add(stepFetchTokens, trigger.StatusOK, nil)
	if len(targets) == 0 {
		logger.Info("no device tokens for request sender", slog.String(userIDLogField, sender.UID))
		rep.Add(stepSend, trigger.StatusSkipped, nil)
		return rep
	}

	icon := recipient.PhotoURL
	if icon == "" {
		icon = defaultAvatarIcon
	}
	notification := push.Notification{
		Title: "Friend Request Accepted",
		Body:  fmt.Sprintf("%s accepted your friend request!", recipient.DisplayName),
		Icon:  icon,
	}
	data := map[string]string{
		"url":       "/profile/" + recipient.UID,
		"type":      "friend_request_accepted",
		"friendId":  recipient.UID,
		"requestId": requestID,
	}

	succeeded, failed, err := h.Push.Send(ctx, targets, notification, data)
	if err != nil {
		logger.Error("error sending acceptance notification", slog.String(ErrorMsgLogField, err.Error()))
		rep.Add(stepSend, trigger.StatusFailed, err)
		return rep
	}
	logger.Info("acceptance notification completed",
		slog.Int("successCount", succeeded),
		slog.Int("failureCount", failed),
	)
	rep.Add(stepSend, trigger.StatusOK, nil)
	return rep
}
