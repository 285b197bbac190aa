// Package client is the Go counterpart of the web app's Firestore data
// hooks: channel-based live subscriptions backed by snapshot listeners,
// plus the direct writes the app performs itself. Writes that have a
// server-side trigger behind them (notifications, mirrored friend edges,
// rendered content) only perform the triggering write here.
package client

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/teenchurch/community/contract"
)

const (
	conversationCollection  = "conversations"
	messageCollection       = "messages"
	friendRequestCollection = "friendRequests"
	userCollection          = "users"
	friendCollection        = "friends"
	tokenCollection         = "fcmTokens"
	presenceCollection      = "presence"
	contentCollection       = "content"
	eventCollection         = "events"

	searchLimit = 10

	// Upper bound for displayName prefix queries, one of the highest
	// codepoints Firestore will order after any real name.
	searchRangeEnd = "\uf8ff"
)

// ErrRequestExists is returned by SendFriendRequest when a pending request
// already links the two users, in either direction.
var ErrRequestExists = errors.New("client: pending friend request already exists")

// Client performs reads and writes as one signed-in user.
type Client struct {
	fs   *firestore.Client
	self contract.Participant
}

func New(fs *firestore.Client, self contract.Participant) *Client {
	return &Client{fs: fs, self: self}
}

// SendMessage appends a text message to the conversation. The message-created
// trigger updates the conversation's lastMessage and notifies the recipient.
func (c *Client) SendMessage(ctx context.Context, conversationID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("client: empty message text")
	}
	_, _, err := c.messages(conversationID).Add(ctx, map[string]any{
		"text":        text,
		"userId":      c.self.UID,
		"displayName": c.self.DisplayName,
		"createdAt":   firestore.ServerTimestamp,
		"type":        contract.MessageTypeText,
	})
	return err
}

// SendReaction stores an emoji reaction as a message of type reaction
// pointing at the message it reacts to.
func (c *Client) SendReaction(ctx context.Context, conversationID, messageID, emoji string) error {
	_, _, err := c.messages(conversationID).Add(ctx, map[string]any{
		"text":        emoji,
		"userId":      c.self.UID,
		"displayName": c.self.DisplayName,
		"createdAt":   firestore.ServerTimestamp,
		"type":        contract.MessageTypeReaction,
		"replyTo":     messageID,
	})
	return err
}

// MarkRead stamps a read receipt on every listed message that was written by
// another user and not yet read by this one, in a single batch. Returns the
// number of receipts written.
func (c *Client) MarkRead(ctx context.Context, conversationID string, msgs []Message) (int, error) {
	batch := c.fs.Batch()
	updates := 0
	for _, m := range msgs {
		if !needsReceipt(m, c.self.UID) {
			continue
		}
		batch.Update(c.messages(conversationID).Doc(m.ID), []firestore.Update{
			{FieldPath: firestore.FieldPath{"readBy", c.self.UID}, Value: firestore.ServerTimestamp},
		})
		updates++
	}
	if updates == 0 {
		return 0, nil
	}
	if _, err := batch.Commit(ctx); err != nil {
		return 0, err
	}
	return updates, nil
}

// GetOrCreateConversation returns the deterministic conversation id for this
// user and other, creating the conversation document when it does not exist.
func (c *Client) GetOrCreateConversation(ctx context.Context, other contract.Participant) (string, error) {
	id := contract.ConversationID(c.self.UID, other.UID)
	ref := c.fs.Collection(conversationCollection).Doc(id)

	_, err := ref.Get(ctx)
	if err == nil {
		return id, nil
	}
	if status.Code(err) != codes.NotFound {
		return "", err
	}

	participants := []string{c.self.UID, other.UID}
	if participants[0] > participants[1] {
		participants[0], participants[1] = participants[1], participants[0]
	}
	_, err = ref.Set(ctx, map[string]any{
		"participants":       participants,
		"participantDetails": []contract.Participant{c.self, other},
		"lastMessage":        nil,
		"updatedAt":          firestore.ServerTimestamp,
		"typingUsers":        []contract.Participant{},
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// SetTyping adds or removes this user from the conversation's typing list.
func (c *Client) SetTyping(ctx context.Context, conversationID string, typing bool) error {
	var value any = firestore.ArrayRemove(c.self)
	if typing {
		value = firestore.ArrayUnion(c.self)
	}
	_, err := c.fs.Collection(conversationCollection).Doc(conversationID).Update(ctx, []firestore.Update{
		{Path: "typingUsers", Value: value},
	})
	return err
}

// SendFriendRequest creates a pending friend request to recipient and returns
// its id. A pending request already linking the two users, in either
// direction, yields ErrRequestExists.
func (c *Client) SendFriendRequest(ctx context.Context, recipient contract.Participant) (string, error) {
	exists, err := c.pendingRequestExists(ctx, c.self.UID, recipient.UID)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrRequestExists
	}

	ref, _, err := c.fs.Collection(friendRequestCollection).Add(ctx, map[string]any{
		"senderId":          c.self.UID,
		"senderName":        c.self.DisplayName,
		"senderPhotoURL":    c.self.PhotoURL,
		"recipientId":       recipient.UID,
		"recipientName":     recipient.DisplayName,
		"recipientPhotoURL": recipient.PhotoURL,
		"status":            contract.RequestStatusPending,
		"createdAt":         firestore.ServerTimestamp,
		"updatedAt":         firestore.ServerTimestamp,
	})
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

// RespondToFriendRequest marks the request accepted or declined. On accept,
// the request-updated trigger creates the friendship edges and notifies the
// sender.
func (c *Client) RespondToFriendRequest(ctx context.Context, requestID string, accept bool) error {
	newStatus := contract.RequestStatusDeclined
	if accept {
		newStatus = contract.RequestStatusAccepted
	}
	_, err := c.fs.Collection(friendRequestCollection).Doc(requestID).Update(ctx, []firestore.Update{
		{Path: "status", Value: newStatus},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	return err
}

// Unfriend deletes only this user's own edge. The friend-deleted trigger
// removes the mirror edge and retires the originating request.
func (c *Client) Unfriend(ctx context.Context, friendID string) error {
	_, err := c.fs.Collection(userCollection).Doc(c.self.UID).
		Collection(friendCollection).Doc(friendID).Delete(ctx)
	return err
}

// SearchUsers runs a case-sensitive displayName prefix query, excluding the
// searching user from the results.
func (c *Client) SearchUsers(ctx context.Context, prefix string) ([]contract.UserProfile, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}

	docs, err := c.fs.Collection(userCollection).
		Where("displayName", ">=", prefix).
		Where("displayName", "<=", prefix+searchRangeEnd).
		Limit(searchLimit).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	var users []contract.UserProfile
	for _, doc := range docs {
		var u contract.UserProfile
		if err := doc.DataTo(&u); err != nil {
			return nil, err
		}
		if u.UID == c.self.UID {
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

// RegisterToken stores an FCM registration token under this user's token
// collection and returns the document id.
func (c *Client) RegisterToken(ctx context.Context, token, platform, userAgent string) (string, error) {
	id := uuid.NewString()
	_, err := c.fs.Collection(userCollection).Doc(c.self.UID).
		Collection(tokenCollection).Doc(id).Set(ctx, map[string]any{
		"token":     token,
		"platform":  platform,
		"userAgent": userAgent,
		"createdAt": firestore.ServerTimestamp,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Heartbeat refreshes this user's presence document. Call it periodically
// while the user is online; stale documents are reaped server-side.
func (c *Client) Heartbeat(ctx context.Context) error {
	_, err := c.fs.Collection(presenceCollection).Doc(c.self.UID).Set(ctx, map[string]any{
		"userId":      c.self.UID,
		"displayName": c.self.DisplayName,
		"lastSeen":    firestore.ServerTimestamp,
		"isOnline":    true,
	}, firestore.MergeAll)
	return err
}

// Offline deletes this user's presence document on clean disconnect.
func (c *Client) Offline(ctx context.Context) error {
	_, err := c.fs.Collection(presenceCollection).Doc(c.self.UID).Delete(ctx)
	return err
}

func (c *Client) messages(conversationID string) *firestore.CollectionRef {
	return c.fs.Collection(conversationCollection).Doc(conversationID).Collection(messageCollection)
}

func (c *Client) pendingRequestExists(ctx context.Context, a, b string) (bool, error) {
	requests := c.fs.Collection(friendRequestCollection)
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		docs, err := requests.
			Where("senderId", "==", pair[0]).
			Where("recipientId", "==", pair[1]).
			Where("status", "==", contract.RequestStatusPending).
			Limit(1).
			Documents(ctx).GetAll()
		if err != nil {
			return false, err
		}
		if len(docs) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// needsReceipt reports whether the message was written by another user and
// has no read receipt from uid yet.
func needsReceipt(m Message, uid string) bool {
	if m.UserID == uid {
		return false
	}
	_, read := m.ReadBy[uid]
	return !read
}
