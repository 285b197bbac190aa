package client

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/teenchurch/community/contract"
	"github.com/teenchurch/community/log"
)

const (
	errorMsgLogField = "errorMsg"
	queryLogField    = "query"

	messageWindow = 100
)

// Message is a message document together with its id, needed for read
// receipts and reaction targets.
type Message struct {
	ID string
	contract.Message
}

type Conversation struct {
	ID string
	contract.Conversation
}

type FriendRequest struct {
	ID string
	contract.FriendRequest
}

type Content struct {
	ID string
	contract.Content
}

type Event struct {
	ID string
	contract.Event
}

// Messages streams the newest hundred messages of a conversation, oldest
// first. Every Firestore change delivers a fresh slice; the channel closes
// when ctx is done or the listener fails.
func (c *Client) Messages(ctx context.Context, conversationID string) <-chan []Message {
	query := c.messages(conversationID).
		OrderBy("createdAt", firestore.Desc).
		Limit(messageWindow)

	return listen(ctx, query, "messages", func(doc *firestore.DocumentSnapshot) (Message, error) {
		m := Message{ID: doc.Ref.ID}
		err := doc.DataTo(&m.Message)
		return m, err
	}, reverse[Message])
}

// Conversations streams this user's conversations, most recently active
// first.
func (c *Client) Conversations(ctx context.Context) <-chan []Conversation {
	query := c.fs.Collection(conversationCollection).
		Where("participants", "array-contains", c.self.UID).
		OrderBy("updatedAt", firestore.Desc)

	return listen(ctx, query, "conversations", func(doc *firestore.DocumentSnapshot) (Conversation, error) {
		conv := Conversation{ID: doc.Ref.ID}
		err := doc.DataTo(&conv.Conversation)
		return conv, err
	}, nil)
}

// PendingFriendRequests streams requests awaiting this user's answer, newest
// first.
func (c *Client) PendingFriendRequests(ctx context.Context) <-chan []FriendRequest {
	query := c.fs.Collection(friendRequestCollection).
		Where("recipientId", "==", c.self.UID).
		Where("status", "==", contract.RequestStatusPending).
		OrderBy("createdAt", firestore.Desc)

	return listen(ctx, query, "friendRequests", func(doc *firestore.DocumentSnapshot) (FriendRequest, error) {
		req := FriendRequest{ID: doc.Ref.ID}
		err := doc.DataTo(&req.FriendRequest)
		return req, err
	}, nil)
}

// Friends streams this user's friends list ordered by display name. The
// friend's uid is the document id.
func (c *Client) Friends(ctx context.Context) <-chan []contract.Friend {
	query := c.fs.Collection(userCollection).Doc(c.self.UID).
		Collection(friendCollection).
		OrderBy("displayName", firestore.Asc)

	return listen(ctx, query, "friends", func(doc *firestore.DocumentSnapshot) (contract.Friend, error) {
		var f contract.Friend
		if err := doc.DataTo(&f); err != nil {
			return f, err
		}
		f.UID = doc.Ref.ID
		return f, nil
	}, nil)
}

// Presence streams the whole presence collection.
func (c *Client) Presence(ctx context.Context) <-chan []contract.Presence {
	query := c.fs.Collection(presenceCollection).Query

	return listen(ctx, query, "presence", func(doc *firestore.DocumentSnapshot) (contract.Presence, error) {
		var p contract.Presence
		err := doc.DataTo(&p)
		return p, err
	}, nil)
}

// Content streams the content library newest first, optionally narrowed to
// one content type.
func (c *Client) Content(ctx context.Context, contentType string) <-chan []Content {
	query := c.fs.Collection(contentCollection).Query
	if contentType != "" {
		query = query.Where("type", "==", contentType)
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	return listen(ctx, query, "content", func(doc *firestore.DocumentSnapshot) (Content, error) {
		ct := Content{ID: doc.Ref.ID}
		err := doc.DataTo(&ct.Content)
		return ct, err
	}, nil)
}

// UpcomingEvents streams events dated now or later, soonest first.
func (c *Client) UpcomingEvents(ctx context.Context) <-chan []Event {
	query := c.fs.Collection(eventCollection).
		Where("date", ">=", time.Now()).
		OrderBy("date", firestore.Asc)

	return listen(ctx, query, "events", func(doc *firestore.DocumentSnapshot) (Event, error) {
		ev := Event{ID: doc.Ref.ID}
		err := doc.DataTo(&ev.Event)
		return ev, err
	}, nil)
}

// listen turns a query into a channel of decoded result sets. Documents that
// fail to decode are logged and skipped so one malformed document cannot
// wedge the stream.
func listen[T any](
	ctx context.Context,
	query firestore.Query,
	name string,
	decode func(*firestore.DocumentSnapshot) (T, error),
	finalize func([]T) []T,
) <-chan []T {
	out := make(chan []T)
	logger := log.LoggerFromContext(ctx).With(slog.String(queryLogField, name))

	go func() {
		defer close(out)

		it := query.Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() == nil {
					logger.Error("snapshot listener failed", slog.String(errorMsgLogField, err.Error()))
				}
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.Error("error reading snapshot documents", slog.String(errorMsgLogField, err.Error()))
				return
			}

			results := make([]T, 0, len(docs))
			for _, doc := range docs {
				item, err := decode(doc)
				if err != nil {
					logger.Warn("skipping malformed document", slog.String(errorMsgLogField, err.Error()))
					continue
				}
				results = append(results, item)
			}
			if finalize != nil {
				results = finalize(results)
			}

			select {
			case out <- results:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func reverse[T any](items []T) []T {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}
