package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/teenchurch/community/contract"
	"github.com/teenchurch/community/logger"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	conversationsCollection  = "conversations"
	messagesCollection       = "messages"
	friendRequestsCollection = "friendRequests"
	usersCollection          = "users"
	friendsCollection        = "friends"
	fcmTokensCollection      = "fcmTokens"
	presenceCollection       = "presence"
	contentCollection        = "content"

	tokenField    = "token"
	statusField   = "status"
	lastSeenField = "lastSeen"
)

// Firestore implements Store over a Firestore client.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (f *Firestore) Conversation(ctx context.Context, id string) (*contract.Conversation, error) {
	doc, err := f.client.Collection(conversationsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var conv contract.Conversation
	if err := doc.DataTo(&conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (f *Firestore) SetLastMessage(ctx context.Context, conversationID string, lm contract.LastMessage) error {
	_, err := f.client.Collection(conversationsCollection).Doc(conversationID).Update(ctx, []firestore.Update{
		{Path: "lastMessage", Value: lm},
		{Path: "updatedAt", Value: lm.CreatedAt},
	})
	return err
}

func (f *Firestore) FlagMessage(ctx context.Context, conversationID, messageID string, categories []string) error {
	ref := f.client.Collection(conversationsCollection).Doc(conversationID).Collection(messagesCollection).Doc(messageID)
	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "flagged", Value: true},
		{Path: "flaggedCategories", Value: categories},
	})
	return err
}

func (f *Firestore) DeviceTokens(ctx context.Context, userID string) ([]contract.DeviceToken, error) {
	log := logger.FromContext(ctx)

	iter := f.tokens(userID).Documents(ctx)
	defer iter.Stop()

	var tokens []contract.DeviceToken
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var tok contract.DeviceToken
		if err := doc.DataTo(&tok); err != nil {
			log.Printf("skipping malformed token document %s for user %s: %v", doc.Ref.ID, userID, err)
			continue
		}
		if tok.Token == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func (f *Firestore) SaveDeviceToken(ctx context.Context, userID, id string, tok contract.DeviceToken) error {
	_, err := f.tokens(userID).Doc(id).Set(ctx, tok)
	return err
}

// DeleteDeviceToken finds token documents by their token field rather than
// assuming the token string is the document id.
func (f *Firestore) DeleteDeviceToken(ctx context.Context, userID, token string) error {
	iter := f.tokens(userID).Where(tokenField, "==", token).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return err
		}
	}
}

func (f *Firestore) CreateFriendship(ctx context.Context, a, b contract.Participant) error {
	batch := f.client.Batch()
	batch.Set(f.friendEdge(a.UID, b.UID), contract.Friend{
		UID:         b.UID,
		DisplayName: b.DisplayName,
		PhotoURL:    b.PhotoURL,
	})
	batch.Set(f.friendEdge(b.UID, a.UID), contract.Friend{
		UID:         a.UID,
		DisplayName: a.DisplayName,
		PhotoURL:    a.PhotoURL,
	})
	_, err := batch.Commit(ctx)
	return err
}

func (f *Firestore) FindAcceptedRequest(ctx context.Context, userA, userB string) (string, error) {
	pairs := [][2]string{{userA, userB}, {userB, userA}}
	for _, p := range pairs {
		id, err := f.findRequest(ctx, p[0], p[1], contract.RequestStatusAccepted)
		if err != nil && err != ErrNotFound {
			return "", err
		}
		if id != "" {
			return id, nil
		}
	}
	return "", ErrNotFound
}

func (f *Firestore) findRequest(ctx context.Context, senderID, recipientID, requestStatus string) (string, error) {
	iter := f.client.Collection(friendRequestsCollection).
		Where("senderId", "==", senderID).
		Where("recipientId", "==", recipientID).
		Where(statusField, "==", requestStatus).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return doc.Ref.ID, nil
}

func (f *Firestore) CommitUnfriend(ctx context.Context, unfriendedID, unfrienderID, requestID string) error {
	batch := f.client.Batch()
	batch.Delete(f.friendEdge(unfriendedID, unfrienderID))
	if requestID != "" {
		batch.Update(f.client.Collection(friendRequestsCollection).Doc(requestID), []firestore.Update{
			{Path: statusField, Value: contract.RequestStatusUnfriended},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	}
	_, err := batch.Commit(ctx)
	return err
}

func (f *Firestore) SetContentHTML(ctx context.Context, contentID, html string) error {
	_, err := f.client.Collection(contentCollection).Doc(contentID).Update(ctx, []firestore.Update{
		{Path: "bodyHtml", Value: html},
	})
	return err
}

func (f *Firestore) StalePresence(ctx context.Context, cutoff time.Time) ([]string, error) {
	iter := f.client.Collection(presenceCollection).
		Where(lastSeenField, "<", cutoff).
		Documents(ctx)
	defer iter.Stop()

	var ids []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, doc.Ref.ID)
	}
	return ids, nil
}

func (f *Firestore) DeletePresence(ctx context.Context, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	batch := f.client.Batch()
	for _, id := range userIDs {
		batch.Delete(f.client.Collection(presenceCollection).Doc(id))
	}
	_, err := batch.Commit(ctx)
	return err
}

func (f *Firestore) tokens(userID string) *firestore.CollectionRef {
	return f.client.Collection(usersCollection).Doc(userID).Collection(fcmTokensCollection)
}

func (f *Firestore) friendEdge(ownerID, friendID string) *firestore.DocumentRef {
	return f.client.Collection(usersCollection).Doc(ownerID).Collection(friendsCollection).Doc(friendID)
}
