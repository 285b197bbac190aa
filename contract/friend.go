package contract

import "time"

const (
	RequestStatusPending    = "pending"
	RequestStatusAccepted   = "accepted"
	RequestStatusDeclined   = "declined"
	RequestStatusUnfriended = "unfriended"
)

// FriendRequest lives in the top-level friendRequests collection. Permitted
// status transitions: pending→accepted, pending→declined, accepted→unfriended.
type FriendRequest struct {
	SenderID          string    `firestore:"senderId"`
	SenderName        string    `firestore:"senderName"`
	SenderPhotoURL    string    `firestore:"senderPhotoURL,omitempty"`
	RecipientID       string    `firestore:"recipientId"`
	RecipientName     string    `firestore:"recipientName"`
	RecipientPhotoURL string    `firestore:"recipientPhotoURL,omitempty"`
	Status            string    `firestore:"status"`
	CreatedAt         time.Time `firestore:"createdAt"`
	UpdatedAt         time.Time `firestore:"updatedAt"`
}

// Friend is one directional edge of a friendship, stored under
// users/{ownerId}/friends/{friendId}. A friendship is the mirrored pair of
// such documents.
type Friend struct {
	UID         string    `firestore:"uid"`
	DisplayName string    `firestore:"displayName"`
	PhotoURL    string    `firestore:"photoURL"`
	FriendSince time.Time `firestore:"friendSince,serverTimestamp"`
}

// UserProfile is the public profile document in the users collection.
type UserProfile struct {
	UID         string `firestore:"uid"`
	DisplayName string `firestore:"displayName"`
	Email       string `firestore:"email,omitempty"`
	PhotoURL    string `firestore:"photoURL,omitempty"`
}
