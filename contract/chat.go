package contract

import (
	"sort"
	"strings"
	"time"
)

const (
	MessageTypeText     = "text"
	MessageTypeReaction = "reaction"
	MessageTypeSystem   = "system"
)

// Conversation is a direct conversation between exactly two users. Its
// document id is deterministic, see ConversationID.
type Conversation struct {
	Participants       []string      `firestore:"participants"`
	ParticipantDetails []Participant `firestore:"participantDetails"`
	LastMessage        *LastMessage  `firestore:"lastMessage"`
	UpdatedAt          time.Time     `firestore:"updatedAt"`
	TypingUsers        []Participant `firestore:"typingUsers"`
}

type Participant struct {
	UID         string `firestore:"uid"`
	DisplayName string `firestore:"displayName"`
	PhotoURL    string `firestore:"photoURL"`
}

// LastMessage is the denormalized snapshot of the newest message, kept on
// the conversation document so conversation lists need no extra reads.
type LastMessage struct {
	Text      string    `firestore:"text"`
	SenderID  string    `firestore:"senderId"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// Message lives in conversations/{conversationId}/messages. Messages are
// never updated after creation except for read receipts and moderation flags.
type Message struct {
	Text        string               `firestore:"text"`
	UserID      string               `firestore:"userId"`
	DisplayName string               `firestore:"displayName"`
	CreatedAt   time.Time            `firestore:"createdAt"`
	Type        string               `firestore:"type"`
	ReplyTo     string               `firestore:"replyTo,omitempty"`
	Edited      bool                 `firestore:"edited,omitempty"`
	EditedAt    time.Time            `firestore:"editedAt,omitempty"`
	ReadBy      map[string]time.Time `firestore:"readBy,omitempty"`

	Flagged           bool     `firestore:"flagged,omitempty"`
	FlaggedCategories []string `firestore:"flaggedCategories,omitempty"`
}

// ConversationID derives the conversation document id for a pair of users.
// The two uids are sorted before joining, so the id is the same regardless
// of which side initiates the conversation.
func ConversationID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}
