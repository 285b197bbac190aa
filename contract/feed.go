package contract

import "time"

const (
	ContentTypeVideo      = "video"
	ContentTypeDevotional = "devotional"
	ContentTypeArticle    = "article"
)

// Content is an entry in the content library (videos, devotionals, articles).
// BodyHTML is written by the content-created trigger from the markdown
// description.
type Content struct {
	Title        string    `firestore:"title"`
	Description  string    `firestore:"description"`
	Type         string    `firestore:"type"`
	Author       string    `firestore:"author"`
	ThumbnailURL string    `firestore:"thumbnailUrl,omitempty"`
	ContentURL   string    `firestore:"contentUrl,omitempty"`
	Tags         []string  `firestore:"tags,omitempty"`
	BodyHTML     string    `firestore:"bodyHtml,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

// Event is a community event listing.
type Event struct {
	Title       string    `firestore:"title"`
	Description string    `firestore:"description"`
	Date        time.Time `firestore:"date"`
	Time        string    `firestore:"time,omitempty"`
	Location    string    `firestore:"location,omitempty"`
	ImageURL    string    `firestore:"imageUrl,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt"`
}
