// export copies the friendRequests collection into Postgres for offline
// analysis, upserting by request id so repeated runs converge:
//
//	DATABASE_URL=postgres://... GOOGLE_CLOUD_PROJECT=... go run cmd/export/main.go
package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"google.golang.org/api/iterator"

	"github.com/teenchurch/community/contract"
)

const (
	dbDriver                = "postgres"
	friendRequestCollection = "friendRequests"
)

var schema = `
CREATE TABLE IF NOT EXISTS friend_request (
	id TEXT PRIMARY KEY,
	sender_id TEXT NOT NULL,
	sender_name TEXT NOT NULL,
	recipient_id TEXT NOT NULL,
	recipient_name TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ,
	updated_at TIMESTAMPTZ
);`

const upsert = `
INSERT INTO friend_request (id, sender_id, sender_name, recipient_id, recipient_name, status, created_at, updated_at)
VALUES (:id, :sender_id, :sender_name, :recipient_id, :recipient_name, :status, :created_at, :updated_at)
ON CONFLICT (id) DO UPDATE SET
	status = EXCLUDED.status,
	updated_at = EXCLUDED.updated_at;`

type row struct {
	ID            string    `db:"id"`
	SenderID      string    `db:"sender_id"`
	SenderName    string    `db:"sender_name"`
	RecipientID   string    `db:"recipient_id"`
	RecipientName string    `db:"recipient_name"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func main() {
	ctx := context.Background()

	dbSource := os.Getenv("DATABASE_URL")
	if dbSource == "" {
		log.Fatalf("DATABASE_URL is not set")
	}
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		log.Fatalf("GOOGLE_CLOUD_PROJECT is not set")
	}

	db, err := sqlx.Connect(dbDriver, dbSource)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()
	db.MustExec(schema)

	fs, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		log.Fatalf("failed to create firestore client: %v", err)
	}
	defer fs.Close()

	exported := 0
	it := fs.Collection(friendRequestCollection).Documents(ctx)
	defer it.Stop()
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Fatalf("failed to iterate friend requests: %v", err)
		}

		var req contract.FriendRequest
		if err := doc.DataTo(&req); err != nil {
			log.Printf("skipping malformed request %s: %v", doc.Ref.ID, err)
			continue
		}

		if _, err := db.NamedExecContext(ctx, upsert, row{
			ID:            doc.Ref.ID,
			SenderID:      req.SenderID,
			SenderName:    req.SenderName,
			RecipientID:   req.RecipientID,
			RecipientName: req.RecipientName,
			Status:        req.Status,
			CreatedAt:     req.CreatedAt,
			UpdatedAt:     req.UpdatedAt,
		}); err != nil {
			log.Fatalf("failed to upsert request %s: %v", doc.Ref.ID, err)
		}
		exported++
	}

	log.Printf("exported %d friend requests", exported)
}
