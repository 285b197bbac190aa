package contract

import "time"

// DeviceToken is a push destination registered under
// users/{userId}/fcmTokens. A token may turn permanently invalid at any time
// and is pruned reactively after a failed send.
type DeviceToken struct {
	Token     string    `firestore:"token"`
	Platform  string    `firestore:"platform,omitempty"`
	UserAgent string    `firestore:"userAgent,omitempty"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// Presence is a per-user heartbeat record in the presence collection,
// deleted by the client on disconnect and reaped when stale.
type Presence struct {
	UserID      string    `firestore:"userId"`
	DisplayName string    `firestore:"displayName"`
	LastSeen    time.Time `firestore:"lastSeen"`
	IsOnline    bool      `firestore:"isOnline"`
}
