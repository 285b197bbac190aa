// Package push sends multicast notifications and prunes permanently-invalid
// device tokens from their owners' token collections.
package push

import (
	"context"
	"log/slog"

	"github.com/teenchurch/community/log"
)

const (
	errorMsgLogField = "errorMsg"
	tokenLogField    = "token"
	userIDLogField   = "userID"

	// maxBodyChars bounds the notification body; longer message text is cut
	// and suffixed with an ellipsis.
	maxBodyChars = 100
)

// Notification is the display part of a push payload. The free-form data
// payload travels separately and carries deep-link information.
type Notification struct {
	Title string
	Body  string
	Icon  string
}

// Class classifies a per-token send outcome. Only ClassInvalidToken and
// ClassUnregistered mark a token as permanently dead; everything else is
// left for a natural retry on the next triggering event.
type Class int

const (
	ClassOK Class = iota
	ClassInvalidToken
	ClassUnregistered
	ClassOther
)

// Result is the outcome for one token. Results are returned in the order of
// the input tokens.
type Result struct {
	Class Class
	Err   error
}

// Dead reports whether the token should be removed from storage.
func (r Result) Dead() bool {
	return r.Class == ClassInvalidToken || r.Class == ClassUnregistered
}

// Multicaster attempts delivery to many tokens in one call.
type Multicaster interface {
	SendMulticast(ctx context.Context, tokens []string, n Notification, data map[string]string) ([]Result, error)
}

// TokenDeleter removes a user's token record.
type TokenDeleter interface {
	DeleteDeviceToken(ctx context.Context, userID, token string) error
}

// Target is one delivery destination; the owning user id is kept next to
// the token so failed tokens can be deleted from the right collection.
type Target struct {
	UserID string
	Token  string
}

// Dispatcher fans one notification out to a set of targets and reconciles
// the per-token results.
type Dispatcher struct {
	sender Multicaster
	tokens TokenDeleter
}

func NewDispatcher(sender Multicaster, tokens TokenDeleter) *Dispatcher {
	return &Dispatcher{sender: sender, tokens: tokens}
}

// Send delivers one multicast across all targets and deletes tokens whose
// failure class marks them permanently invalid. Cleanup failures are logged
// only. Returns the success and failure counts of the multicast.
func (d *Dispatcher) Send(ctx context.Context, targets []Target, n Notification, data map[string]string) (int, int, error) {
	logger := log.LoggerFromContext(ctx)

	if len(targets) == 0 {
		return 0, 0, nil
	}

	tokens := make([]string, len(targets))
	for i, t := range targets {
		tokens[i] = t.Token
	}

	results, err := d.sender.SendMulticast(ctx, tokens, n, data)
	if err != nil {
		return 0, 0, err
	}

	var succeeded, failed int
	for i, res := range results {
		if res.Class == ClassOK {
			succeeded++
			continue
		}
		failed++
		target := targets[i]
		logger.Warn("push delivery failed",
			slog.String(tokenLogField, target.Token),
			slog.String(userIDLogField, target.UserID),
			slog.String(errorMsgLogField, errMsg(res.Err)),
		)
		if !res.Dead() {
			continue
		}
		if err := d.tokens.DeleteDeviceToken(ctx, target.UserID, target.Token); err != nil {
			logger.Error("failed to delete invalid token",
				slog.String(tokenLogField, target.Token),
				slog.String(userIDLogField, target.UserID),
				slog.String(errorMsgLogField, err.Error()),
			)
		}
	}
	return succeeded, failed, nil
}

// TruncateBody cuts message text down to the notification body limit.
func TruncateBody(text string) string {
	runes := []rune(text)
	if len(runes) <= maxBodyChars {
		return text
	}
	return string(runes[:maxBodyChars]) + "..."
}

func errMsg(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
