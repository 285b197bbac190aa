package community

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/teenchurch/community/auth"
	"github.com/teenchurch/community/contract"
	"github.com/teenchurch/community/log"
	"github.com/teenchurch/community/presence"
)

// RegisterDevice registers an FCM token under the authenticated user. The
// token document id is generated server-side; the token string itself is a
// queryable field so cleanup can find it after failed sends.
func RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.Error("invalid method: " + r.Method)
		http.Error(w, "Method Not Implemented", http.StatusNotImplemented)
		return
	}

	token, err := auth.Authenticate(r)
	if err != nil {
		logger.Error("error while authenticating", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	logger = logger.With(slog.String(userIDLogField, token.UID))
	ctx = log.WithLogger(ctx, logger)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("error while reading request body", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req contract.RegisterDeviceRequest
	if err := json.Unmarshal(data, &req); err != nil {
		logger.Error("error while decoding request", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		logger.Error("missing token in request")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	rt, err := newRuntime(ctx)
	if err != nil {
		logger.Error("error building clients", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer rt.Close()

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = r.UserAgent()
	}
	id := uuid.NewString()
	err = rt.handlers.Store.SaveDeviceToken(ctx, token.UID, id, contract.DeviceToken{
		Token:     req.Token,
		Platform:  req.Platform,
		UserAgent: userAgent,
		CreatedAt: time.Now(),
	})
	if err != nil {
		logger.Error("error saving device token", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(contract.RegisterDeviceResponse{ID: id})
}

// ReapPresence removes presence records whose heartbeat went stale, for
// clients that disconnected without cleaning up. Invoked by Cloud Scheduler.
func ReapPresence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.Error("invalid method: " + r.Method)
		http.Error(w, "Method Not Implemented", http.StatusNotImplemented)
		return
	}

	maxAge := presence.DefaultMaxAge
	if raw := os.Getenv("PRESENCE_MAX_AGE"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			logger.Error("invalid PRESENCE_MAX_AGE, using default", slog.String(ErrorMsgLogField, err.Error()))
		} else {
			maxAge = parsed
		}
	}

	rt, err := newRuntime(ctx)
	if err != nil {
		logger.Error("error building clients", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer rt.Close()

	reaped, err := presence.NewReaper(rt.handlers.Store, maxAge).Reap(ctx)
	if err != nil {
		logger.Error("error reaping presence", slog.String(ErrorMsgLogField, err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	logger.Info("presence reap completed", slog.Int("reaped", reaped))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(contract.ReapPresenceResponse{Reaped: reaped})
}
