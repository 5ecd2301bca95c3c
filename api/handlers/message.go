package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/michat/michat-api/api"
	"github.com/michat/michat-api/config"
	"github.com/michat/michat-api/databases"
	"github.com/michat/michat-api/models"
	"github.com/michat/michat-api/realtime"
)

const (
	defaultGlobalLimit  = 50
	defaultPrivateLimit = 100
	maxListLimit        = 200
)

// Message exported for testing purposes
type Message struct {
	DB   databases.MessageDatabase
	Chat *realtime.Router
}

// GlobalMessagesHandler serves the public feed. Without after_id it returns
// the most recent messages in ascending order (initial load); with after_id
// it returns everything newer than the cursor (poll).
func (m Message) GlobalMessagesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	limit := parseLimit(r.URL.Query().Get("limit"), defaultGlobalLimit)

	var afterID int64
	if raw := r.URL.Query().Get("after_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			config.ErrorStatus("invalid after_id", http.StatusBadRequest, w, err)
			return
		}
		afterID = parsed
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	messages, err := m.DB.ListGlobal(ctx, afterID, limit)
	if err != nil {
		config.ErrorStatus("failed to get messages", http.StatusInternalServerError, w, err)
		return
	}

	writeMessages(w, messages)
}

// PrivateMessagesHandler serves the 1:1 thread between the caller and
// with_user_id. Participation is enforced by construction: the caller's own
// id is always one side of the query.
func (m Message) PrivateMessagesHandler(w http.ResponseWriter, r *http.Request) {
	current := api.UserFromContext(r.Context())

	rawWith := r.URL.Query().Get("with_user_id")
	withID, err := strconv.ParseInt(rawWith, 10, 64)
	if err != nil {
		config.ErrorStatus("invalid with_user_id", http.StatusBadRequest, w, err)
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"), defaultPrivateLimit)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	messages, err := m.DB.ListPrivate(ctx, current.ID, withID, limit)
	if err != nil {
		config.ErrorStatus("failed to get messages", http.StatusInternalServerError, w, err)
		return
	}

	writeMessages(w, messages)
}

// SendMessageHandler is the legacy HTTP send. It runs the same admission,
// persist and fan-out path as a websocket frame, so live clients still see
// the message pushed.
func (m Message) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	current := api.UserFromContext(r.Context())

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	msg, err := m.Chat.SendPublic(ctx, current.ID, req.Content)
	if err != nil {
		code := realtime.CodeOf(err)
		zap.S().Debugw("http send rejected", "user_id", current.ID, "code", code)
		config.ErrorStatus(errDetail(err), statusForCode(code), w, err)
		return
	}

	b, err := json.Marshal(msg.Out())
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

func writeMessages(w http.ResponseWriter, messages []models.Message) {
	out := make([]models.MessageOut, 0, len(messages))
	for i := range messages {
		out = append(out, messages[i].Out())
	}
	b, err := json.Marshal(out)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func parseLimit(raw string, fallback int64) int64 {
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit <= 0 {
		return fallback
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// statusForCode maps routing error codes onto the REST statuses the client
// already handles
func statusForCode(code realtime.Code) int {
	switch code {
	case realtime.CodeUnauthorized:
		return http.StatusUnauthorized
	case realtime.CodeForbidden, realtime.CodeMuted:
		return http.StatusForbidden
	case realtime.CodeInvalidPayload, realtime.CodeInvalidTarget:
		return http.StatusBadRequest
	case realtime.CodeValidation:
		return http.StatusUnprocessableEntity
	case realtime.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusServiceUnavailable
	}
}

func errDetail(err error) string {
	var rerr *realtime.Error
	if errors.As(err, &rerr) {
		return rerr.Detail
	}
	return "message could not be sent"
}
