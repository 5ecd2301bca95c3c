package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/michat/michat-api/api"
	"github.com/michat/michat-api/config"
	"github.com/michat/michat-api/databases"
	"github.com/michat/michat-api/models"
	"github.com/michat/michat-api/realtime"
)

// Admin exported for testing purposes
type Admin struct {
	DB       databases.UserDatabase
	TDB      databases.TokenDatabase
	Loader   *realtime.CachedUserLoader
	Registry *realtime.Registry
}

// requireAdmin resolves the target user id and checks the caller's admin
// capability. Returns (0, false) after writing the error response.
func (a Admin) requireAdmin(w http.ResponseWriter, r *http.Request) (int64, bool) {
	current := api.UserFromContext(r.Context())
	if current == nil || !current.Details.IsAdmin {
		config.ErrorStatus("admins only", http.StatusForbidden, w, errors.New("caller is not an admin"))
		return 0, false
	}

	rawID, ok := mux.Vars(r)["user_id"]
	if !ok {
		// list endpoint, no target in the path
		return current.ID, true
	}
	targetID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		config.ErrorStatus("invalid user id", http.StatusBadRequest, w, err)
		return 0, false
	}
	return targetID, true
}

// ListUsersHandler returns every user with moderation state included
func (a Admin) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireAdmin(w, r); !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := options.Find().SetSort(bson.M{"user.username": 1})
	users, err := a.DB.Find(ctx, bson.M{}, opts)
	if err != nil {
		config.ErrorStatus("failed to list users", http.StatusInternalServerError, w, err)
		return
	}

	out := make([]models.AdminUserOut, 0, len(users))
	for i := range users {
		out = append(out, users[i].AdminOut())
	}
	b, err := json.Marshal(out)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MuteHandler mutes the target user for the requested number of minutes
func (a Admin) MuteHandler(w http.ResponseWriter, r *http.Request) {
	targetID, ok := a.requireAdmin(w, r)
	if !ok {
		return
	}

	var req models.MuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Minutes <= 0 {
		config.ErrorStatus("minutes must be greater than zero", http.StatusBadRequest, w, errors.New("invalid duration"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	until := time.Now().UTC().Add(time.Duration(req.Minutes) * time.Minute)
	if err := a.DB.SetMutedUntil(ctx, targetID, &until); err != nil {
		a.moderationError(w, err)
		return
	}
	a.Loader.Invalidate(ctx, targetID)

	zap.S().Infow("user muted", "user_id", targetID, "until", until)
	w.WriteHeader(http.StatusNoContent)
}

// UnmuteHandler clears the target user's mute
func (a Admin) UnmuteHandler(w http.ResponseWriter, r *http.Request) {
	targetID, ok := a.requireAdmin(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := a.DB.SetMutedUntil(ctx, targetID, nil); err != nil {
		a.moderationError(w, err)
		return
	}
	a.Loader.Invalidate(ctx, targetID)

	zap.S().Infow("user unmuted", "user_id", targetID)
	w.WriteHeader(http.StatusNoContent)
}

// BanHandler bans the target user, revokes their tokens and drops their live
// connections
func (a Admin) BanHandler(w http.ResponseWriter, r *http.Request) {
	targetID, ok := a.requireAdmin(w, r)
	if !ok {
		return
	}
	current := api.UserFromContext(r.Context())
	if targetID == current.ID {
		config.ErrorStatus("you cannot ban yourself", http.StatusBadRequest, w, errors.New("self ban"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := a.DB.SetBanned(ctx, targetID, true); err != nil {
		a.moderationError(w, err)
		return
	}
	a.Loader.Invalidate(ctx, targetID)

	if _, err := a.TDB.DeleteByUserID(ctx, targetID); err != nil {
		zap.S().Warnw("failed to revoke tokens for banned user", "user_id", targetID, "error", err)
	}
	a.Registry.CloseUser(targetID, realtime.CloseUnauthorized, "account banned")

	zap.S().Infow("user banned", "user_id", targetID)
	w.WriteHeader(http.StatusNoContent)
}

// UnbanHandler lifts the target user's ban
func (a Admin) UnbanHandler(w http.ResponseWriter, r *http.Request) {
	targetID, ok := a.requireAdmin(w, r)
	if !ok {
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := a.DB.SetBanned(ctx, targetID, false); err != nil {
		a.moderationError(w, err)
		return
	}
	a.Loader.Invalidate(ctx, targetID)

	zap.S().Infow("user unbanned", "user_id", targetID)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUserHandler tombstones the target user. Messages they authored stay
// in the log untouched.
func (a Admin) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	targetID, ok := a.requireAdmin(w, r)
	if !ok {
		return
	}
	current := api.UserFromContext(r.Context())
	if targetID == current.ID {
		config.ErrorStatus("you cannot delete yourself", http.StatusBadRequest, w, errors.New("self delete"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := a.DB.SoftDelete(ctx, targetID); err != nil {
		a.moderationError(w, err)
		return
	}
	a.Loader.Invalidate(ctx, targetID)

	if _, err := a.TDB.DeleteByUserID(ctx, targetID); err != nil {
		zap.S().Warnw("failed to revoke tokens for deleted user", "user_id", targetID, "error", err)
	}
	a.Registry.CloseUser(targetID, realtime.CloseUnauthorized, "account deleted")

	zap.S().Infow("user deleted", "user_id", targetID)
	w.WriteHeader(http.StatusNoContent)
}

func (a Admin) moderationError(w http.ResponseWriter, err error) {
	if errors.Is(err, databases.ErrNotFound) {
		config.ErrorStatus("user not found", http.StatusNotFound, w, err)
		return
	}
	config.ErrorStatus("failed to update user", http.StatusInternalServerError, w, err)
}
