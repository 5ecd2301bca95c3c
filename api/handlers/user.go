package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/michat/michat-api/api"
	"github.com/michat/michat-api/config"
	"github.com/michat/michat-api/databases"
	"github.com/michat/michat-api/models"
)

const (
	maxUsernameLength = 50
	defaultUserColor  = "#ffffff"
)

// User exported for testing purposes
type User struct {
	DB     databases.UserDatabase
	TDB    databases.TokenDatabase
	Issuer api.TokenIssuer
	Conf   config.Config
}

// RegisterHandler creates a new chat account
func (u User) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Username) > maxUsernameLength {
		config.ErrorStatus("username must be 1-50 characters", http.StatusBadRequest, w, errors.New("invalid username"))
		return
	}
	if req.Password == "" {
		config.ErrorStatus("password must not be empty", http.StatusBadRequest, w, errors.New("invalid password"))
		return
	}
	if strings.EqualFold(req.Username, u.Conf.AdminUsername) {
		config.ErrorStatus("this username is reserved", http.StatusBadRequest, w, errors.New("reserved username"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := u.DB.FindByUsername(ctx, req.Username); err == nil {
		config.ErrorStatus("username is already taken", http.StatusBadRequest, w, errors.New("duplicate username"))
		return
	} else if !errors.Is(err, databases.ErrNotFound) {
		config.ErrorStatus("failed to check username", http.StatusInternalServerError, w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	color := req.Color
	if color == "" {
		color = defaultUserColor
	}

	created, err := u.DB.Insert(ctx, models.UserDetails{
		Username:     req.Username,
		PasswordHash: string(hash),
		Color:        color,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		config.ErrorStatus("failed to create user", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("user registered",
		"user_id", created.ID,
		"username", created.Details.Username,
	)

	w.WriteHeader(http.StatusCreated)
	b, _ := json.Marshal(created.Out())
	w.Write(b)
}

// LoginHandler verifies credentials and returns an access token
func (u User) LoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindByUsername(ctx, req.Username)
	if err != nil {
		config.ErrorStatus("incorrect username or password", http.StatusUnauthorized, w, err)
		return
	}
	if user.Details.IsDeleted {
		config.ErrorStatus("incorrect username or password", http.StatusUnauthorized, w, errors.New("user deleted"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Details.PasswordHash), []byte(req.Password)); err != nil {
		config.ErrorStatus("incorrect username or password", http.StatusUnauthorized, w, err)
		return
	}
	if user.Details.IsBanned {
		config.ErrorStatus("this account is banned", http.StatusForbidden, w, errors.New("user banned"))
		return
	}

	token, jti, expiresAt, err := u.Issuer.Issue(user.ID)
	if err != nil {
		config.ErrorStatus("failed to issue token", http.StatusInternalServerError, w, err)
		return
	}
	if err := u.TDB.Insert(ctx, jti, user.ID, expiresAt); err != nil {
		config.ErrorStatus("failed to record token", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(models.TokenResponse{AccessToken: token, TokenType: "bearer"})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MeHandler returns the authenticated user
func (u User) MeHandler(w http.ResponseWriter, r *http.Request) {
	current := api.UserFromContext(r.Context())

	b, err := json.Marshal(current.Out())
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ListUsersHandler returns every non-deleted user, ordered by username
func (u User) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := options.Find().SetSort(bson.M{"user.username": 1})
	users, err := u.DB.Find(ctx, bson.M{"user.isDeleted": false}, opts)
	if err != nil {
		config.ErrorStatus("failed to list users", http.StatusInternalServerError, w, err)
		return
	}

	out := make([]models.UserOut, 0, len(users))
	for i := range users {
		out = append(out, users[i].Out())
	}
	b, err := json.Marshal(out)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// EnsureAdmin creates the bootstrap admin account if it does not exist yet
func (u User) EnsureAdmin() error {
	ctx, cancel := api.WithQueryTimeout(context.Background())
	defer cancel()

	existing, err := u.DB.FindByUsername(ctx, u.Conf.AdminUsername)
	if err == nil {
		zap.S().Infow("admin user exists", "user_id", existing.ID, "username", existing.Details.Username)
		return nil
	}
	if !errors.Is(err, databases.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Conf.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	created, err := u.DB.Insert(ctx, models.UserDetails{
		Username:     u.Conf.AdminUsername,
		PasswordHash: string(hash),
		Color:        u.Conf.AdminColor,
		IsAdmin:      true,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	zap.S().Infow("admin user created", "user_id", created.ID, "username", created.Details.Username)
	return nil
}
