package models

import "time"

// User holds the structure for the user collection in mongo
type User struct {
	ID      int64       `json:"_id" bson:"_id"`
	Details UserDetails `json:"user" bson:"user"`
}

// UserDetails holds the structure for the inner user structure as defined in the user collection in mongo
type UserDetails struct {
	Username     string     `json:"username" bson:"username"`
	PasswordHash string     `json:"-" bson:"passwordHash"`
	Color        string     `json:"color" bson:"color"`
	IsAdmin      bool       `json:"isAdmin" bson:"isAdmin"`
	IsBanned     bool       `json:"isBanned" bson:"isBanned"`
	MutedUntil   *time.Time `json:"mutedUntil" bson:"mutedUntil"`
	IsDeleted    bool       `json:"isDeleted" bson:"isDeleted"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
}

// Muted reports whether the user is muted at the given instant. A mutedUntil
// in the past counts as not muted; the field is never eagerly cleared.
func (u *User) Muted(now time.Time) bool {
	return u.Details.MutedUntil != nil && u.Details.MutedUntil.After(now)
}

// UserOut is the public user representation returned by the REST endpoints
type UserOut struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Color    string `json:"color"`
	IsAdmin  bool   `json:"is_admin"`
}

// AdminUserOut extends UserOut with the moderation fields admins can see
type AdminUserOut struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	Color      string     `json:"color"`
	IsAdmin    bool       `json:"is_admin"`
	IsBanned   bool       `json:"is_banned"`
	MutedUntil *time.Time `json:"muted_until"`
	IsDeleted  bool       `json:"is_deleted"`
}

// Out converts a stored user to its public representation
func (u *User) Out() UserOut {
	return UserOut{
		ID:       u.ID,
		Username: u.Details.Username,
		Color:    u.Details.Color,
		IsAdmin:  u.Details.IsAdmin,
	}
}

// AdminOut converts a stored user to its admin representation
func (u *User) AdminOut() AdminUserOut {
	return AdminUserOut{
		ID:         u.ID,
		Username:   u.Details.Username,
		Color:      u.Details.Color,
		IsAdmin:    u.Details.IsAdmin,
		IsBanned:   u.Details.IsBanned,
		MutedUntil: u.Details.MutedUntil,
		IsDeleted:  u.Details.IsDeleted,
	}
}

// RegisterRequest is the body for POST /register
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Color    string `json:"color"`
}

// LoginRequest is the body for POST /login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the body returned by POST /login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// MuteRequest is the body for POST /admin/users/{id}/mute
type MuteRequest struct {
	Minutes int `json:"minutes"`
}
