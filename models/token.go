package models

import "time"

// Token holds the structure for the token collection in mongo. One row per
// issued JWT, keyed by jti, so bans can revoke outstanding tokens.
type Token struct {
	ID      string       `json:"_id" bson:"_id"`
	Details TokenDetails `json:"token" bson:"token"`
}

// TokenDetails holds the inner token structure
type TokenDetails struct {
	UserID    int64     `json:"userId" bson:"userId"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
