package api

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is the lifetime of issued access tokens
const TokenTTL = 24 * time.Hour

// TokenIssuer mints and verifies the HS256 access tokens carried by both the
// REST calls and the websocket upgrade
type TokenIssuer struct {
	Secret []byte
}

// Issue signs a token for the given user. The jti is recorded server-side so
// the token can be revoked before it expires.
func (t TokenIssuer) Issue(userID int64) (token string, jti string, expiresAt time.Time, err error) {
	now := time.Now()
	expiresAt = now.Add(TokenTTL)
	jti = uuid.NewString()

	claims := jwtlib.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"jti": jti,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}
	token, err = jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(t.Secret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return token, jti, expiresAt, nil
}

// Verify parses the token and returns the subject user id and jti
func (t TokenIssuer) Verify(token string) (userID int64, jti string, err error) {
	parsed, err := jwtlib.Parse(token, func(tok *jwtlib.Token) (interface{}, error) {
		// only the HMAC family is ever issued
		if _, ok := tok.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected alg: %v", tok.Header["alg"])
		}
		return t.Secret, nil
	})
	if err != nil {
		return 0, "", err
	}
	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok || !parsed.Valid {
		return 0, "", errors.New("invalid token")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, "", err
	}
	userID, err = strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid subject: %w", err)
	}
	jti, _ = claims["jti"].(string)
	if jti == "" {
		return 0, "", errors.New("token missing jti")
	}
	return userID, jti, nil
}
