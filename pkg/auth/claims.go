package auth

import "github.com/golang-jwt/jwt/v5"

// AccessTokenPayload is the data needed to mint a staff access token.
type AccessTokenPayload struct {
	UserID int64
	Email  string
	JTI    string
}

// AccessTokenClaims is the typed JWT issued to restaurant owners.
type AccessTokenClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
