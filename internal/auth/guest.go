// internal/auth/guest.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Guest identities are anonymous: a player gets a signed token on first
// contact and presents it on reconnect to keep the same connection ID. Keys
// are generated at process start; rooms live in memory only, so tokens never
// need to outlive the server.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	guestTokenTTL time.Duration
)

// Init generates a fresh ed25519 key pair and reads GUEST_TOKEN_TTL
// (a Go duration, default 12h; "never" or "0" disables expiry).
func Init() error {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}

	ttl := os.Getenv("GUEST_TOKEN_TTL")
	switch ttl {
	case "", "12h":
		guestTokenTTL = 12 * time.Hour
	case "never", "0":
		guestTokenTTL = 0
	default:
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("failed to parse GUEST_TOKEN_TTL: %w", err)
		}
		guestTokenTTL = d
	}
	return nil
}

// CreateGuestToken mints a signed token whose subject is the guest's
// connection ID.
func CreateGuestToken(connID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub": connID.String(),
		"iat": time.Now().Unix(),
	}
	if guestTokenTTL > 0 {
		claims["exp"] = time.Now().Add(guestTokenTTL).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// AuthenticateGuestToken verifies a token and returns the connection ID it
// carries.
func AuthenticateGuestToken(tokenString string) (uuid.UUID, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return uuid.Nil, fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid jwt claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing sub in jwt")
	}
	connID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed sub in jwt: %w", err)
	}
	return connID, nil
}
