// internal/handlers/guest.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mhollis/bridge/internal/auth"
)

const guestCookieName = "guest_token"

// EnsureGuest resolves the caller's connection ID from the guest token
// cookie, minting a fresh identity and setting the cookie when the token is
// missing or invalid.
func EnsureGuest(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	cookieHeader := r.Header.Get("Cookie")
	if strings.Contains(cookieHeader, guestCookieName+"=") {
		token := extractCookieToken(cookieHeader, guestCookieName)
		if connID, err := auth.AuthenticateGuestToken(token); err == nil {
			return connID, nil
		}
	}

	connID, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, err
	}
	token, err := auth.CreateGuestToken(connID)
	if err != nil {
		return uuid.Nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     guestCookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	})
	return connID, nil
}

// extractCookieToken pulls a named cookie value out of a raw Cookie header.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}
