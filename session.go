package main

import (
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Feedback session cookie. The session ID keys the server-side feedback store
// and the error registry; it carries no user identity.
const (
	sessionCookieName   = "prose_session"
	sessionCookieMaxAge = 24 * 60 * 60 // matches SessionTTL
)

// shouldSecureCookie reports whether cookies should carry the Secure flag.
// True behind TLS or a terminating proxy; FORCE_SECURE_COOKIES overrides.
func shouldSecureCookie(r *http.Request) bool {
	if os.Getenv("FORCE_SECURE_COOKIES") == "true" {
		return true
	}
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// ensureSession returns the request's session ID, minting and setting a new
// one when the cookie is absent or empty.
func ensureSession(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := uuid.NewString()
	setSessionCookie(w, r, id)
	return id
}

// sessionIDFromRequest reads the session cookie without minting one. Used by
// the JSON API, where the caller supplies its own session_id.
func sessionIDFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
