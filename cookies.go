package main

import "net/http"

// Every cookie this server issues is HttpOnly. There is no client-side
// script, so nothing ever needs to read one.

// setCookie writes a cookie with the server's defaults: site-wide path,
// Secure following the request scheme (shouldSecureCookie).
func setCookie(w http.ResponseWriter, r *http.Request, name, value string, maxAge int, sameSite http.SameSite) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   shouldSecureCookie(r),
		SameSite: sameSite,
	})
}

// setSessionCookie issues the feedback session cookie. SameSite is strict:
// the session must never ride along on a cross-site form post, or binding
// CSRF tokens to it would not mean anything.
func setSessionCookie(w http.ResponseWriter, r *http.Request, id string) {
	setCookie(w, r, sessionCookieName, id, sessionCookieMaxAge, http.SameSiteStrictMode)
}

// clearCookie expires a cookie immediately.
func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
