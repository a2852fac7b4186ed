package main

import (
	"net/http"
	"net/url"
)

// Flash cookies carry one post-redirect message each. A minute of lifetime
// covers the redirect; getFlashMessages deletes them on first read anyway.
const (
	flashSuccessCookie = "flash_success"
	flashErrorCookie   = "flash_error"
	flashCookieMaxAge  = 60
)

func setFlashSuccess(w http.ResponseWriter, r *http.Request, message string) {
	setCookie(w, r, flashSuccessCookie, url.QueryEscape(message), flashCookieMaxAge, http.SameSiteLaxMode)
}

func setFlashError(w http.ResponseWriter, r *http.Request, message string) {
	setCookie(w, r, flashErrorCookie, url.QueryEscape(message), flashCookieMaxAge, http.SameSiteLaxMode)
}

// FlashMessages holds the messages read from flash cookies.
type FlashMessages struct {
	Success string
	Error   string
}

// getFlashMessages reads and clears both flash cookies. Call once per page
// render, before the shell is written.
func getFlashMessages(w http.ResponseWriter, r *http.Request) FlashMessages {
	var messages FlashMessages

	if cookie, err := r.Cookie(flashSuccessCookie); err == nil {
		if decoded, err := url.QueryUnescape(cookie.Value); err == nil {
			messages.Success = decoded
		}
		clearCookie(w, flashSuccessCookie)
	}

	if cookie, err := r.Cookie(flashErrorCookie); err == nil {
		if decoded, err := url.QueryUnescape(cookie.Value); err == nil {
			messages.Error = decoded
		}
		clearCookie(w, flashErrorCookie)
	}

	return messages
}

// redirectWithSuccess sets a success flash and redirects.
func redirectWithSuccess(w http.ResponseWriter, r *http.Request, url string, message string) {
	setFlashSuccess(w, r, message)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// redirectWithError sets an error flash and redirects.
func redirectWithError(w http.ResponseWriter, r *http.Request, url string, message string) {
	setFlashError(w, r, message)
	http.Redirect(w, r, url, http.StatusSeeOther)
}
