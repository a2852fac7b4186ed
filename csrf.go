package main

import (
	"log/slog"
	"os"
	"sync"

	"prose-server/internal/auth"
)

var (
	csrfManager     *auth.CSRFManager
	csrfManagerOnce sync.Once
)

// getCSRFManager returns the process-wide CSRF manager. The secret comes from
// CSRF_SECRET; without one a random secret is generated, which invalidates
// outstanding tokens on restart.
func getCSRFManager() *auth.CSRFManager {
	csrfManagerOnce.Do(func() {
		if secret := os.Getenv("CSRF_SECRET"); secret != "" {
			csrfManager = auth.NewCSRFManager([]byte(secret))
			return
		}
		m, err := auth.NewCSRFManagerWithRandomSecret()
		if err != nil {
			panic("failed to generate CSRF secret: " + err.Error())
		}
		slog.Debug("CSRF_SECRET not set, using random secret")
		csrfManager = m
	})
	return csrfManager
}

// generateCSRFToken creates a signed token bound to the session ID.
func generateCSRFToken(sessionID string) string {
	return getCSRFManager().GenerateToken(sessionID)
}

// validateCSRFToken checks a submitted token against the session ID.
func validateCSRFToken(sessionID, token string) bool {
	return getCSRFManager().ValidateToken(sessionID, token)
}
