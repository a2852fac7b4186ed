// Package auth signs the CSRF tokens embedded in every mutating form.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CSRFTokenMaxAge bounds how long a rendered form stays submittable.
const CSRFTokenMaxAge = 30 * time.Minute

// CSRFManager mints and checks tokens of the form "unixts.signature", the
// signature being an HMAC-SHA256 over the session ID and the timestamp.
// Tokens are stateless: nothing is stored server-side, and replay within the
// age window is accepted.
type CSRFManager struct {
	secret []byte
}

// NewCSRFManager builds a manager around a configured secret.
func NewCSRFManager(secret []byte) *CSRFManager {
	return &CSRFManager{secret: secret}
}

// NewCSRFManagerWithRandomSecret is for deployments without a configured
// secret. Outstanding tokens do not survive a restart.
func NewCSRFManagerWithRandomSecret() (*CSRFManager, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate CSRF secret: %w", err)
	}
	return &CSRFManager{secret: secret}, nil
}

// GenerateToken mints a token bound to the session ID and the current time.
func (m *CSRFManager) GenerateToken(sessionID string) string {
	ts := time.Now().Unix()
	return fmt.Sprintf("%d.%s", ts, m.sign(sessionID, ts))
}

// ValidateToken accepts a token only if it parses, is younger than
// CSRFTokenMaxAge and carries this session's signature.
func (m *CSRFManager) ValidateToken(sessionID string, token string) bool {
	tsPart, signature, ok := strings.Cut(token, ".")
	if !ok {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil {
		return false
	}
	if time.Since(time.Unix(ts, 0)) > CSRFTokenMaxAge {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(m.sign(sessionID, ts)))
}

func (m *CSRFManager) sign(sessionID string, ts int64) string {
	mac := hmac.New(sha256.New, m.secret)
	fmt.Fprintf(mac, "%s.%d", sessionID, ts)
	return base64.URLEncoding.EncodeToString(mac.Sum(nil))
}
