package session

import (
	"crypto/sha256"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mr-tron/base58"
)

// RoleAdmin is the role claim value granted to administrators.
const RoleAdmin = "ROLE_ADMIN"

// RoleUser is the role requested for self-registered accounts.
const RoleUser = "ROLE_USER"

// authResponse is the normalized result of a login or registration call.
type authResponse struct {
	Token     string
	CreatedAt string
	// Structured is false when the body was taken verbatim as the token.
	Structured bool
}

// normalizeAuthResponse accepts either a JSON object carrying a token or a
// bare token. Anything that is not an object with a string token is taken
// verbatim as the token, with no creation time.
func normalizeAuthResponse(body []byte) authResponse {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err == nil {
		if raw, ok := obj["token"]; ok {
			var token string
			if err := json.Unmarshal(raw, &token); err == nil {
				resp := authResponse{Token: token, Structured: true}
				if rawCreated, ok := obj["createdAt"]; ok {
					var createdAt string
					if err := json.Unmarshal(rawCreated, &createdAt); err == nil {
						resp.CreatedAt = createdAt
					}
				}
				return resp
			}
		}
	}

	return authResponse{Token: string(body)}
}

// extractRole reads the role claim from the token payload. The signature is
// not verified: the value is an untrusted hint for navigation only, the
// server re-validates every protected call.
func extractRole(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}

	role, ok := claims["role"].(string)
	if !ok {
		return ""
	}

	return role
}

// Fingerprint returns a short, non-reversible identifier for a token, safe to
// print and log.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return base58.Encode(sum[:8])
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// parseCreatedAt parses the password creation timestamp. Timestamps without
// a zone are taken as UTC.
func parseCreatedAt(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
