package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalURL trims whitespace and drops the fragment so equivalent links
// share one record. Query parameters are kept because share links carry
// access tokens in them. Unparseable input is returned trimmed.
func CanonicalURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
