package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// MaskSecret hides a credential, keeping just enough of it to recognize
// which one is configured.
func MaskSecret(secret string) string {
	if secret == "" {
		return "--- EMPTY ---"
	}
	if len(secret) <= 8 {
		return fmt.Sprintf("*** MASKED (short: %d chars) ***", len(secret))
	}
	return secret[:4] + "***MASKED***" + secret[len(secret)-2:]
}

// MaskURL strips query parameters from a URL. Apps Script style exec URLs
// carry deployment tokens in the path, so the path is shortened too.
func MaskURL(raw string) string {
	if raw == "" {
		return "--- EMPTY ---"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "*** UNPARSEABLE URL ***"
	}
	u.RawQuery = ""
	if segs := strings.Split(strings.Trim(u.Path, "/"), "/"); len(segs) > 2 {
		u.Path = "/" + strings.Join(segs[:2], "/") + "/***"
	}
	return u.String()
}
