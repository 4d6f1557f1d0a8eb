package util

import (
	"net/url"
	"strings"
)

// IsRedirectSafe reports whether the login page may redirect to target after
// sign-in: "" (default page), a local path, or an http(s) URL on base's host.
func IsRedirectSafe(target, base string) bool {
	switch {
	case target == "":
		return true
	case strings.ContainsAny(target, "\r\n\\"):
		return false
	case strings.HasPrefix(target, "//"):
		return false
	case strings.HasPrefix(target, "/"):
		return true
	}

	u, ok := parseHTTPURL(target)
	if !ok {
		return false
	}
	if u.Host == "" {
		return true
	}
	b, err := url.Parse(base)
	return err == nil && u.Host == b.Host
}

// IsValidCallbackURL reports whether u is an absolute http(s) URL that an
// OAuth consumer may be redirected to after authorization.
func IsValidCallbackURL(u string) bool {
	parsed, ok := parseHTTPURL(u)
	return ok && parsed.IsAbs() && parsed.Host != ""
}

// parseHTTPURL parses raw and rejects header injection and schemes other
// than http and https. A relative reference is accepted.
func parseHTTPURL(raw string) (*url.URL, bool) {
	if raw == "" || strings.ContainsAny(raw, "\r\n") {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	switch u.Scheme {
	case "", "http", "https":
		return u, true
	default:
		return nil, false
	}
}
