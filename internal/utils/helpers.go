package utils

import "net/url"

// MakeMap creates and returns a map[string]string containing a single key-value pair.
func MakeMap(key, value string) map[string]string {
	return map[string]string{key: value}
}

// SafeURL renders u without user info, query or fragment, for use as a
// metric label or a Sentry tag.
func SafeURL(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}

// SafeURLString is SafeURL for an unparsed URL. Unparseable input is
// replaced rather than echoed.
func SafeURLString(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid-url"
	}
	return SafeURL(u)
}
