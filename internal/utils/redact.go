package utils

import "net/url"

// RedactURI hides the password of a connection string so it can be logged.
// Strings that do not parse as URLs are not echoed at all.
func RedactURI(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Opaque != "" {
		return "<unparseable>"
	}
	return u.Redacted()
}
