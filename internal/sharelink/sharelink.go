// Package sharelink builds and parses the links handed to secret recipients.
package sharelink

import (
	"net/url"
	"regexp"
	"strings"
)

// RevealPath is the path prefix under which a secret is revealed.
const RevealPath = "/visualizar/"

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// BuildURL returns the share link for pwdID under the given public base URL.
func BuildURL(base, pwdID string) string {
	return strings.TrimRight(base, "/") + Path(pwdID)
}

// Path returns the reveal path for pwdID.
func Path(pwdID string) string {
	return RevealPath + url.PathEscape(pwdID)
}

// ExtractToken accepts either a bare token or a full share URL and returns the
// token. The last non-empty path segment is taken; it must be URL-safe base64.
func ExtractToken(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}

	path := input
	if u, err := url.Parse(input); err == nil && u.Scheme != "" && u.Host != "" {
		path = u.Path
	}

	token := lastSegment(path)
	if token == "" || !tokenPattern.MatchString(token) {
		return "", false
	}
	return token, true
}

func lastSegment(path string) string {
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
