// Package hostname turns user-typed URLs into hostnames suitable for a hosts file.
package hostname

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

var (
	// ErrInvalidHostname is returned for input that is not a usable hostname.
	ErrInvalidHostname = errors.New("invalid hostname")
	// ErrProtectedHostname is returned for loopback names that must never be redirected.
	ErrProtectedHostname = errors.New("hostname is protected")
)

// domainRegex validates dotted hostnames made of RFC 1123 labels.
var domainRegex = regexp.MustCompile(`^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

// schemeRegex matches the scheme and the first www. label.
var schemeRegex = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?`)

// protectedHosts resolve the local machine and must keep working.
var protectedHosts = map[string]bool{
	"localhost":             true,
	"localhost.localdomain": true,
	"broadcasthost":         true,
	"ip6-localhost":         true,
	"ip6-loopback":          true,
	"local":                 true,
}

// Parse normalizes raw and checks the result can be written to a hosts file.
func Parse(raw string) (string, error) {
	host, err := Normalize(raw)
	if err != nil {
		return "", err
	}
	if IsProtected(host) {
		return "", fmt.Errorf("%w: %s", ErrProtectedHostname, host)
	}
	if !Validate(host) {
		return "", fmt.Errorf("%w: %q", ErrInvalidHostname, host)
	}
	return host, nil
}

// Normalize strips the scheme, a leading www., userinfo, port, path, query
// and fragment from raw, converts IDN labels to punycode and lower-cases
// the result. It does not validate label syntax.
func Normalize(raw string) (string, error) {
	host := schemeRegex.ReplaceAllString(strings.TrimSpace(raw), "")

	if i := strings.IndexAny(host, "/?#"); i != -1 {
		host = host[:i]
	}
	if at := strings.LastIndexByte(host, '@'); at != -1 {
		// "user@www.example.com" only loses its www. after userinfo is gone.
		host = strings.TrimPrefix(host[at+1:], "www.")
	}
	if strings.Contains(host, ":") {
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
	}
	host = strings.TrimSuffix(host, ".")

	if host == "" {
		return "", fmt.Errorf("%w: empty host in %q", ErrInvalidHostname, raw)
	}
	if net.ParseIP(host) != nil {
		return "", fmt.Errorf("%w: %s is an IP address", ErrInvalidHostname, host)
	}

	if isASCII(host) {
		return strings.ToLower(host), nil
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("%w: idna: %v", ErrInvalidHostname, err)
	}
	return strings.ToLower(ascii), nil
}

// Validate reports whether host is a syntactically valid, lower-case,
// multi-label hostname no longer than 253 characters.
func Validate(host string) bool {
	if host == "" || len(host) > 253 {
		return false
	}
	return domainRegex.MatchString(host)
}

// IsProtected reports whether host is a loopback name the tool refuses to block.
func IsProtected(host string) bool {
	host = strings.ToLower(host)
	if protectedHosts[host] {
		return true
	}
	return strings.HasSuffix(host, ".localhost")
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
