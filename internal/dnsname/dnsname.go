// Package dnsname holds the input validation helpers used by the bot flows.
// All functions are pure.
package dnsname

import (
	"regexp"
	"strings"
)

var (
	ipv4Regex   = regexp.MustCompile(`^(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`)
	domainRegex = regexp.MustCompile(`^(\*\.)?([a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,6}$`)
)

// IsValidIPv4 reports whether s is four dot-separated decimal octets in [0,255].
func IsValidIPv4(s string) bool {
	return ipv4Regex.MatchString(s)
}

// IsValidDomain reports whether s is a domain name, optionally prefixed with
// a "*." wildcard label. Labels are alphanumeric-and-hyphen, 1-63 characters,
// and may not start or end with a hyphen; the TLD is 2-6 letters.
func IsValidDomain(s string) bool {
	return domainRegex.MatchString(s)
}

// ParentDomain strips the leftmost label when s has more than two labels.
// "a.b.example.com" becomes "b.example.com"; "example.com" is returned as is.
func ParentDomain(s string) string {
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return strings.Join(parts[1:], ".")
	}
	return s
}
