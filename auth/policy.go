package auth

import (
	"os"
	"strings"
)

// RolePolicy decides the role of an authenticated identity. Injected rather
// than hardcoded: a domain-suffix check is a policy decision, not a security
// boundary.
type RolePolicy func(email string) string

// DomainPolicy grants "staff" to addresses under the given domain and
// "visitor" to everyone else.
func DomainPolicy(domain string) RolePolicy {
	return func(email string) string {
		if domain != "" && strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(domain)) {
			return "staff"
		}
		return "visitor"
	}
}

// PolicyFromEnv builds the role policy from STAFF_EMAIL_DOMAIN.
func PolicyFromEnv() RolePolicy {
	return DomainPolicy(os.Getenv("STAFF_EMAIL_DOMAIN"))
}
