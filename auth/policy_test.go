package auth

import "testing"

func TestDomainPolicy(t *testing.T) {
	policy := DomainPolicy("crestofthewave.org")

	cases := []struct {
		email string
		want  string
	}{
		{"jim@crestofthewave.org", "staff"},
		{"JIM@CrestOfTheWave.ORG", "staff"},
		{"jane@example.com", "visitor"},
		{"crestofthewave.org@example.com", "visitor"},
		{"", "visitor"},
	}
	for _, tc := range cases {
		if got := policy(tc.email); got != tc.want {
			t.Errorf("policy(%q) = %q, want %q", tc.email, got, tc.want)
		}
	}
}

func TestDomainPolicyUnset(t *testing.T) {
	policy := DomainPolicy("")
	if got := policy("anyone@anywhere.org"); got != "visitor" {
		t.Errorf("empty domain must never grant staff, got %q", got)
	}
}
