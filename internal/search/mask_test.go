package search

import "testing"

func TestMaskValue(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "***"},
		{"ab", "***"},
		{"abc", "***"},
		{"alice", "a***e"},
		{"john.doe@x.com", "j************m"},
	}
	for _, tc := range cases {
		if got := MaskValue(tc.in); got != tc.want {
			t.Errorf("MaskValue(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsPII(t *testing.T) {
	for _, attribute := range []string{"login", "email", "firstName", "lastName", "mobilePhone", "managerId"} {
		if !IsPII(attribute) {
			t.Errorf("expected %q to be PII", attribute)
		}
	}
	for _, attribute := range []string{"department", "title", "status"} {
		if IsPII(attribute) {
			t.Errorf("expected %q not to be PII", attribute)
		}
	}
}
