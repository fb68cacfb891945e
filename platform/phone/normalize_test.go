package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"8 (917) 123-45-67", "+79171234567"},
		{"+7 917 123 45 67", "+79171234567"},
		{"  +79171234567  ", "+79171234567"},
		// Unparseable or invalid input passes through trimmed.
		{"not a number", "not a number"},
		{" 123 ", "123"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeE164(tc.in); got != tc.want {
			t.Fatalf("NormalizeE164(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
