package core

import "testing"

func TestContainsFailureIdiom(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"bash: foo: command not found", true},
		{"cat: x: No such file or directory", true},
		{"mkdir: cannot create directory", true},
		{"Permission denied (publickey)", true},
		{"ERROR: something broke", true},
		{"Error loading config", true},
		{"total 48\ndrwxr-xr-x 2 root root", false},
		{"", false},
		{"all good here", false},
	}
	for _, tc := range cases {
		if got := containsFailureIdiom(tc.text); got != tc.want {
			t.Errorf("containsFailureIdiom(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}
