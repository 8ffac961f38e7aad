package app

import "testing"

func TestBuildVersion(t *testing.T) {
	t.Parallel()

	none := func() (string, bool) { return "", false }
	stamped := func() (string, bool) { return "0123456789ab", false }
	dirty := func() (string, bool) { return "0123456789ab", true }

	tests := []struct {
		name     string
		version  string
		commit   string
		revision func() (string, bool)
		want     string
	}{
		{"no revision", "dev", "", none, "dev"},
		{"ldflags commit wins", "1.2.0", "abc123", stamped, "1.2.0+abc123"},
		{"long ldflags commit is shortened", "1.2.0", "0123456789abcdef0123", none, "1.2.0+0123456789ab"},
		{"vcs revision", "dev", "", stamped, "dev+0123456789ab"},
		{"dirty tree", "dev", "", dirty, "dev+0123456789ab-dirty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := buildVersion(tt.version, tt.commit, tt.revision); got != tt.want {
				t.Errorf("buildVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}
