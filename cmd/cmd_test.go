package cmd

import "testing"

func TestTruncate(t *testing.T) {
	if got := truncate("gemini-2.5-flash", 6); got != "gemini" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}

func TestFormatCost(t *testing.T) {
	for _, tt := range []struct {
		usd  float64
		want string
	}{
		{0.0042, "$0.0042"},
		{1.5, "$1.50"},
		{0, "$0.0000"},
	} {
		if got := formatCost(tt.usd); got != tt.want {
			t.Errorf("formatCost(%v) = %q, want %q", tt.usd, got, tt.want)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"serve", "import", "grade", "attempts", "llm", "version"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
			}
		}
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}
