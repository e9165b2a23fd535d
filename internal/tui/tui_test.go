package tui

import "testing"

func TestTruncateRunes(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "hell…"},
		{"héllo wörld", 5, "héll…"},
		{"hello", 1, "h"},
		{"hello", 0, ""},
		{"", 5, ""},
	}
	for _, tc := range cases {
		if got := truncateRunes(tc.in, tc.max); got != tc.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(5, 0, 10); got != 5 {
		t.Fatalf("clamp in range = %d", got)
	}
	if got := clamp(-1, 0, 10); got != 0 {
		t.Fatalf("clamp below = %d", got)
	}
	if got := clamp(11, 0, 10); got != 10 {
		t.Fatalf("clamp above = %d", got)
	}
}

func TestResolveThemeNames(t *testing.T) {
	t.Setenv("TALINO_NO_COLOR", "")
	cases := map[string]ThemeName{
		"midnight":  ThemeMidnight,
		"porcelain": ThemePorcelain,
		"system":    ThemePorcelain,
		"unknown":   ThemePorcelain,
	}
	for name, want := range cases {
		if got := ResolveTheme(name).Name; got != want {
			t.Errorf("ResolveTheme(%q).Name = %q, want %q", name, got, want)
		}
	}
}

func TestResolveThemeNoColorOverride(t *testing.T) {
	t.Setenv("TALINO_NO_COLOR", "1")
	if got := ResolveTheme("midnight").Name; got != "no-color" {
		t.Fatalf("no-color override ignored, got %q", got)
	}
}
