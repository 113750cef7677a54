package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	names[0] = "mutated"
	if ThemeNames()[0] != "Nightfox" {
		t.Fatalf("ThemeNames() exposes internal slice")
	}
}

func TestNextTheme(t *testing.T) {
	cases := map[string]string{
		"Nightfox": "Kanagawa",
		"Kanagawa": "Slate",
		"Slate":    "Nightfox",
		"Unknown":  "Nightfox",
	}
	for in, want := range cases {
		if got := NextTheme(in); got != want {
			t.Fatalf("NextTheme(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetTheme_FallsBack(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q", got)
	}
	if got := GetTheme("Unknown").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Nightfox (fallback)", got)
	}
}

func TestCategoryStyle_Stable(t *testing.T) {
	styles := GetTheme("Nightfox").Styles()
	a := styles.CategoryStyle("Wisdom").GetBackground()
	b := styles.CategoryStyle("Wisdom").GetBackground()
	if a != b {
		t.Fatalf("CategoryStyle not stable: %v vs %v", a, b)
	}
	if got := styles.CategoryStyle("").GetBackground(); got == nil {
		t.Fatalf("empty category should fall back to the muted color")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  hello world  ", 8); got != "hello..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Fatalf("truncate = %q", got)
	}
}

func TestKeyMap_HelpCoversEveryAction(t *testing.T) {
	keys := DefaultKeyMap()
	seen := map[string]bool{}
	for _, group := range keys.FullHelp() {
		for _, b := range group {
			seen[b.Help().Desc] = true
		}
	}
	for _, b := range []key.Binding{keys.NextQuote, keys.AddQuote, keys.SyncNow, keys.Conflicts, keys.Import, keys.Export} {
		if !seen[b.Help().Desc] {
			t.Fatalf("help overlay missing %q", b.Help().Desc)
		}
	}
	if len(keys.FullHelp()) != len(helpSectionTitles) {
		t.Fatalf("help sections = %d, titles = %d", len(keys.FullHelp()), len(helpSectionTitles))
	}
	if !strings.Contains(keys.Quit.Help().Key, "q") {
		t.Fatalf("quit help key = %q", keys.Quit.Help().Key)
	}
}
