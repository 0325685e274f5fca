package promptstyle

import (
	"strings"
	"testing"
)

func TestApplySystemIsIdempotent(t *testing.T) {
	once := ApplySystem("Write a quote.", ModeJSON)
	if !strings.Contains(once, "single JSON object") {
		t.Fatalf("json guidance missing: %q", once)
	}
	if twice := ApplySystem(once, ModeJSON); twice != once {
		t.Fatalf("expected unchanged prompt on second application")
	}
	if got := ApplySystem("   ", ModeText); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestApplySystemModes(t *testing.T) {
	cases := []struct {
		mode    Mode
		want    string
		notWant string
	}{
		{ModeText, "concise and structured", "plain text only"},
		{ModePlain, "plain text only", "JSON object"},
		{ModeJSON, "single JSON object", "plain text only"},
	}
	for _, tc := range cases {
		got := ApplySystem("Write it.", tc.mode)
		if !strings.Contains(got, tc.want) || strings.Contains(got, tc.notWant) {
			t.Fatalf("mode %q: %q", tc.mode, got)
		}
		if !strings.HasSuffix(got, "---\nWrite it.") {
			t.Fatalf("mode %q: base prompt not last: %q", tc.mode, got)
		}
	}
}
