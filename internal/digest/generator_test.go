package digest

import (
	"strings"
	"testing"
)

func TestJoinPages_MarksPagesAndSkipsBlank(t *testing.T) {
	got := joinPages([]string{"first page", "  ", "third page"})

	if !strings.Contains(got, "[page 1]\nfirst page") {
		t.Errorf("Missing page 1 marker: %q", got)
	}
	if strings.Contains(got, "[page 2]") {
		t.Errorf("Blank page should be omitted: %q", got)
	}
	if !strings.Contains(got, "[page 3]\nthird page") {
		t.Errorf("Missing page 3 marker: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	g := NewGenerator(nil, "", 100)

	short := strings.Repeat("a", 50)
	if got := g.truncate(short); got != short {
		t.Errorf("Short text must pass through unchanged")
	}

	long := strings.Repeat("b", 500)
	if got := g.truncate(long); len(got) != 100 {
		t.Errorf("Expected 100 chars after truncation, got %d", len(got))
	}
}
