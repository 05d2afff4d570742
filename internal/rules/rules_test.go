package rules

import (
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	doc, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if doc.Title != "Campaign Rules" {
		t.Errorf("Title = %q", doc.Title)
	}
	if doc.Intro == "" {
		t.Error("Intro is empty")
	}
	if len(doc.Sections) < 5 {
		t.Fatalf("Sections = %d, want at least 5", len(doc.Sections))
	}

	for i, s := range doc.Sections {
		if s.Heading == "" {
			t.Errorf("section %d has no heading", i)
		}
		if strings.TrimSpace(s.Body) == "" {
			t.Errorf("section %q has no body", s.Heading)
		}
	}
}
