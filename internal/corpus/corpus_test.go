package corpus

import (
	"strings"
	"testing"
)

func TestSplitSingleResume(t *testing.T) {
	resumes := Split("Jane Doe\nSoftware Engineer\n5 years of Go experience.")
	if len(resumes) != 1 {
		t.Fatalf("expected 1 resume, got %d", len(resumes))
	}
}

func TestSplitMultipleResumes(t *testing.T) {
	blob := "Jane Doe\nEngineer\n\n\nJohn Smith\nAnalyst\n\n\n\nSam Lee\nDesigner"
	resumes := Split(blob)
	if len(resumes) != 3 {
		t.Fatalf("expected 3 resumes, got %d: %q", len(resumes), resumes)
	}
	if !strings.HasPrefix(resumes[0], "Jane Doe") {
		t.Errorf("first resume wrong: %q", resumes[0])
	}
	if !strings.HasPrefix(resumes[2], "Sam Lee") {
		t.Errorf("third resume wrong: %q", resumes[2])
	}
}

func TestSplitSingleBlankLineDoesNotSeparate(t *testing.T) {
	// One blank line is normal paragraph spacing inside a resume, not a
	// resume boundary.
	blob := "Jane Doe\n\nExperience:\n- Go, 5 years"
	resumes := Split(blob)
	if len(resumes) != 1 {
		t.Fatalf("expected 1 resume, got %d: %q", len(resumes), resumes)
	}
}

func TestSplitWhitespaceOnlyBlankLines(t *testing.T) {
	blob := "Jane Doe\n  \t\n \nJohn Smith"
	resumes := Split(blob)
	if len(resumes) != 2 {
		t.Fatalf("expected 2 resumes, got %d: %q", len(resumes), resumes)
	}
}

func TestSplitCRLF(t *testing.T) {
	blob := "Jane Doe\r\n\r\n\r\nJohn Smith"
	resumes := Split(blob)
	if len(resumes) != 2 {
		t.Fatalf("expected 2 resumes, got %d: %q", len(resumes), resumes)
	}
}

func TestSplitLeadingAndTrailingDelimiters(t *testing.T) {
	blob := "\n\n\nJane Doe\n\n\n"
	resumes := Split(blob)
	if len(resumes) != 1 {
		t.Fatalf("expected 1 resume, got %d: %q", len(resumes), resumes)
	}
	if resumes[0] != "Jane Doe" {
		t.Errorf("expected trimmed resume, got %q", resumes[0])
	}
}

func TestSplitEmptyCorpus(t *testing.T) {
	for _, blob := range []string{"", "   ", "\n\n\n", "\t \n"} {
		if got := Split(blob); got != nil {
			t.Errorf("Split(%q) = %q, expected nil", blob, got)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"", false},
		{"   \n\t", false},
		{"a", true},
		{"  resume text  ", true},
	}

	for _, tt := range tests {
		if got := Valid(tt.text); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestJoinRoundTrip(t *testing.T) {
	resumes := []string{"Jane Doe\nEngineer", "John Smith\nAnalyst"}
	got := Split(Join(resumes))
	if len(got) != len(resumes) {
		t.Fatalf("round trip lost resumes: %q", got)
	}
	for i := range resumes {
		if got[i] != resumes[i] {
			t.Errorf("resume %d: got %q, want %q", i, got[i], resumes[i])
		}
	}
}

func TestJoinDropsEmptyEntries(t *testing.T) {
	if got := Join([]string{"Jane", "", "  "}); got != "Jane" {
		t.Errorf("Join = %q, want %q", got, "Jane")
	}
}
