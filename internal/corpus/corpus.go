// Package corpus handles the combined resume text blob submitted for
// ranking. Multiple resumes travel as one string separated by blank-line
// runs; this package owns the delimiter convention and the validity rule.
package corpus

import (
	"regexp"
	"strings"
)

// Resumes are separated by two or more consecutive blank lines. A line
// containing only spaces or tabs still counts as blank, and CRLF input is
// accepted.
var delimiter = regexp.MustCompile(`\r?\n[ \t]*\r?\n(?:[ \t]*\r?\n)+`)

// Valid reports whether a text blob carries usable content: non-empty after
// trimming.
func Valid(text string) bool {
	return strings.TrimSpace(text) != ""
}

// Split breaks a resume corpus into individual resume strings. Segments that
// are empty after trimming are dropped, so stray delimiter runs at the start
// or end of the blob do not produce phantom resumes. An invalid corpus
// yields nil.
func Split(text string) []string {
	if !Valid(text) {
		return nil
	}

	var resumes []string
	for _, segment := range delimiter.Split(text, -1) {
		segment = strings.TrimSpace(segment)
		if segment != "" {
			resumes = append(resumes, segment)
		}
	}
	return resumes
}

// Join combines individual resumes back into a single corpus using the
// canonical delimiter (two blank lines).
func Join(resumes []string) string {
	trimmed := make([]string, 0, len(resumes))
	for _, r := range resumes {
		r = strings.TrimSpace(r)
		if r != "" {
			trimmed = append(trimmed, r)
		}
	}
	return strings.Join(trimmed, "\n\n\n")
}
