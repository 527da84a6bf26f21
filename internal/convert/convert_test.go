package convert

import (
	"log/slog"
	"strings"
	"testing"

	rankErrors "resumerank/internal/errors"
)

func testConverter() *Converter {
	return NewConverter(1024, rankErrors.NewLogger(slog.LevelError))
}

func TestConvertPlainText(t *testing.T) {
	c := testConverter()

	text, err := c.File("resume.txt", strings.NewReader("  Jane Doe\nEngineer  "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Jane Doe\nEngineer" {
		t.Errorf("text = %q", text)
	}
}

func TestConvertRejectsUnsupportedExtension(t *testing.T) {
	c := testConverter()

	for _, name := range []string{"malware.exe", "archive.zip", "noextension"} {
		_, err := c.File(name, strings.NewReader("content"))
		if err == nil {
			t.Errorf("%s: expected rejection", name)
			continue
		}
		appErr, ok := err.(*rankErrors.AppError)
		if !ok {
			t.Errorf("%s: expected AppError, got %T", name, err)
			continue
		}
		if appErr.Code != rankErrors.ErrCodeInvalidFileType {
			t.Errorf("%s: code = %s", name, appErr.Code)
		}
	}
}

func TestConvertExtensionCaseInsensitive(t *testing.T) {
	c := testConverter()

	if _, err := c.File("RESUME.TXT", strings.NewReader("Jane Doe")); err != nil {
		t.Errorf("uppercase extension rejected: %v", err)
	}
}

func TestConvertRejectsOversizedFile(t *testing.T) {
	c := testConverter() // 1KB limit

	_, err := c.File("big.txt", strings.NewReader(strings.Repeat("a", 2048)))
	if err == nil {
		t.Fatal("expected size limit error")
	}
}

func TestConvertRejectsEmptyDocument(t *testing.T) {
	c := testConverter()

	_, err := c.File("empty.txt", strings.NewReader("   \n\t  "))
	if err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestBatchIsolatesFailures(t *testing.T) {
	c := testConverter()

	results := c.Batch([]NamedReader{
		{Filename: "good.txt", Reader: strings.NewReader("Jane Doe")},
		{Filename: "bad.exe", Reader: strings.NewReader("binary")},
		{Filename: "also-good.txt", Reader: strings.NewReader("John Smith")},
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Text != "Jane Doe" || results[0].Error != "" {
		t.Errorf("first result wrong: %+v", results[0])
	}
	if results[1].Error == "" || results[1].Text != "" {
		t.Errorf("rejected file should carry an error and no text: %+v", results[1])
	}
	if results[2].Text != "John Smith" {
		t.Errorf("failure leaked into later file: %+v", results[2])
	}
}
