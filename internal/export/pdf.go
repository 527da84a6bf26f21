package export

import (
	"fmt"
	"io"

	"resumerank/internal/errors"
	"resumerank/internal/types"

	"github.com/go-pdf/fpdf"
)

// WriteQuestionsPDF writes interview questions and model answers as a PDF,
// one numbered block per pair with automatic pagination. An empty set is
// refused.
func WriteQuestionsPDF(w io.Writer, title string, qna []types.QnAPair) error {
	if len(qna) == 0 {
		return errors.NewValidationError(errors.ErrCodeEmptyResultSet,
			"No interview questions to export", nil)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	if title == "" {
		title = "Interview Questions"
	}
	pdf.MultiCell(0, 8, title, "", "L", false)
	pdf.Ln(4)

	for i, pair := range qna {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("%d. %s", i+1, pair.Question), "", "L", false)
		pdf.Ln(1)

		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, pair.Answer, "", "L", false)
		pdf.Ln(4)
	}

	if err := pdf.Output(w); err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotReadable,
			"Failed to write PDF", err)
	}
	return nil
}
