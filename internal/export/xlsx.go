// Package export renders screening results into downloadable artifacts.
// Export is a pure local transformation; it never touches the network and
// refuses to produce an artifact from an empty result set.
package export

import (
	"fmt"
	"io"

	"resumerank/internal/errors"
	"resumerank/internal/types"

	"github.com/xuri/excelize/v2"
)

// rankingColumns is the fixed column order of the rankings sheet
var rankingColumns = []string{
	"Name",
	"Summary",
	"Score",
	"Rationale",
	"Essential Skills Match",
	"Relevant Experience",
	"Required Qualifications",
	"Keyword Presence",
	"Recommendation",
}

const rankingSheet = "Rankings"

// WriteRankingsXLSX writes ranking results as a spreadsheet, one row per
// result in the order given. An empty result set is refused.
func WriteRankingsXLSX(w io.Writer, results types.RankResumesOutput) error {
	if len(results) == 0 {
		return errors.NewValidationError(errors.ErrCodeEmptyResultSet,
			"No ranking results to export", nil)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(rankingSheet)
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeInvalidFormat,
			"Failed to create rankings sheet", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.NewInternalError(errors.ErrCodeInvalidFormat,
			"Failed to remove default sheet", err)
	}

	for col, header := range rankingColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(rankingSheet, cell, header); err != nil {
			return errors.NewInternalError(errors.ErrCodeInvalidFormat,
				"Failed to write sheet header", err)
		}
	}

	for i, result := range results {
		row := []any{
			result.Name,
			result.Summary,
			result.Score,
			result.Rationale,
			result.Breakdown.EssentialSkillsMatch,
			result.Breakdown.RelevantExperience,
			result.Breakdown.RequiredQualifications,
			result.Breakdown.KeywordPresence,
			result.Recommendation,
		}
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(rankingSheet, cell, value); err != nil {
				return errors.NewInternalError(errors.ErrCodeInvalidFormat,
					fmt.Sprintf("Failed to write result row %d", i+1), err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return errors.NewIOError(errors.ErrCodeFileNotReadable,
			"Failed to write spreadsheet", err)
	}
	return nil
}
