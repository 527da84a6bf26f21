package cli

import (
	"context"
	"fmt"
	"os"

	"resumerank/internal/ai"
	"resumerank/internal/common"
	"resumerank/internal/corpus"
	"resumerank/internal/export"
	"resumerank/internal/types"

	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank [job-description-file] [resume-file...]",
	Short: "Rank resumes against a job description",
	Long: `Rank a set of resumes against a job description. Each resume gets
a 0-100 score with a weighted breakdown, a rationale and a recommendation,
sorted from best to worst match.

The first argument is the job description file. Every following argument is
a resume file; a file may hold several resumes separated by blank lines and
each one is ranked individually.

Use --export-xlsx to additionally write the ranking as a spreadsheet.`,
	Args: cobra.MinimumNArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if rankConfig.OutputFormat == "" {
			rankConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(rankConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runRank,
}

var rankConfig common.CommandConfig
var rankXLSXFile string

func init() {
	rankCmd.Flags().StringVarP(&rankConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	rankCmd.Flags().StringVar(&rankConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	rankCmd.Flags().StringVar(&rankXLSXFile, "export-xlsx", "", "Also write the ranking as an xlsx workbook to this path")

	// Add completion for format flag
	_ = rankCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runRank(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Create AI service for rank operation
	rankAIConfig := cfg.GetRankConfig()
	aiService, err := ai.NewService(&rankAIConfig, "rank", cfg.App.MinJobDescriptionChars, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	createInput := func(contents []string) (types.RankResumesInput, error) {
		if len(contents) < 2 {
			return types.RankResumesInput{}, fmt.Errorf("expected at least 2 file paths, got %d", len(contents))
		}

		// Every resume file may be a corpus with blank-line separators
		var resumes []string
		for _, content := range contents[1:] {
			resumes = append(resumes, corpus.Split(content)...)
		}
		if len(resumes) == 0 {
			return types.RankResumesInput{}, fmt.Errorf("no resumes found in the given files")
		}

		return types.RankResumesInput{
			JobDescription: contents[0],
			Resumes:        resumes,
		}, nil
	}

	logDetails := func(input types.RankResumesInput, cfg common.CommandConfig) {
		logger.Info("Starting resume ranking",
			"job_chars", len(input.JobDescription),
			"resume_count", len(input.Resumes),
			"output_format", cfg.OutputFormat)
	}

	rankOperation := func(ctx context.Context, input types.RankResumesInput) (types.RankResumesOutput, *ai.TokenUsage, error) {
		return aiService.RankResumes(ctx, input)
	}

	result, err := common.RunAICommand(
		cmd.Context(),
		logger,
		rankConfig,
		args,
		createInput,
		rankOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to rank resumes: %w", err)
	}

	if rankXLSXFile != "" {
		if err := writeRankingsXLSXFile(rankXLSXFile, result); err != nil {
			return err
		}
		logger.Info("Ranking exported", "file", rankXLSXFile)
	}

	logger.Info("Resume ranking completed successfully",
		"ranked_count", len(result))
	return nil
}

func writeRankingsXLSXFile(path string, results types.RankResumesOutput) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create xlsx file: %w", err)
	}
	defer f.Close()

	if err := export.WriteRankingsXLSX(f, results); err != nil {
		return fmt.Errorf("failed to export ranking as xlsx: %w", err)
	}
	return nil
}
