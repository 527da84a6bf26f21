package cli

import (
	"context"
	"fmt"

	"resumerank/internal/ai"
	"resumerank/internal/common"
	"resumerank/internal/types"

	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [resume-file]",
	Short: "Summarize a resume",
	Long: `Summarize a resume into a concise overview of the candidate's
skills, experience and qualifications. The command takes one argument:
the path to the resume file in plain text format. Use the convert
command first for PDF or DOCX resumes.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if summarizeConfig.OutputFormat == "" {
			summarizeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(summarizeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runSummarize,
}

var summarizeConfig common.CommandConfig

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	summarizeCmd.Flags().StringVar(&summarizeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = summarizeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Create AI service for summarize operation
	summarizeAIConfig := cfg.GetSummarizeConfig()
	aiService, err := ai.NewService(&summarizeAIConfig, "summarize", cfg.App.MinJobDescriptionChars, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	createInput := func(contents []string) (types.SummarizeResumeInput, error) {
		if len(contents) != 1 {
			return types.SummarizeResumeInput{}, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		return types.SummarizeResumeInput{
			ResumeText: contents[0],
		}, nil
	}

	logDetails := func(input types.SummarizeResumeInput, cfg common.CommandConfig) {
		logger.Info("Starting resume summarization",
			"resume_chars", len(input.ResumeText),
			"output_format", cfg.OutputFormat)
	}

	summarizeOperation := func(ctx context.Context, input types.SummarizeResumeInput) (types.SummarizeResumeOutput, *ai.TokenUsage, error) {
		return aiService.SummarizeResume(ctx, input)
	}

	_, err = common.RunAICommand(
		cmd.Context(),
		logger,
		summarizeConfig,
		args,
		createInput,
		summarizeOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to summarize resume: %w", err)
	}
	logger.Info("Resume summarization completed successfully")
	return nil
}
