package cli

import (
	"context"
	"fmt"
	"os"

	"resumerank/internal/ai"
	"resumerank/internal/common"
	"resumerank/internal/export"
	"resumerank/internal/types"

	"github.com/spf13/cobra"
)

var questionsCmd = &cobra.Command{
	Use:   "questions [job-description-file]",
	Short: "Generate interview questions for a job description",
	Long: `Generate up to ten interview questions, each with a model answer
describing what to listen for, from a job description. The command takes
one argument: the path to the job description file in plain text format.

Use --export-pdf to additionally write the questions as a printable PDF.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if questionsConfig.OutputFormat == "" {
			questionsConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(questionsConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runQuestions,
}

var questionsConfig common.CommandConfig
var questionsPDFFile string

func init() {
	questionsCmd.Flags().StringVarP(&questionsConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	questionsCmd.Flags().StringVar(&questionsConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	questionsCmd.Flags().StringVar(&questionsPDFFile, "export-pdf", "", "Also write the questions as a PDF to this path")

	// Add completion for format flag
	_ = questionsCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runQuestions(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Create AI service for questions operation
	questionsAIConfig := cfg.GetQuestionsConfig()
	aiService, err := ai.NewService(&questionsAIConfig, "questions", cfg.App.MinJobDescriptionChars, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	createInput := func(contents []string) (types.GenerateQnAInput, error) {
		if len(contents) != 1 {
			return types.GenerateQnAInput{}, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		return types.GenerateQnAInput{
			JobDescription: contents[0],
		}, nil
	}

	logDetails := func(input types.GenerateQnAInput, cfg common.CommandConfig) {
		logger.Info("Starting interview question generation",
			"job_chars", len(input.JobDescription),
			"output_format", cfg.OutputFormat)
	}

	questionsOperation := func(ctx context.Context, input types.GenerateQnAInput) (types.GenerateQnAOutput, *ai.TokenUsage, error) {
		return aiService.GenerateInterviewQnA(ctx, input)
	}

	result, err := common.RunAICommand(
		cmd.Context(),
		logger,
		questionsConfig,
		args,
		createInput,
		questionsOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to generate interview questions: %w", err)
	}

	if questionsPDFFile != "" {
		if err := writeQuestionsPDFFile(questionsPDFFile, result.QnA); err != nil {
			return err
		}
		logger.Info("Interview questions exported", "file", questionsPDFFile)
	}

	logger.Info("Interview question generation completed successfully",
		"question_count", len(result.QnA))
	return nil
}

func writeQuestionsPDFFile(path string, qna []types.QnAPair) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create PDF file: %w", err)
	}
	defer f.Close()

	if err := export.WriteQuestionsPDF(f, "Interview Questions", qna); err != nil {
		return fmt.Errorf("failed to export questions as PDF: %w", err)
	}
	return nil
}
