package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resumerank/internal/convert"
	"resumerank/internal/utils"

	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert [resume-file...]",
	Short: "Convert resume files to plain text",
	Long: `Convert resume files (PDF, DOCX or TXT) to plain text so they can
be fed to the summarize, questions and rank commands. Each file is converted
independently; a file that fails does not stop the rest.

By default the text is written next to the source file with a .txt extension.
Use --output-dir to collect the converted files elsewhere.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

var convertOutputDir string

func init() {
	convertCmd.Flags().StringVarP(&convertOutputDir, "output-dir", "d", "", "Directory for converted text files (default: next to each source file)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	converter := convert.NewConverter(cfg.App.MaxFileSize, logger)

	var files []convert.NamedReader
	var handles []*os.File
	defer func() {
		for _, f := range handles {
			f.Close()
		}
	}()

	for _, path := range args {
		if err := utils.ValidateInputFile(path); err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		handles = append(handles, f)
		files = append(files, convert.NamedReader{Filename: path, Reader: f})
	}

	logger.Info("Starting file conversion", "file_count", len(files))

	results := converter.Batch(files)

	var failed int
	for _, result := range results {
		if result.Error != "" {
			failed++
			fmt.Fprintf(os.Stderr, "FAILED  %s: %s\n", result.Filename, result.Error)
			continue
		}

		outPath := convertedPath(result.Filename, convertOutputDir)
		if err := utils.ValidateOutputFile(outPath); err != nil {
			return err
		}
		if err := os.WriteFile(outPath, []byte(result.Text), 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		fmt.Printf("OK      %s -> %s (%s)\n",
			result.Filename, outPath, utils.FormatFileSize(int64(len(result.Text))))
	}

	logger.Info("File conversion completed",
		"converted", len(results)-failed,
		"failed", failed)

	if failed == len(results) {
		return fmt.Errorf("all %d files failed to convert", failed)
	}
	return nil
}

// convertedPath derives the output path for a converted file
func convertedPath(source, outputDir string) string {
	base := filepath.Base(source)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".txt"
	if outputDir != "" {
		return filepath.Join(outputDir, name)
	}
	return filepath.Join(filepath.Dir(source), name)
}
