package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumerank/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "SummarizeResumeOutput", &SummaryTextFormatter{})
	registry.RegisterFormatter("markdown", "SummarizeResumeOutput", &SummaryMarkdownFormatter{})
	registry.RegisterFormatter("text", "GenerateQnAOutput", &QnATextFormatter{})
	registry.RegisterFormatter("markdown", "GenerateQnAOutput", &QnAMarkdownFormatter{})
	registry.RegisterFormatter("text", "RankResumesOutput", &RankingTextFormatter{})
	registry.RegisterFormatter("markdown", "RankResumesOutput", &RankingMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.SummarizeResumeOutput:
		return "SummarizeResumeOutput"
	case types.GenerateQnAOutput:
		return "GenerateQnAOutput"
	case types.RankResumesOutput:
		return "RankResumesOutput"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// SummaryTextFormatter handles text formatting for resume summaries
type SummaryTextFormatter struct{}

func (sf *SummaryTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.SummarizeResumeOutput)
	if !ok {
		return "", fmt.Errorf("expected SummarizeResumeOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== RESUME SUMMARY ===\n\n")
	output.WriteString(result.Summary)
	output.WriteString("\n")
	return output.String(), nil
}

func (sf *SummaryTextFormatter) SupportedType() string {
	return "SummarizeResumeOutput"
}

// SummaryMarkdownFormatter handles markdown formatting for resume summaries
type SummaryMarkdownFormatter struct{}

func (sf *SummaryMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.SummarizeResumeOutput)
	if !ok {
		return "", fmt.Errorf("expected SummarizeResumeOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Resume Summary\n\n")
	output.WriteString(result.Summary)
	output.WriteString("\n")
	return output.String(), nil
}

func (sf *SummaryMarkdownFormatter) SupportedType() string {
	return "SummarizeResumeOutput"
}

// QnATextFormatter handles text formatting for interview questions
type QnATextFormatter struct{}

func (qf *QnATextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.GenerateQnAOutput)
	if !ok {
		return "", fmt.Errorf("expected GenerateQnAOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== INTERVIEW QUESTIONS ===\n\n")

	if len(result.QnA) == 0 {
		output.WriteString("No questions generated.\n")
		return output.String(), nil
	}

	for i, pair := range result.QnA {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, pair.Question))
		output.WriteString("   Model answer: ")
		output.WriteString(pair.Answer)
		output.WriteString("\n\n")
	}
	return output.String(), nil
}

func (qf *QnATextFormatter) SupportedType() string {
	return "GenerateQnAOutput"
}

// QnAMarkdownFormatter handles markdown formatting for interview questions
type QnAMarkdownFormatter struct{}

func (qf *QnAMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.GenerateQnAOutput)
	if !ok {
		return "", fmt.Errorf("expected GenerateQnAOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Interview Questions\n\n")

	if len(result.QnA) == 0 {
		output.WriteString("No questions generated.\n")
		return output.String(), nil
	}

	for i, pair := range result.QnA {
		output.WriteString(fmt.Sprintf("### %d. %s\n\n", i+1, pair.Question))
		output.WriteString("**Model answer:** ")
		output.WriteString(pair.Answer)
		output.WriteString("\n\n")
	}
	return output.String(), nil
}

func (qf *QnAMarkdownFormatter) SupportedType() string {
	return "GenerateQnAOutput"
}

// RankingTextFormatter handles text formatting for ranking results
type RankingTextFormatter struct{}

func (rf *RankingTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.RankResumesOutput)
	if !ok {
		return "", fmt.Errorf("expected RankResumesOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== RESUME RANKINGS ===\n\n")

	if len(result) == 0 {
		output.WriteString("No results.\n")
		return output.String(), nil
	}

	for i, ranking := range result {
		output.WriteString(fmt.Sprintf("%d. %s (Score: %d/100)\n", i+1, ranking.Name, ranking.Score))
		output.WriteString("   Summary: ")
		output.WriteString(ranking.Summary)
		output.WriteString("\n")
		output.WriteString("   Rationale: ")
		output.WriteString(ranking.Rationale)
		output.WriteString("\n")
		output.WriteString(fmt.Sprintf("   Breakdown: skills %d, experience %d, qualifications %d, keywords %d\n",
			ranking.Breakdown.EssentialSkillsMatch,
			ranking.Breakdown.RelevantExperience,
			ranking.Breakdown.RequiredQualifications,
			ranking.Breakdown.KeywordPresence))
		output.WriteString("   Recommendation: ")
		output.WriteString(ranking.Recommendation)
		output.WriteString("\n\n")
	}
	return output.String(), nil
}

func (rf *RankingTextFormatter) SupportedType() string {
	return "RankResumesOutput"
}

// RankingMarkdownFormatter handles markdown formatting for ranking results
type RankingMarkdownFormatter struct{}

func (rf *RankingMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.RankResumesOutput)
	if !ok {
		return "", fmt.Errorf("expected RankResumesOutput, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Resume Rankings\n\n")

	if len(result) == 0 {
		output.WriteString("No results.\n")
		return output.String(), nil
	}

	for i, ranking := range result {
		output.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, ranking.Name))
		output.WriteString(fmt.Sprintf("**Score:** %d/100\n\n", ranking.Score))
		output.WriteString("**Summary:** ")
		output.WriteString(ranking.Summary)
		output.WriteString("\n\n")
		output.WriteString("**Rationale:** ")
		output.WriteString(ranking.Rationale)
		output.WriteString("\n\n")
		output.WriteString("| Factor | Score |\n|---|---|\n")
		output.WriteString(fmt.Sprintf("| Essential Skills Match | %d |\n", ranking.Breakdown.EssentialSkillsMatch))
		output.WriteString(fmt.Sprintf("| Relevant Experience | %d |\n", ranking.Breakdown.RelevantExperience))
		output.WriteString(fmt.Sprintf("| Required Qualifications | %d |\n", ranking.Breakdown.RequiredQualifications))
		output.WriteString(fmt.Sprintf("| Keyword Presence | %d |\n\n", ranking.Breakdown.KeywordPresence))
		output.WriteString("**Recommendation:** ")
		output.WriteString(ranking.Recommendation)
		output.WriteString("\n\n")
	}
	return output.String(), nil
}

func (rf *RankingMarkdownFormatter) SupportedType() string {
	return "RankResumesOutput"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
