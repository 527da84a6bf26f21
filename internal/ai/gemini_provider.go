package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"resumerank/internal/config"
	rankErrors "resumerank/internal/errors"
	"resumerank/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider implements AIProvider for Google Gemini
type GeminiProvider struct {
	client         *genai.Client
	httpClient     *http.Client
	config         *config.OperationAIConfig
	circuitBreaker *AICircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *rankErrors.Logger
}

// Ensure GeminiProvider implements AIProvider
var _ AIProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *rankErrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, rankErrors.NewAIError(rankErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	circuitBreaker := NewAICircuitBreaker(operationType, cfg, logger)
	modelBreaker := NewModelCircuitBreaker(operationType, cfg, logger)

	return &GeminiProvider{
		client: client,
		httpClient: &http.Client{
			Timeout: *cfg.Timeout,
		},
		config:         cfg,
		circuitBreaker: circuitBreaker,
		modelBreaker:   modelBreaker,
		logger:         logger,
	}, nil
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	return modelInfo
}

// executeWithRetry executes an AI operation with retry logic and exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= *g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", *g.config.MaxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			jitter := time.Duration(jitterBig.Int64())
			// Cap maximum backoff at 30 seconds
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry on auth errors, invalid input, etc.
		if !g.isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", *g.config.MaxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, *g.config.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func (g *GeminiProvider) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		// Timeouts and connection issues are both worth retrying
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// executeAIOperation is a generic helper to run AI operations with common tracing, circuit breaker, and parsing logic.
func executeAIOperation[Out any](
	g *GeminiProvider,
	ctx context.Context,
	operationName string,
	userPrompt string,
	systemPrompt string,
	genaiConfig *genai.GenerateContentConfig,
	spanAttributes ...attribute.KeyValue,
) (Out, *TokenUsage, error) {
	var output Out
	tracer := otel.Tracer("resumerank.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, operationName, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, rankErrors.NewAIError(rankErrors.ErrCodeAIServiceFailed, "Failed to generate content for "+operationName, err)
	}

	if err := json.Unmarshal([]byte(result.Text()), &output); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, rankErrors.NewAIError("AI_RESPONSE_PARSE_FAILED", "Failed to parse AI response for "+operationName, err)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return output, tokenUsage, nil
}

// SummarizeResume implements AIProvider interface for resume summarization
func (g *GeminiProvider) SummarizeResume(ctx context.Context, input types.SummarizeResumeInput) (types.SummarizeResumeOutput, *TokenUsage, error) {
	systemPrompt, userPrompt := g.getPromptsForSummarize(input.ResumeText)
	config := g.buildSummarizeSchema()

	output, tokenUsage, err := executeAIOperation[types.SummarizeResumeOutput](
		g,
		ctx,
		"summarize_resume",
		userPrompt,
		systemPrompt,
		config,
		attribute.Int("input.resume_length", len(input.ResumeText)),
	)

	if err != nil {
		return types.SummarizeResumeOutput{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.summary_length", len(output.Summary)),
		)
	}

	return output, tokenUsage, nil
}

// GenerateInterviewQnA implements AIProvider interface for interview question generation
func (g *GeminiProvider) GenerateInterviewQnA(ctx context.Context, input types.GenerateQnAInput) (types.GenerateQnAOutput, *TokenUsage, error) {
	systemPrompt, userPrompt := g.getPromptsForQnA(input.JobDescription)
	config := g.buildQnASchema()

	output, tokenUsage, err := executeAIOperation[types.GenerateQnAOutput](
		g,
		ctx,
		"generate_interview_qna",
		userPrompt,
		systemPrompt,
		config,
		attribute.Int("input.job_length", len(input.JobDescription)),
	)

	if err != nil {
		return types.GenerateQnAOutput{}, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.qna_count", len(output.QnA)),
		)
	}

	return output, tokenUsage, nil
}

// RankResumes implements AIProvider interface for resume ranking
func (g *GeminiProvider) RankResumes(ctx context.Context, input types.RankResumesInput) (types.RankResumesOutput, *TokenUsage, error) {
	systemPrompt, userPrompt := g.getPromptsForRank(input.JobDescription, input.Resumes)
	config := g.buildRankSchema()

	output, tokenUsage, err := executeAIOperation[types.RankResumesOutput](
		g,
		ctx,
		"rank_resumes",
		userPrompt,
		systemPrompt,
		config,
		attribute.Int("input.job_length", len(input.JobDescription)),
		attribute.Int("input.resume_count", len(input.Resumes)),
	)

	if err != nil {
		return nil, nil, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("output.result_count", len(output)),
		)
	}

	return output, tokenUsage, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}

	aiHealthy := g.circuitBreaker.IsHealthy()
	modelHealthy := g.modelBreaker.IsModelHealthy()
	stats["overall_healthy"] = aiHealthy && modelHealthy

	return stats
}

// Close implements AIProvider interface
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// buildSummarizeSchema creates the schema for summarize requests
func (g *GeminiProvider) buildSummarizeSchema() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary": {Type: genai.TypeString},
			},
			Required: []string{"summary"},
		},
	}

	if *g.config.Temperature > 0 {
		config.Temperature = g.config.Temperature
	}

	return config
}

// buildQnASchema creates the schema for interview question generation requests
func (g *GeminiProvider) buildQnASchema() *genai.GenerateContentConfig {
	maxItems := int64(types.MaxQnAPairs)
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"qna": {
					Type:     genai.TypeArray,
					MaxItems: &maxItems,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"question": {Type: genai.TypeString},
							"answer":   {Type: genai.TypeString},
						},
						Required: []string{"question", "answer"},
					},
				},
			},
			Required: []string{"qna"},
		},
	}

	if *g.config.Temperature > 0 {
		config.Temperature = g.config.Temperature
	}

	return config
}

// buildRankSchema creates the schema for ranking requests
func (g *GeminiProvider) buildRankSchema() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":      {Type: genai.TypeString},
					"summary":   {Type: genai.TypeString},
					"score":     {Type: genai.TypeInteger},
					"rationale": {Type: genai.TypeString},
					"breakdown": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"essentialSkillsMatch":   {Type: genai.TypeInteger},
							"relevantExperience":     {Type: genai.TypeInteger},
							"requiredQualifications": {Type: genai.TypeInteger},
							"keywordPresence":        {Type: genai.TypeInteger},
						},
						Required: []string{"essentialSkillsMatch", "relevantExperience", "requiredQualifications", "keywordPresence"},
					},
					"recommendation": {Type: genai.TypeString},
				},
				Required: []string{"name", "summary", "score", "rationale", "breakdown", "recommendation"},
			},
		},
	}

	if *g.config.Temperature > 0 {
		config.Temperature = g.config.Temperature
	}

	return config
}

// getPromptsForSummarize returns system and user prompts for summarization
func (g *GeminiProvider) getPromptsForSummarize(resumeText string) (string, string) {
	systemPrompt := g.getSystemPrompt("summarize")
	userPrompt := g.getUserPrompt("summarize")
	return systemPrompt, fmt.Sprintf(userPrompt, resumeText)
}

// getPromptsForQnA returns system and user prompts for question generation
func (g *GeminiProvider) getPromptsForQnA(jobDescription string) (string, string) {
	systemPrompt := g.getSystemPrompt("questions")
	userPrompt := g.getUserPrompt("questions")
	return systemPrompt, fmt.Sprintf(userPrompt, types.MaxQnAPairs, jobDescription)
}

// getPromptsForRank returns system and user prompts for ranking
func (g *GeminiProvider) getPromptsForRank(jobDescription string, resumes []string) (string, string) {
	systemPrompt := g.getSystemPrompt("rank")
	userPrompt := g.getUserPrompt("rank")
	return systemPrompt, fmt.Sprintf(userPrompt, jobDescription, formatResumesBlock(resumes))
}

// formatResumesBlock renders each resume as a numbered, delimited section so
// the model can tell them apart
func formatResumesBlock(resumes []string) string {
	var b strings.Builder
	for i, resume := range resumes {
		fmt.Fprintf(&b, "Resume %d:\n-----\n%s\n-----\n", i+1, resume)
	}
	return b.String()
}

// getSystemPrompt returns the appropriate system prompt
func (g *GeminiProvider) getSystemPrompt(promptType string) string {
	loadedPrompts, configPrompts := g.getPrompts(promptType)
	var configSystemPrompts *config.SystemPrompts
	if configPrompts != nil {
		configSystemPrompts = &configPrompts.SystemPrompts
	} else {
		configSystemPrompts = &config.SystemPrompts{}
	}

	switch promptType {
	case "summarize":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.SummarizeResume,
			configSystemPrompts.SummarizeResume,
			DefaultSystemPrompts.SummarizeResume,
		)
	case "questions":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.GenerateQnA,
			configSystemPrompts.GenerateQnA,
			DefaultSystemPrompts.GenerateQnA,
		)
	case "rank":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.RankResumes,
			configSystemPrompts.RankResumes,
			DefaultSystemPrompts.RankResumes,
		)
	default:
		return ""
	}
}

// getUserPrompt returns the appropriate user prompt template
func (g *GeminiProvider) getUserPrompt(promptType string) string {
	loadedPrompts, configPrompts := g.getPrompts(promptType)
	var configUserPrompts *config.UserPrompts
	if configPrompts != nil {
		configUserPrompts = &configPrompts.UserPrompts
	} else {
		configUserPrompts = &config.UserPrompts{}
	}

	switch promptType {
	case "summarize":
		return resolvePrompt(
			loadedPrompts.UserPrompts.SummarizeResume,
			configUserPrompts.SummarizeResume,
			DefaultUserPrompts.SummarizeResume,
		)
	case "questions":
		return resolvePrompt(
			loadedPrompts.UserPrompts.GenerateQnA,
			configUserPrompts.GenerateQnA,
			DefaultUserPrompts.GenerateQnA,
		)
	case "rank":
		return resolvePrompt(
			loadedPrompts.UserPrompts.RankResumes,
			configUserPrompts.RankResumes,
			DefaultUserPrompts.RankResumes,
		)
	default:
		return ""
	}
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// getPrompts returns the appropriate prompts for the operation, prioritizing loaded content over config
func (g *GeminiProvider) getPrompts(operationType string) (config.OperationLoadedPrompts, *config.PromptConfig) {
	loadedPrompts := config.GetPromptsForOperation(operationType)
	configPrompts := &g.config.CustomPrompts
	return loadedPrompts, configPrompts
}

// resolvePrompt selects the correct prompt string based on priority:
// 1. A prompt loaded from a file.
// 2. A prompt defined directly in the configuration.
// 3. A hardcoded default prompt.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
