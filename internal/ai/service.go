package ai

import (
	"context"
	"fmt"
	"strings"

	"resumerank/internal/config"
	"resumerank/internal/errors"
	"resumerank/internal/types"
)

// Service handles AI operations for resume screening. It owns the input
// guards and output contracts around the raw provider calls.
type Service struct {
	Provider   AIProvider // Exported for access from server package
	config     *config.OperationAIConfig
	minJDChars int
	logger     *errors.Logger
}

// NewService creates a new AI service instance with configuration for a specific operation
func NewService(cfg *config.OperationAIConfig, operationType string, minJobDescriptionChars int, logger *errors.Logger) (*Service, error) {
	var provider AIProvider
	var err error

	if _, ok := Pipelines[operationType]; !ok {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unknown AI operation: %s", operationType), nil)
	}

	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"operation_type", operationType,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries)

	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, operationType, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create AI provider", err)
	}

	return &Service{
		Provider:   provider,
		config:     cfg,
		minJDChars: minJobDescriptionChars,
		logger:     logger,
	}, nil
}

// SummarizeResume produces a concise summary of a single resume
func (s *Service) SummarizeResume(ctx context.Context, input types.SummarizeResumeInput) (types.SummarizeResumeOutput, *TokenUsage, error) {
	if strings.TrimSpace(input.ResumeText) == "" {
		return types.SummarizeResumeOutput{}, nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Resume text is required", nil)
	}

	return s.Provider.SummarizeResume(ctx, input)
}

// GenerateInterviewQnA produces up to MaxQnAPairs interview questions with
// model answers for a job description. A job description under the minimum
// length returns an empty result without calling the model.
func (s *Service) GenerateInterviewQnA(ctx context.Context, input types.GenerateQnAInput) (types.GenerateQnAOutput, *TokenUsage, error) {
	if jobDescriptionTooShort(input.JobDescription, s.minJDChars) {
		s.logger.Debug("Job description below minimum length, skipping question generation",
			"length", len(strings.TrimSpace(input.JobDescription)),
			"minimum", s.minJDChars)
		return types.GenerateQnAOutput{QnA: []types.QnAPair{}}, nil, nil
	}

	output, usage, err := s.Provider.GenerateInterviewQnA(ctx, input)
	if err != nil {
		return types.GenerateQnAOutput{}, nil, err
	}

	return postProcessQnA(output), usage, nil
}

// RankResumes scores each resume against a job description. The output holds
// exactly one result per submitted resume or the whole call fails. A job
// description under the minimum length returns an empty result without
// calling the model.
func (s *Service) RankResumes(ctx context.Context, input types.RankResumesInput) (types.RankResumesOutput, *TokenUsage, error) {
	if len(input.Resumes) == 0 {
		return nil, nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"At least one resume is required", nil)
	}
	for i, resume := range input.Resumes {
		if strings.TrimSpace(resume) == "" {
			return nil, nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				"Resume text is required", nil).WithContext("resume_index", i)
		}
	}

	if jobDescriptionTooShort(input.JobDescription, s.minJDChars) {
		s.logger.Debug("Job description below minimum length, skipping ranking",
			"length", len(strings.TrimSpace(input.JobDescription)),
			"minimum", s.minJDChars)
		return types.RankResumesOutput{}, nil, nil
	}

	output, usage, err := s.Provider.RankResumes(ctx, input)
	if err != nil {
		return nil, nil, err
	}

	output, err = postProcessRankings(output, len(input.Resumes))
	if err != nil {
		return nil, nil, err
	}

	return output, usage, nil
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) any {
	return s.Provider.GetModelInfo(ctx)
}
