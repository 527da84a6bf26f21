package ai

import (
	"context"

	"resumerank/internal/types"
)

// AIProvider interface for different AI implementations.
// All methods return token usage information - callers can ignore it if not needed.
type AIProvider interface {
	SummarizeResume(ctx context.Context, input types.SummarizeResumeInput) (types.SummarizeResumeOutput, *TokenUsage, error)
	GenerateInterviewQnA(ctx context.Context, input types.GenerateQnAInput) (types.GenerateQnAOutput, *TokenUsage, error)
	RankResumes(ctx context.Context, input types.RankResumesInput) (types.RankResumesOutput, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}
