package ai

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"resumerank/internal/config"
	rankErrors "resumerank/internal/errors"
	"resumerank/internal/types"
)

// fakeProvider counts calls and returns canned outputs so tests can verify
// the service-level guards without touching the network.
type fakeProvider struct {
	summarizeCalls int
	qnaCalls       int
	rankCalls      int

	qnaOutput  types.GenerateQnAOutput
	rankOutput types.RankResumesOutput
	err        error
}

func (f *fakeProvider) SummarizeResume(ctx context.Context, input types.SummarizeResumeInput) (types.SummarizeResumeOutput, *TokenUsage, error) {
	f.summarizeCalls++
	if f.err != nil {
		return types.SummarizeResumeOutput{}, nil, f.err
	}
	return types.SummarizeResumeOutput{Summary: "summary"}, nil, nil
}

func (f *fakeProvider) GenerateInterviewQnA(ctx context.Context, input types.GenerateQnAInput) (types.GenerateQnAOutput, *TokenUsage, error) {
	f.qnaCalls++
	if f.err != nil {
		return types.GenerateQnAOutput{}, nil, f.err
	}
	return f.qnaOutput, nil, nil
}

func (f *fakeProvider) RankResumes(ctx context.Context, input types.RankResumesInput) (types.RankResumesOutput, *TokenUsage, error) {
	f.rankCalls++
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.rankOutput, nil, nil
}

func (f *fakeProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	return &ModelInfo{Name: "fake", Available: true}
}

func (f *fakeProvider) Close() error { return nil }

func newTestService(provider AIProvider) *Service {
	timeout := 10 * time.Second
	retries := 0
	temp := float32(0.5)
	useSystem := true
	logger := rankErrors.NewLogger(slog.LevelError)

	return &Service{
		Provider: provider,
		config: &config.OperationAIConfig{
			Provider:         "gemini",
			Model:            "fake",
			Timeout:          &timeout,
			MaxRetries:       &retries,
			Temperature:      &temp,
			UseSystemPrompts: &useSystem,
		},
		minJDChars: 50,
		logger:     logger,
	}
}

const longJobDescription = "We are hiring a senior Go engineer with experience in distributed systems and cloud infrastructure."

func TestSummarizeRejectsEmptyResume(t *testing.T) {
	fake := &fakeProvider{}
	svc := newTestService(fake)

	_, _, err := svc.SummarizeResume(context.Background(), types.SummarizeResumeInput{ResumeText: "   "})
	if err == nil {
		t.Fatal("expected validation error for empty resume")
	}
	if fake.summarizeCalls != 0 {
		t.Errorf("provider called %d times, expected 0", fake.summarizeCalls)
	}
}

func TestQnAShortJobDescriptionSkipsModelCall(t *testing.T) {
	fake := &fakeProvider{}
	svc := newTestService(fake)

	output, _, err := svc.GenerateInterviewQnA(context.Background(), types.GenerateQnAInput{JobDescription: "too short"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.QnA) != 0 {
		t.Errorf("expected empty output, got %d items", len(output.QnA))
	}
	if fake.qnaCalls != 0 {
		t.Errorf("provider called %d times, expected 0", fake.qnaCalls)
	}
}

func TestQnATruncatedToMaxPairs(t *testing.T) {
	pairs := make([]types.QnAPair, types.MaxQnAPairs+5)
	for i := range pairs {
		pairs[i] = types.QnAPair{Question: "q", Answer: "a"}
	}
	fake := &fakeProvider{qnaOutput: types.GenerateQnAOutput{QnA: pairs}}
	svc := newTestService(fake)

	output, _, err := svc.GenerateInterviewQnA(context.Background(), types.GenerateQnAInput{JobDescription: longJobDescription})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.QnA) != types.MaxQnAPairs {
		t.Errorf("expected %d items, got %d", types.MaxQnAPairs, len(output.QnA))
	}
	if fake.qnaCalls != 1 {
		t.Errorf("provider called %d times, expected 1", fake.qnaCalls)
	}
}

func TestRankShortJobDescriptionSkipsModelCall(t *testing.T) {
	fake := &fakeProvider{}
	svc := newTestService(fake)

	output, _, err := svc.RankResumes(context.Background(), types.RankResumesInput{
		JobDescription: "short",
		Resumes:        []string{"Jane Doe, Engineer"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output) != 0 {
		t.Errorf("expected empty output, got %d results", len(output))
	}
	if fake.rankCalls != 0 {
		t.Errorf("provider called %d times, expected 0", fake.rankCalls)
	}
}

func TestRankRequiresResumes(t *testing.T) {
	fake := &fakeProvider{}
	svc := newTestService(fake)

	_, _, err := svc.RankResumes(context.Background(), types.RankResumesInput{
		JobDescription: longJobDescription,
	})
	if err == nil {
		t.Fatal("expected validation error for missing resumes")
	}
}

func TestRankCountMismatchFailsWholeOperation(t *testing.T) {
	fake := &fakeProvider{
		rankOutput: types.RankResumesOutput{
			{Name: "Jane", Score: 80},
		},
	}
	svc := newTestService(fake)

	_, _, err := svc.RankResumes(context.Background(), types.RankResumesInput{
		JobDescription: longJobDescription,
		Resumes:        []string{"Jane Doe", "John Smith"},
	})
	if err == nil {
		t.Fatal("expected error for result count mismatch")
	}
	appErr, ok := err.(*rankErrors.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Type != rankErrors.ErrorTypeValidation {
		t.Errorf("expected validation error, got %s", appErr.Type)
	}
}

func TestRankClampsScores(t *testing.T) {
	fake := &fakeProvider{
		rankOutput: types.RankResumesOutput{
			{
				Name:  "Jane",
				Score: 130,
				Breakdown: types.ScoreBreakdown{
					EssentialSkillsMatch:   -5,
					RelevantExperience:     101,
					RequiredQualifications: 50,
					KeywordPresence:        10,
				},
			},
		},
	}
	svc := newTestService(fake)

	output, _, err := svc.RankResumes(context.Background(), types.RankResumesInput{
		JobDescription: longJobDescription,
		Resumes:        []string{"Jane Doe"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output[0].Score != 100 {
		t.Errorf("score not clamped: %d", output[0].Score)
	}
	if output[0].Breakdown.EssentialSkillsMatch != 0 {
		t.Errorf("negative breakdown score not clamped: %d", output[0].Breakdown.EssentialSkillsMatch)
	}
	if output[0].Breakdown.RelevantExperience != 100 {
		t.Errorf("breakdown score not clamped: %d", output[0].Breakdown.RelevantExperience)
	}
	if output[0].Breakdown.RequiredQualifications != 50 {
		t.Errorf("in-range score changed: %d", output[0].Breakdown.RequiredQualifications)
	}
}

func TestRankOrdersBestMatchFirst(t *testing.T) {
	fake := &fakeProvider{
		rankOutput: types.RankResumesOutput{
			{Name: "Low", Score: 40},
			{Name: "High", Score: 92},
			{Name: "MidFirst", Score: 70},
			{Name: "MidSecond", Score: 70},
		},
	}
	svc := newTestService(fake)

	output, _, err := svc.RankResumes(context.Background(), types.RankResumesInput{
		JobDescription: longJobDescription,
		Resumes:        []string{"a", "b", "c", "d"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantOrder := []string{"High", "MidFirst", "MidSecond", "Low"}
	for i, want := range wantOrder {
		if output[i].Name != want {
			t.Errorf("position %d: got %s, want %s", i, output[i].Name, want)
		}
	}
	for i := 1; i < len(output); i++ {
		if output[i].Score > output[i-1].Score {
			t.Errorf("scores not descending at position %d: %d > %d",
				i, output[i].Score, output[i-1].Score)
		}
	}
}
