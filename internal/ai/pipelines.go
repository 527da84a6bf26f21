package ai

import (
	"sort"
	"strings"

	"resumerank/internal/errors"
	"resumerank/internal/types"
)

// Pipeline declares the input guard and post-processing contract for one AI
// operation. The Service executes every operation through its pipeline entry
// so the guards live in one place instead of being scattered across handlers.
type Pipeline struct {
	Name string

	// GuardJobDescription applies the minimum-length short circuit: a job
	// description shorter than the configured minimum yields an empty result
	// with no model call.
	GuardJobDescription bool
}

// Pipelines is the registry of supported AI operations.
var Pipelines = map[string]Pipeline{
	"summarize": {Name: "summarize"},
	"questions": {Name: "questions", GuardJobDescription: true},
	"rank":      {Name: "rank", GuardJobDescription: true},
}

// jobDescriptionTooShort reports whether the trimmed job description falls
// under the minimum length for pipelines that guard on it.
func jobDescriptionTooShort(jobDescription string, minChars int) bool {
	return len(strings.TrimSpace(jobDescription)) < minChars
}

// clampScore forces a model-reported score into the 0-100 range.
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// postProcessQnA enforces the question cap after the model call, regardless
// of how many items the model returned.
func postProcessQnA(output types.GenerateQnAOutput) types.GenerateQnAOutput {
	if len(output.QnA) > types.MaxQnAPairs {
		output.QnA = output.QnA[:types.MaxQnAPairs]
	}
	return output
}

// postProcessRankings validates the one-result-per-resume contract, clamps
// every score into range and orders the results best match first. A count
// mismatch fails the whole operation; callers never see a partial ranking.
func postProcessRankings(output types.RankResumesOutput, resumeCount int) (types.RankResumesOutput, error) {
	if len(output) != resumeCount {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			"Ranking result count does not match submitted resume count", nil).
			WithContext("expected", resumeCount).
			WithContext("got", len(output))
	}

	for i := range output {
		output[i].Score = clampScore(output[i].Score)
		output[i].Breakdown.EssentialSkillsMatch = clampScore(output[i].Breakdown.EssentialSkillsMatch)
		output[i].Breakdown.RelevantExperience = clampScore(output[i].Breakdown.RelevantExperience)
		output[i].Breakdown.RequiredQualifications = clampScore(output[i].Breakdown.RequiredQualifications)
		output[i].Breakdown.KeywordPresence = clampScore(output[i].Breakdown.KeywordPresence)
	}

	// Ties keep the model's order
	sort.SliceStable(output, func(i, j int) bool {
		return output[i].Score > output[j].Score
	})
	return output, nil
}
