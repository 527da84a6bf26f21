package types

// SummarizeResumeInput represents the input for summarizing a single resume
type SummarizeResumeInput struct {
	ResumeText string `json:"resumeText"`
}

// SummarizeResumeOutput represents the output from resume summarization
type SummarizeResumeOutput struct {
	Summary string `json:"summary"`
}

// GenerateQnAInput represents the input for interview question generation
type GenerateQnAInput struct {
	JobDescription string `json:"jobDescription"`
}

// QnAPair is one interview question with a model answer describing what to
// look for in a candidate's response
type QnAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GenerateQnAOutput represents the output from interview question generation.
// QnA holds at most MaxQnAPairs entries; the cap is enforced after the model
// call regardless of how many items the model returned.
type GenerateQnAOutput struct {
	QnA []QnAPair `json:"qna"`
}

// MaxQnAPairs is the contractual cap on generated interview questions per
// job description.
const MaxQnAPairs = 10

// RankResumesInput represents the input for ranking resumes against a job
// description
type RankResumesInput struct {
	JobDescription string   `json:"jobDescription"`
	Resumes        []string `json:"resumes"`
}

// ScoreBreakdown holds the four weighted sub-scores behind an overall
// ranking score. The weights (essential skills 40%, experience 30%,
// qualifications 20%, keywords 10%) are instructions to the model; the
// overall score is taken from the model, not recomputed here.
type ScoreBreakdown struct {
	EssentialSkillsMatch   int `json:"essentialSkillsMatch"`
	RelevantExperience     int `json:"relevantExperience"`
	RequiredQualifications int `json:"requiredQualifications"`
	KeywordPresence        int `json:"keywordPresence"`
}

// RankingResult is the structured per-resume output of the ranking pipeline
type RankingResult struct {
	Name           string         `json:"name"`
	Summary        string         `json:"summary"`
	Score          int            `json:"score"`
	Rationale      string         `json:"rationale"`
	Breakdown      ScoreBreakdown `json:"breakdown"`
	Recommendation string         `json:"recommendation"`
}

// RankResumesOutput is the full ranking response: exactly one entry per
// submitted resume, replaced wholesale on every ranking request.
type RankResumesOutput []RankingResult
