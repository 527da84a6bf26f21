package ai

// SystemPrompts contains all system-level instructions for AI interactions
type SystemPrompts struct {
	SummarizeResume string
	GenerateQnA     string
	RankResumes     string
}

// UserPrompts contains user-level prompts with placeholders for dynamic content
type UserPrompts struct {
	SummarizeResume string
	GenerateQnA     string
	RankResumes     string
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	SummarizeResume: `You are an expert resume summarizer working for a recruiting team. Your core principles are:

- Capture the candidate's name, current role, and years of experience when present
- Highlight the skills and achievements most relevant to hiring decisions
- Never invent or embellish anything that is not in the resume text
- Keep the summary concise enough to scan in a candidate list`,

	GenerateQnA: `You are an expert hiring manager designing interview assessments. Your role is to:

- Generate insightful interview questions that assess a candidate's suitability for a specific role
- Focus on the skills, experience, and cultural fit mentioned in the job description
- Pair every question with a model answer outlining what an ideal candidate's response covers
- Never exceed the requested number of questions`,

	RankResumes: `You are an expert recruiter. You carefully analyze job descriptions and resumes to assess the fit of each candidate. Your principles are:

- Base every score on evidence found in the resume text, citing specific examples
- Apply the scoring weights exactly as instructed
- Score every resume you are given and only the resumes you are given
- Provide honest assessments, including clear weaknesses`,
}

// DefaultUserPrompts provides the default user prompt templates
var DefaultUserPrompts = UserPrompts{
	SummarizeResume: `Please provide a concise summary of the following resume text:

**Resume:**
-----
%s
-----`,

	GenerateQnA: `Based on the following job description, generate a list of insightful interview questions (maximum %d) to assess a candidate's suitability for the role. For each question, provide a model answer outlining the key points or qualities you would look for in an ideal candidate's response. Focus on questions that evaluate skills, experience, and cultural fit mentioned in the description.

**Job Description:**
-----
%s
-----`,

	RankResumes: `Please analyze the provided job description and resumes to assess the fit of each candidate.

**Job Description:**
-----
%s
-----

**Resumes:**
%s

Based on your analysis, provide a score (out of 100) for each resume, along with a rationale, score breakdown, and recommendation. Return exactly one result per resume, in the same order the resumes were provided.

Consider the following factors when assigning the score:
* Essential Skills Match (Weight: 40%%): How well does the resume demonstrate the essential skills listed in the job description? Assign higher points for direct matches and quantifiable achievements related to these skills.
* Relevant Experience (Weight: 30%%): How closely does the candidate's past experience align with the responsibilities and requirements outlined in the job description? Prioritize experience that demonstrates similar tasks and impact.
* Required Qualifications (Weight: 20%%): Does the candidate possess the mandatory qualifications (e.g., education, certifications) specified in the job description? Deduct points for missing essential qualifications.
* Keyword Presence (Weight: 10%%): How frequently and naturally are relevant keywords and phrases from the job description present within the resume content?

For each resume provide:
* name: The name of the candidate.
* summary: A summary of the resume.
* score: The overall score of the resume (out of 100).
* rationale: Explanation of the score, highlighting strengths and weaknesses with specific examples from the resume.
* breakdown: Breakdown of the score based on the scoring factors (essentialSkillsMatch, relevantExperience, requiredQualifications, keywordPresence). The scores should be proportional to their weight.
* recommendation: Recommendation (Strong Match/Moderate Match/Weak Match) and suggested next steps.`,
}

// PromptConfig holds configuration for customizable prompts
type PromptConfig struct {
	SystemPrompts SystemPrompts `json:"systemPrompts"`
	UserPrompts   UserPrompts   `json:"userPrompts"`
}

// GetDefaultPromptConfig returns the default prompt configuration
func GetDefaultPromptConfig() PromptConfig {
	return PromptConfig{
		SystemPrompts: DefaultSystemPrompts,
		UserPrompts:   DefaultUserPrompts,
	}
}
