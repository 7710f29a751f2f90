package services

import (
	"fmt"

	"jobfit/candidate-matcher/internal/models"
)

// scoringRubric fixes how skill overlap and seniority translate to a 0-100
// score, and pins the exact JSON shape of the reply. Every request embeds
// this unchanged, so identical documents always produce identical prompts.
const scoringRubric = `You are a strict ATS-style evaluator comparing a candidate resume to a job description.

Step 1) Determine years of experience (YOE)
- Compute candidate YOE from the resume (prefer explicit years, else infer from date ranges).
- If unclear, infer conservatively; if still unclear treat as early_career.
- Map to experience_level:
  - fresher: 0 YOE
  - early_career: 0.5-2 YOE
  - experienced: >2 YOE

Step 2) Extract JD requirements
- Identify JD skills/technologies/tools (hard skills).
- Identify key responsibilities/experience requirements.
- Treat them as the reference set for matching.

Step 3) Apply exactly ONE rubric based on experience_level (total must equal 100)

Rubric A) fresher:
- matching_skills: 35
- projects_using_jd_skills: 35
- relevant_education: 20
- internships: 10

Rubric B) early_career:
- matching_skills: 40
- relevant_experience_quality: 30
- relevant_years_months: 15 (cap at 24 months)
- relevant_projects: 10
- education_or_certs: 5

Rubric C) experienced:
- matching_skills: 45
- relevant_years_experience: 35
- total_years_experience: 10
- role_domain_alignment: 10

Step 4) Scoring rules
- matching_skills: score by coverage of JD hard skills found in the resume (exact match or strong synonym). Partial coverage = partial points.
- Experience-related categories: only count experience that matches the JD domain/role.
- No fabrication: if the resume does not support a claim, do not award points.

Step 5) Recommendation rules (must follow)
- match_score >= 85: recommendation_label = "Strong fit - shortlist"
- 70 <= match_score <= 84: recommendation_label = "Good fit - interview"
- 55 <= match_score <= 69: recommendation_label = "Borderline - needs review"
- match_score < 55: recommendation_label = "Not a fit - reject"
The recommendation field MUST be exactly:
"<recommendation_label>. Reason: <one key strength>; Gap: <one key missing/weak skill>."
Keep it one sentence.

Step 6) Output
Return ONLY valid JSON with exactly these keys and no others:
{
  "match_score": <integer 0-100 from the rubric>,
  "matched_skills": [<JD hard skills found in the resume>],
  "missing_or_weak_skills": [<JD hard skills absent or weak in the resume>],
  "explanation": "<1-3 sentences>",
  "recommendation": "<one sentence in the exact format above>"
}
No markdown, no code fences, no text before or after the JSON.`

type PromptComposer struct {
	maxDocumentChars int
}

func NewPromptComposer(maxDocumentChars int) *PromptComposer {
	return &PromptComposer{maxDocumentChars: maxDocumentChars}
}

// Compose builds the instruction payload for one scoring request. Pure and
// deterministic: no randomness, no hidden state. Each document is clipped
// independently to the character budget and the clipping is recorded on the
// prompt rather than silently dropped.
func (pc *PromptComposer) Compose(jdText, resumeText string) *models.AnalysisPrompt {
	jd, jdTruncated := pc.truncate(jdText)
	resume, resumeTruncated := pc.truncate(resumeText)

	return &models.AnalysisPrompt{
		Instructions:       scoringRubric,
		JobDescriptionText: jd,
		ResumeText:         resume,
		JDTruncated:        jdTruncated,
		ResumeTruncated:    resumeTruncated,
	}
}

// Render produces the full text sent upstream. Both documents sit in
// labeled, fenced sections so the model cannot confuse their boundaries.
func Render(p *models.AnalysisPrompt) string {
	return fmt.Sprintf(`%s

=== JOB DESCRIPTION ===
%s
=== END JOB DESCRIPTION ===

=== RESUME ===
%s
=== END RESUME ===`,
		p.Instructions, p.JobDescriptionText, p.ResumeText)
}

func (pc *PromptComposer) truncate(text string) (string, bool) {
	if len(text) <= pc.maxDocumentChars {
		return text, false
	}
	return text[:pc.maxDocumentChars], true
}
