package services

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"jobfit/candidate-matcher/internal/errs"
	"jobfit/candidate-matcher/internal/models"
)

// maxSkillListEntries bounds downstream rendering cost; anything past the
// clip is noise from a rambling model, not signal.
const maxSkillListEntries = 50

// resultSchema is the structural contract the prompt instructs the model to
// honor. JSON Schema "integer" accepts 72 and 72.0 but rejects 72.5, which
// matches the integral-float policy.
const resultSchema = `{
  "type": "object",
  "required": ["match_score", "matched_skills", "missing_or_weak_skills", "explanation", "recommendation"],
  "properties": {
    "match_score": {"type": "integer", "minimum": 0, "maximum": 100},
    "matched_skills": {"type": "array", "items": {"type": "string"}},
    "missing_or_weak_skills": {"type": "array", "items": {"type": "string"}},
    "explanation": {"type": "string"},
    "recommendation": {"type": "string"}
  }
}`

// completionPayload mirrors the wire shape of the model's reply. The score
// stays a json.Number until the integral check has passed.
type completionPayload struct {
	MatchScore          json.Number `json:"match_score"`
	MatchedSkills       []string    `json:"matched_skills"`
	MissingOrWeakSkills []string    `json:"missing_or_weak_skills"`
	Explanation         string      `json:"explanation"`
	Recommendation      string      `json:"recommendation"`
}

type ResponseValidator interface {
	Parse(completion *models.RawCompletion) (*models.MatchResult, error)
}

type responseValidator struct {
	schema *gojsonschema.Schema
}

func NewResponseValidator() (ResponseValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(resultSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile result schema: %w", err)
	}
	return &responseValidator{schema: schema}, nil
}

// Parse turns the raw completion into a MatchResult. Strict parse first;
// if the payload is buried in prose or markdown fences, a tolerant pass
// extracts the JSON substring and retries the same strict parse on it.
// Anything still invalid is a MalformedCompletion — a fabricated score is
// worse than an explicit failure, so nothing is ever defaulted.
func (v *responseValidator) Parse(completion *models.RawCompletion) (*models.MatchResult, error) {
	text := strings.TrimSpace(completion.Text)

	result, strictErr := v.parseStrict(text)
	if strictErr == nil {
		return result, nil
	}

	candidate := extractJSON(cleanJSONBlock(text))
	if candidate != text {
		result, tolerantErr := v.parseStrict(candidate)
		if tolerantErr == nil {
			log.Println("⚠️ Strict parse failed, recovered payload via tolerant extraction")
			return result, nil
		}
	}

	return nil, errs.Wrap(errs.KindMalformedCompletion, strictErr,
		"completion is not a valid structured payload")
}

func (v *responseValidator) parseStrict(text string) (*models.MatchResult, error) {
	validation, err := v.schema.Validate(gojsonschema.NewStringLoader(text))
	if err != nil {
		return nil, fmt.Errorf("payload is not valid JSON: %w", err)
	}
	if !validation.Valid() {
		var issues []string
		for _, desc := range validation.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, fmt.Errorf("payload violates result schema: %s", strings.Join(issues, "; "))
	}

	var payload completionPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	score, err := integralScore(payload.MatchScore)
	if err != nil {
		return nil, err
	}
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("match_score %d out of range 0-100", score)
	}

	explanation := strings.TrimSpace(payload.Explanation)
	if explanation == "" {
		return nil, fmt.Errorf("explanation is empty")
	}
	recommendation := strings.TrimSpace(payload.Recommendation)
	if recommendation == "" {
		return nil, fmt.Errorf("recommendation is empty")
	}

	matched := normalizeSkills(payload.MatchedSkills)

	// Cross-list overlaps resolve in favor of matched_skills: a skill the
	// model found in the resume cannot also be missing.
	missing := dropOverlap(normalizeSkills(payload.MissingOrWeakSkills), matched)

	return &models.MatchResult{
		MatchScore:          score,
		MatchedSkills:       matched,
		MissingOrWeakSkills: missing,
		Explanation:         explanation,
		Recommendation:      recommendation,
	}, nil
}

// integralScore accepts integers and floats with no fractional part.
func integralScore(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("match_score %q is not numeric", n.String())
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("match_score %q is not an integral value", n.String())
	}
	return int(f), nil
}

// normalizeSkills trims entries, drops empties, de-duplicates
// case-insensitively keeping the first occurrence's casing, and clips the
// list. An empty list is a legitimate outcome and stays a non-nil slice so
// it serializes as [].
func normalizeSkills(skills []string) []string {
	normalized := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))

	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if seen[key] {
			continue
		}
		seen[key] = true
		normalized = append(normalized, skill)
		if len(normalized) == maxSkillListEntries {
			break
		}
	}

	return normalized
}

func dropOverlap(skills, against []string) []string {
	taken := make(map[string]bool, len(against))
	for _, skill := range against {
		taken[strings.ToLower(skill)] = true
	}

	kept := make([]string, 0, len(skills))
	for _, skill := range skills {
		if taken[strings.ToLower(skill)] {
			continue
		}
		kept = append(kept, skill)
	}
	return kept
}

// cleanJSONBlock removes markdown code fences the model may wrap the
// payload in despite being told not to.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// extractJSON locates the outermost JSON object inside surrounding prose.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}
	return text
}
