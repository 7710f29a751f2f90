package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_Deterministic(t *testing.T) {
	composer := NewPromptComposer(20000)

	first := composer.Compose("backend engineer role", "python developer resume")
	second := composer.Compose("backend engineer role", "python developer resume")

	assert.Equal(t, first, second)
	assert.Equal(t, Render(first), Render(second))
}

func TestCompose_DelimitedSections(t *testing.T) {
	composer := NewPromptComposer(20000)

	prompt := composer.Compose("Seeking a Go engineer", "Five years writing Go services")
	rendered := Render(prompt)

	assert.Contains(t, rendered, "=== JOB DESCRIPTION ===")
	assert.Contains(t, rendered, "=== END JOB DESCRIPTION ===")
	assert.Contains(t, rendered, "=== RESUME ===")
	assert.Contains(t, rendered, "=== END RESUME ===")
	assert.Contains(t, rendered, "Seeking a Go engineer")
	assert.Contains(t, rendered, "Five years writing Go services")

	// Rubric precedes the documents
	rubricPos := strings.Index(rendered, "match_score")
	jdPos := strings.Index(rendered, "=== JOB DESCRIPTION ===")
	assert.Less(t, rubricPos, jdPos)
}

func TestCompose_EmbedsRubricAndOutputContract(t *testing.T) {
	composer := NewPromptComposer(20000)

	rendered := Render(composer.Compose("jd text goes here", "resume text goes here"))

	assert.Contains(t, rendered, "matching_skills")
	assert.Contains(t, rendered, "missing_or_weak_skills")
	assert.Contains(t, rendered, "Return ONLY valid JSON")
}

func TestCompose_TruncatesIndependently(t *testing.T) {
	composer := NewPromptComposer(100)

	longJD := strings.Repeat("j", 250)
	shortResume := "short resume text"

	prompt := composer.Compose(longJD, shortResume)

	require.True(t, prompt.JDTruncated)
	assert.False(t, prompt.ResumeTruncated)
	assert.Len(t, prompt.JobDescriptionText, 100)
	assert.Equal(t, shortResume, prompt.ResumeText)
}

func TestCompose_NoTruncationWithinBudget(t *testing.T) {
	composer := NewPromptComposer(100)

	prompt := composer.Compose("fits fine", "also fits fine")

	assert.False(t, prompt.JDTruncated)
	assert.False(t, prompt.ResumeTruncated)
	assert.Equal(t, "fits fine", prompt.JobDescriptionText)
}
