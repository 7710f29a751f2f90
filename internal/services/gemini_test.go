package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"jobfit/candidate-matcher/internal/errs"
	"jobfit/candidate-matcher/internal/models"
)

type generateOutcome struct {
	completion *models.RawCompletion
	err        error
}

// scriptedGenerator plays back a fixed sequence of upstream outcomes and
// records every prompt it was handed.
type scriptedGenerator struct {
	outcomes []generateOutcome
	prompts  []string
}

func (s *scriptedGenerator) generate(ctx context.Context, prompt string) (*models.RawCompletion, error) {
	s.prompts = append(s.prompts, prompt)
	idx := len(s.prompts) - 1
	if idx >= len(s.outcomes) {
		idx = len(s.outcomes) - 1
	}
	return s.outcomes[idx].completion, s.outcomes[idx].err
}

func newTestClient(gen textGenerator) *completionClient {
	return &completionClient{
		gen:          gen,
		timeout:      time.Second,
		maxRetries:   2,
		initialDelay: time.Millisecond,
	}
}

func testPrompt() *models.AnalysisPrompt {
	return NewPromptComposer(20000).Compose("backend engineer, Go, Postgres", "five years of Go")
}

func TestComplete_SuccessFirstAttempt(t *testing.T) {
	gen := &scriptedGenerator{outcomes: []generateOutcome{
		{completion: &models.RawCompletion{Text: `{"match_score": 72}`, FinishedCleanly: true}},
	}}
	client := newTestClient(gen)

	completion, err := client.Complete(context.Background(), testPrompt())
	require.NoError(t, err)

	assert.Equal(t, `{"match_score": 72}`, completion.Text)
	assert.True(t, completion.FinishedCleanly)
	assert.Len(t, gen.prompts, 1)
}

func TestComplete_TransientFailuresThenSuccess(t *testing.T) {
	gen := &scriptedGenerator{outcomes: []generateOutcome{
		{err: genai.APIError{Code: 429, Message: "rate limited"}},
		{err: genai.APIError{Code: 503, Message: "overloaded"}},
		{completion: &models.RawCompletion{Text: "payload", FinishedCleanly: true}},
	}}
	client := newTestClient(gen)

	completion, err := client.Complete(context.Background(), testPrompt())
	require.NoError(t, err)

	assert.Equal(t, "payload", completion.Text)
	assert.Len(t, gen.prompts, 3)
}

func TestComplete_RetriesExhausted(t *testing.T) {
	gen := &scriptedGenerator{outcomes: []generateOutcome{
		{err: genai.APIError{Code: 500, Message: "internal error"}},
	}}
	client := newTestClient(gen)

	_, err := client.Complete(context.Background(), testPrompt())
	require.Error(t, err)

	assert.Equal(t, errs.KindUpstreamUnavailable, errs.KindOf(err))
	// bound = 2 retries, so 3 attempts total
	assert.Len(t, gen.prompts, 3)
}

func TestComplete_ClientErrorNotRetried(t *testing.T) {
	gen := &scriptedGenerator{outcomes: []generateOutcome{
		{err: genai.APIError{Code: 400, Message: "malformed request"}},
	}}
	client := newTestClient(gen)

	_, err := client.Complete(context.Background(), testPrompt())
	require.Error(t, err)

	assert.Equal(t, errs.KindUpstreamRejected, errs.KindOf(err))
	assert.Len(t, gen.prompts, 1)
}

func TestComplete_AuthFailureNotRetried(t *testing.T) {
	gen := &scriptedGenerator{outcomes: []generateOutcome{
		{err: genai.APIError{Code: 401, Message: "invalid api key"}},
	}}
	client := newTestClient(gen)

	_, err := client.Complete(context.Background(), testPrompt())
	require.Error(t, err)

	assert.Equal(t, errs.KindUpstreamRejected, errs.KindOf(err))
	assert.Len(t, gen.prompts, 1)
}

func TestComplete_TimeoutNotRetried(t *testing.T) {
	gen := &scriptedGenerator{outcomes: []generateOutcome{
		{err: context.DeadlineExceeded},
	}}
	client := newTestClient(gen)

	_, err := client.Complete(context.Background(), testPrompt())
	require.Error(t, err)

	assert.Equal(t, errs.KindUpstreamTimeout, errs.KindOf(err))
	assert.Len(t, gen.prompts, 1)
}

func TestComplete_IdenticalPromptAcrossRetries(t *testing.T) {
	gen := &scriptedGenerator{outcomes: []generateOutcome{
		{err: genai.APIError{Code: 500}},
		{err: genai.APIError{Code: 500}},
		{completion: &models.RawCompletion{Text: "ok", FinishedCleanly: true}},
	}}
	client := newTestClient(gen)

	_, err := client.Complete(context.Background(), testPrompt())
	require.NoError(t, err)

	require.Len(t, gen.prompts, 3)
	assert.Equal(t, gen.prompts[0], gen.prompts[1])
	assert.Equal(t, gen.prompts[1], gen.prompts[2])
}

func TestIsTransientStatus(t *testing.T) {
	assert.True(t, isTransientStatus(429))
	assert.True(t, isTransientStatus(500))
	assert.True(t, isTransientStatus(503))
	assert.False(t, isTransientStatus(400))
	assert.False(t, isTransientStatus(401))
	assert.False(t, isTransientStatus(404))
}
