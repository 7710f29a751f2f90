package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"

	"jobfit/candidate-matcher/internal/errs"
	"jobfit/candidate-matcher/internal/models"
)

type CompletionClient interface {
	Complete(ctx context.Context, prompt *models.AnalysisPrompt) (*models.RawCompletion, error)
}

// textGenerator issues one raw completion call. Split out from the retry
// policy so tests can script upstream behavior.
type textGenerator interface {
	generate(ctx context.Context, prompt string) (*models.RawCompletion, error)
}

type completionClient struct {
	gen          textGenerator
	timeout      time.Duration
	maxRetries   int
	initialDelay time.Duration
}

func NewCompletionClient(apiKey, model string, timeout time.Duration, maxRetries int, initialDelay time.Duration) (CompletionClient, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &completionClient{
		gen:          &geminiGenerator{client: client, model: model},
		timeout:      timeout,
		maxRetries:   maxRetries,
		initialDelay: initialDelay,
	}, nil
}

// Complete sends the composed prompt upstream. Transient failures (rate
// limits, 5xx, connection resets, empty replies) are retried with
// exponential backoff up to the retry bound; every attempt carries the
// identical rendered prompt. Client-side rejections and timeouts are not
// retried.
func (c *completionClient) Complete(ctx context.Context, prompt *models.AnalysisPrompt) (*models.RawCompletion, error) {
	rendered := Render(prompt)

	var lastErr error
	delay := c.initialDelay

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("⚠️ Completion attempt %d failed: %v. Retrying in %s...", attempt, lastErr, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, errs.Wrap(errs.KindInternal, ctx.Err(), "request canceled while waiting to retry")
			}
			delay *= 2
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		completion, err := c.gen.generate(attemptCtx, rendered)
		cancel()

		if err == nil {
			return completion, nil
		}

		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errs.Wrap(errs.KindUpstreamTimeout, err,
				"completion request timed out after %s", c.timeout)
		}
		if errors.Is(err, context.Canceled) {
			return nil, errs.Wrap(errs.KindInternal, err, "completion request canceled")
		}

		var apiErr genai.APIError
		if errors.As(err, &apiErr) && !isTransientStatus(apiErr.Code) {
			return nil, errs.Wrap(errs.KindUpstreamRejected, err,
				"completion service rejected the request")
		}

		lastErr = err
	}

	return nil, errs.Wrap(errs.KindUpstreamUnavailable, lastErr,
		"completion service unavailable after %d attempts", c.maxRetries+1)
}

// isTransientStatus reports whether an upstream HTTP status is expected to
// succeed on retry.
func isTransientStatus(code int) bool {
	return code == 429 || code >= 500
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func (g *geminiGenerator) generate(ctx context.Context, prompt string) (*models.RawCompletion, error) {
	// Temperature 0 keeps one prompt mapping to one reply as far as the
	// service allows.
	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text content in response")
	}

	finished := len(resp.Candidates) > 0 &&
		resp.Candidates[0].FinishReason == genai.FinishReasonStop

	return &models.RawCompletion{
		Text:            text,
		FinishedCleanly: finished,
	}, nil
}
