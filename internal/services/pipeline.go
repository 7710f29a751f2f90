package services

import (
	"context"
	"log"

	"jobfit/candidate-matcher/internal/models"
)

type ScoringPipeline interface {
	Score(ctx context.Context, jd, resume models.SourceDocument) (*models.MatchResult, error)
}

type scoringPipeline struct {
	extractor DocumentExtractor
	composer  *PromptComposer
	client    CompletionClient
	validator ResponseValidator
}

func NewScoringPipeline(
	extractor DocumentExtractor,
	composer *PromptComposer,
	client CompletionClient,
	validator ResponseValidator,
) ScoringPipeline {
	return &scoringPipeline{
		extractor: extractor,
		composer:  composer,
		client:    client,
		validator: validator,
	}
}

// Score runs extraction, prompt composition, the completion call and
// validation in sequence, short-circuiting on the first failure. The error
// kind of the failing stage propagates unchanged so the transport layer can
// map it. Holds no state across calls; safe for concurrent requests.
func (p *scoringPipeline) Score(ctx context.Context, jd, resume models.SourceDocument) (*models.MatchResult, error) {
	jdText, err := p.extractor.Extract(jd)
	if err != nil {
		return nil, err
	}

	resumeText, err := p.extractor.Extract(resume)
	if err != nil {
		return nil, err
	}

	prompt := p.composer.Compose(jdText.Text, resumeText.Text)
	if prompt.JDTruncated || prompt.ResumeTruncated {
		log.Printf("⚠️ Document truncated to prompt budget (jd=%v resume=%v)",
			prompt.JDTruncated, prompt.ResumeTruncated)
	}

	completion, err := p.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if !completion.FinishedCleanly {
		log.Println("⚠️ Completion did not finish cleanly, attempting to parse anyway")
	}

	// A malformed completion is terminal for the request; the pipeline does
	// not re-query the model.
	return p.validator.Parse(completion)
}
