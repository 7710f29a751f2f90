package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"jobfit/candidate-matcher/internal/errs"
	"jobfit/candidate-matcher/internal/models"
	"jobfit/candidate-matcher/internal/services"
)

type ScoreHandler struct {
	pipeline    services.ScoringPipeline
	maxFileSize int64
}

func NewScoreHandler(pipeline services.ScoringPipeline, maxFileSize int64) *ScoreHandler {
	return &ScoreHandler{
		pipeline:    pipeline,
		maxFileSize: maxFileSize,
	}
}

// HandleScore handles POST /score: multipart fields jd_file (plain text)
// and resume_file (PDF), one MatchResult JSON out.
func (h *ScoreHandler) HandleScore(c *fiber.Ctx) error {
	requestID := uuid.New().String()

	jd, err := h.readUpload(c, "jd_file", models.KindJobDescription)
	if err != nil {
		return respondError(c, err)
	}

	resume, err := h.readUpload(c, "resume_file", models.KindResume)
	if err != nil {
		return respondError(c, err)
	}

	log.Printf("🔄 [%s] Scoring request (jd=%d bytes, resume=%d bytes)",
		requestID, len(jd.RawBytes), len(resume.RawBytes))

	result, err := h.pipeline.Score(c.Context(), *jd, *resume)
	if err != nil {
		log.Printf("❌ [%s] Scoring failed: %v", requestID, err)
		return respondError(c, err)
	}

	log.Printf("✅ [%s] Scoring completed (score=%d)", requestID, result.MatchScore)
	return c.JSON(result)
}

func (h *ScoreHandler) readUpload(c *fiber.Ctx, field string, kind models.DocumentKind) (*models.SourceDocument, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, errs.New(errs.KindEmptyDocument, "missing %s upload", field)
	}

	if fileHeader.Size == 0 {
		return nil, errs.New(errs.KindEmptyDocument, "empty %s upload", field)
	}
	if fileHeader.Size > h.maxFileSize {
		return nil, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("%s too large, max size %d bytes", field, h.maxFileSize))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "failed to open %s upload", field)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "failed to read %s upload", field)
	}

	return &models.SourceDocument{
		Kind:     kind,
		RawBytes: raw,
		MimeType: fileHeader.Header.Get("Content-Type"),
	}, nil
}

func respondError(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{
			Error: fiberErr.Message,
			Kind:  "bad_request",
		})
	}

	kind := errs.KindOf(err)
	return c.Status(statusForKind(kind)).JSON(models.ErrorResponse{
		Error: err.Error(),
		Kind:  string(kind),
	})
}

// statusForKind maps the pipeline's failure taxonomy onto HTTP statuses so
// callers can tell "fix the input" (4xx) from "try later" (503/504).
func statusForKind(kind errs.Kind) int {
	switch kind {
	case errs.KindUnsupportedEncoding, errs.KindUnreadablePDF, errs.KindEmptyDocument:
		return fiber.StatusBadRequest
	case errs.KindUpstreamTimeout:
		return fiber.StatusGatewayTimeout
	case errs.KindUpstreamRejected, errs.KindMalformedCompletion:
		return fiber.StatusBadGateway
	case errs.KindUpstreamUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
