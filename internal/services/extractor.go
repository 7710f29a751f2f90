package services

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"jobfit/candidate-matcher/internal/errs"
	"jobfit/candidate-matcher/internal/models"
)

// minDocumentChars rejects documents whose extracted text is too short to
// say anything useful about a candidate or a role.
const minDocumentChars = 20

var pdfMagic = []byte("%PDF-")

type DocumentExtractor interface {
	Extract(doc models.SourceDocument) (*models.ExtractedText, error)
}

type documentExtractor struct{}

func NewDocumentExtractor() DocumentExtractor {
	return &documentExtractor{}
}

func (e *documentExtractor) Extract(doc models.SourceDocument) (*models.ExtractedText, error) {
	var (
		text string
		err  error
	)

	// The declared MIME type is only a hint; dispatch on the document kind
	// and validate by content.
	switch doc.Kind {
	case models.KindResume:
		text, err = extractPDFText(doc.RawBytes)
	default:
		text, err = extractPlainText(doc.RawBytes)
	}
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if len(text) < minDocumentChars {
		return nil, errs.New(errs.KindEmptyDocument,
			"could not extract enough text from %s document", doc.Kind)
	}

	return &models.ExtractedText{
		Kind:      doc.Kind,
		Text:      text,
		CharCount: len(text),
	}, nil
}

func extractPlainText(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", errs.New(errs.KindUnsupportedEncoding, "document is not valid UTF-8 text")
	}
	if bytes.ContainsRune(raw, 0) {
		return "", errs.New(errs.KindUnsupportedEncoding, "document contains binary data")
	}
	return string(raw), nil
}

func extractPDFText(raw []byte) (text string, err error) {
	// The pdf package panics on some corrupt inputs instead of returning an
	// error; a panic here always means the document was unreadable.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = errs.New(errs.KindUnreadablePDF, "PDF parsing failed: %v", r)
		}
	}()

	if !bytes.HasPrefix(raw, pdfMagic) {
		return "", errs.New(errs.KindUnreadablePDF, "document is not a PDF")
	}

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", errs.Wrap(errs.KindUnreadablePDF, err, "failed to open PDF")
	}

	var parts []string
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, other pages may still carry text
			continue
		}

		parts = append(parts, pageText)
	}

	return strings.Join(parts, "\n"), nil
}
