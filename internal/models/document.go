package models

type DocumentKind string

const (
	KindJobDescription DocumentKind = "job_description"
	KindResume         DocumentKind = "resume"
)

// SourceDocument is one uploaded payload. The declared MIME type is a hint
// from the transport layer only; extraction validates by content.
type SourceDocument struct {
	Kind     DocumentKind
	RawBytes []byte
	MimeType string
}

// ExtractedText is the plain-text form of a SourceDocument. It is only ever
// constructed with non-empty, trimmed text; a failed extraction produces an
// error instead.
type ExtractedText struct {
	Kind      DocumentKind
	Text      string
	CharCount int
}
