package models

// AnalysisPrompt is the full instruction payload sent upstream. It is
// immutable once composed: the same pair of documents always produces the
// same prompt, so one logical request stays attributable across retries.
type AnalysisPrompt struct {
	Instructions       string
	JobDescriptionText string
	ResumeText         string

	// Set when the corresponding document was clipped to the character
	// budget during composition.
	JDTruncated     bool
	ResumeTruncated bool
}

// RawCompletion is the upstream model's unparsed reply. Transient; it is
// discarded as soon as the validator has produced a MatchResult.
type RawCompletion struct {
	Text            string
	FinishedCleanly bool
}
