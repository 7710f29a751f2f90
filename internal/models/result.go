package models

// MatchResult is the canonical verdict returned to the caller. Constructed
// once per request by the response validator; immutable afterwards.
//
// Invariants: 0 <= MatchScore <= 100; skill lists hold non-empty, trimmed,
// case-insensitively unique entries and are disjoint from each other;
// Explanation and Recommendation are non-empty.
type MatchResult struct {
	MatchScore          int      `json:"match_score"`
	MatchedSkills       []string `json:"matched_skills"`
	MissingOrWeakSkills []string `json:"missing_or_weak_skills"`
	Explanation         string   `json:"explanation"`
	Recommendation      string   `json:"recommendation"`
}

// ErrorResponse is the failure body surfaced by the transport layer.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}
