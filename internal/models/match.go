package models

// ScoredMatch pairs a candidate with its composite similarity score, rounded to one decimal place.
type ScoredMatch struct {
	Record TrackRecord `json:"record"`
	Score  float64     `json:"score"`
}

// MatchResult is the Matcher output for one query.
//
// BestByPopularity is nil when no candidate passes the duration filter.
// BestByScore is nil when the candidate list is empty.
type MatchResult struct {
	BestByPopularity *TrackRecord `json:"best_by_popularity,omitempty"`
	BestByScore      *ScoredMatch `json:"best_by_score,omitempty"`
}

// Found reports whether either selection produced a track.
func (r MatchResult) Found() bool {
	return r.BestByPopularity != nil || r.BestByScore != nil
}

// ReconciliationDelta lists the ids to add to and remove from the current state.
//
// Both slices are sorted ascending and disjoint.
type ReconciliationDelta struct {
	ToAdd    []string `json:"to_add"`
	ToRemove []string `json:"to_remove"`
}

// IsEmpty reports whether both sides are already synchronized.
func (d ReconciliationDelta) IsEmpty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// LocalMatch is the outcome of matching one library file against catalog search results.
//
// Err is set when the search itself failed; Result is then empty.
type LocalMatch struct {
	Entry  LibraryEntry `json:"entry"`
	Result MatchResult  `json:"result"`
	Err    error        `json:"-"`
}

// Failed reports whether the search for this entry returned an error.
func (m LocalMatch) Failed() bool {
	return m.Err != nil
}

// CatalogID returns the id persisted for the entry: the popularity pick, else the score pick.
func (m LocalMatch) CatalogID() string {
	switch {
	case m.Result.BestByPopularity != nil:
		return m.Result.BestByPopularity.ID
	case m.Result.BestByScore != nil:
		return m.Result.BestByScore.Record.ID
	default:
		return ""
	}
}
