// package matcher scores catalog search candidates against the tags of a
// local audio file.
//
// All functions are pure and safe for concurrent use.
package matcher

import (
	"math"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/desertthunder/likesync/internal/models"
)

// Composite score weights.
const (
	TitleWeight      = 0.4
	ArtistWeight     = 0.3
	DurationWeight   = 0.2
	PopularityWeight = 0.1
)

// Similarity returns the case-insensitive sequence-matcher ratio 2*M/T of a and b.
//
// Two empty strings are identical (1.0); an empty string against a non-empty one scores 0.0.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(runes(strings.ToLower(a)), runes(strings.ToLower(b))).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// durationSimilarity compares a query length in seconds to a candidate length in milliseconds.
// A zero query duration contributes nothing.
func durationSimilarity(querySeconds, candidateMS int) float64 {
	if querySeconds == 0 {
		return 0
	}
	queryMS := float64(querySeconds) * 1000
	return math.Max(0, 1-math.Abs(queryMS-float64(candidateMS))/queryMS)
}

// Score computes the weighted composite similarity of candidate to query without rounding.
func Score(query models.LocalTrackDescriptor, candidate models.TrackRecord) float64 {
	score := TitleWeight * Similarity(query.Title, candidate.Name)
	if len(candidate.Artists) > 0 {
		score += ArtistWeight * Similarity(query.Artist, candidate.PrimaryArtist())
	}
	score += DurationWeight * durationSimilarity(query.DurationSeconds, candidate.DurationMS)
	score += PopularityWeight * float64(candidate.Popularity) / 100
	return score
}

// roundScore rounds to one decimal place, halves to even on the exact binary value.
func roundScore(s float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(s, 'f', 1, 64), 64)
	return r
}

func validateCandidates(candidates []models.TrackRecord) error {
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// FilterByPopularity returns the most popular candidate whose duration is within
// tolerance (a fraction, 0.05 = 5%) of targetSeconds. The comparison is inclusive.
//
// A zero tolerance or zero target disables the duration filter. Ties go to the
// earliest candidate. It returns nil when no candidate passes.
func FilterByPopularity(candidates []models.TrackRecord, targetSeconds int, tolerance float64) (*models.TrackRecord, error) {
	if targetSeconds < 0 {
		return nil, models.NewValidationError("target_duration", "must not be negative (got %d)", targetSeconds)
	}
	if math.IsNaN(tolerance) || tolerance < 0 || tolerance > 1 {
		return nil, models.NewValidationError("tolerance", "must be within [0, 1] (got %v)", tolerance)
	}
	if err := validateCandidates(candidates); err != nil {
		return nil, err
	}

	filter := tolerance > 0 && targetSeconds > 0

	var best *models.TrackRecord
	for i := range candidates {
		c := candidates[i]
		if filter {
			diff := math.Abs(float64(targetSeconds - c.DurationSeconds()))
			if diff/float64(targetSeconds) > tolerance {
				continue
			}
		}
		if best == nil || c.Popularity > best.Popularity {
			best = &c
		}
	}
	return best, nil
}

// BestMatch returns the highest scoring candidate for query with its score rounded
// to one decimal place. Ties go to the earliest candidate.
//
// Empty candidates yield nil without an error. Malformed input yields a
// [models.ValidationError] and no result.
func BestMatch(query models.LocalTrackDescriptor, candidates []models.TrackRecord) (*models.ScoredMatch, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := validateCandidates(candidates); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	bestIdx, bestScore := 0, Score(query, candidates[0])
	for i := 1; i < len(candidates); i++ {
		if s := Score(query, candidates[i]); s > bestScore {
			bestIdx, bestScore = i, s
		}
	}

	return &models.ScoredMatch{Record: candidates[bestIdx], Score: roundScore(bestScore)}, nil
}

// Match runs both selections for one query.
func Match(query models.LocalTrackDescriptor, candidates []models.TrackRecord, tolerance float64) (models.MatchResult, error) {
	byPopularity, err := FilterByPopularity(candidates, query.DurationSeconds, tolerance)
	if err != nil {
		return models.MatchResult{}, err
	}

	byScore, err := BestMatch(query, candidates)
	if err != nil {
		return models.MatchResult{}, err
	}

	return models.MatchResult{BestByPopularity: byPopularity, BestByScore: byScore}, nil
}
