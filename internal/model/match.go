package model

// MatchStrategy names the strategy that produced (or exhausted) a match
// attempt. The strategy keys double as aggregation buckets in load summaries.
type MatchStrategy string

const (
	StrategyExactClaimID    MatchStrategy = "clp01"
	StrategyOriginalClaimID MatchStrategy = "clp07_original_claim_id"
	StrategyReference       MatchStrategy = "clp07_ref"
	StrategyUnmatched       MatchStrategy = "unmatched"
)

// MatchStrategyKeys lists all strategy buckets in reporting order.
var MatchStrategyKeys = []MatchStrategy{
	StrategyExactClaimID,
	StrategyOriginalClaimID,
	StrategyReference,
	StrategyUnmatched,
}

// Match reason codes. MATCHED_* identify the winning strategy; NO_MATCH_*
// and AMBIGUOUS_REF identify which strategies were attempted and why none
// produced a link. "No match" is a terminal, recorded outcome, never an
// error.
const (
	ReasonMatchedExact     = "MATCHED_EXACT"
	ReasonMatchedCrosswalk = "MATCHED_CROSSWALK"
	ReasonMatchedRefPrefix = "MATCHED_REF_" // + qualifier, e.g. MATCHED_REF_D9
	ReasonAmbiguousRef     = "AMBIGUOUS_REF"
	ReasonNoMatchBothKeys  = "NO_MATCH_CLP01_CLP07"
	ReasonNoMatchCLP07     = "NO_MATCH_CLP07"
	ReasonNoKeys           = "NO_KEYS"
	ReasonUnusableCLP01    = "UNUSABLE_CLP01"
	ReasonUnusableCLP07    = "UNUSABLE_CLP07"
)

// MatchResult is the outcome of matching one payment to zero-or-one claim.
// Always produced, even on failure to match.
type MatchResult struct {
	ClaimHeaderID *int64
	Strategy      MatchStrategy
	ReasonCode    string
}

// Matched reports whether the result links to a claim header.
func (r MatchResult) Matched() bool {
	return r.ClaimHeaderID != nil
}
