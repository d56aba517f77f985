// Package match links 835 payment records back to previously loaded 837
// claims through an ordered strategy list. A payment that matches nothing is
// a terminal, recorded outcome; it is never dropped.
package match

import (
	"context"
	"fmt"

	"github.com/marbhealth/edipipe/internal/config"
	"github.com/marbhealth/edipipe/internal/model"
	"github.com/marbhealth/edipipe/internal/normalize"
)

// ClaimIndex is the queryable view of previously loaded claims. The loader
// backs it with the canonical store; tests back it with an in-memory fake.
type ClaimIndex interface {
	// ByClaimID returns the header id of the claim whose claim_id equals
	// candidate, or nil when absent.
	ByClaimID(ctx context.Context, candidate string) (*int64, error)
	// ByOriginalClaimID resolves against the payer-assigned original claim id
	// crosswalk.
	ByOriginalClaimID(ctx context.Context, candidate string) (*int64, error)
	// ByReference returns the distinct header ids holding a claim reference
	// with the given qualifier ("" means any qualifier) and value.
	ByReference(ctx context.Context, qualifier, value string) ([]int64, error)
}

// strategy attempts one linking approach. ok=false means the strategy had no
// opinion and the next one runs; ok=true with a nil ClaimHeaderID is a
// terminal non-match (used for ambiguity).
type strategy func(ctx context.Context, p *model.PaymentRecord) (model.MatchResult, bool, error)

// Engine runs the ordered strategies with first-match-wins semantics.
type Engine struct {
	idx        ClaimIndex
	strategies []strategy
}

// New builds an engine over idx. The secondary reference crosswalk is
// included only when enabled in the parse context.
func New(idx ClaimIndex, pctx config.ParseContext) *Engine {
	e := &Engine{idx: idx}
	e.strategies = []strategy{e.exactClaimID, e.originalClaimID}
	if pctx.EnableReferenceCrosswalk {
		e.strategies = append(e.strategies, e.referenceCrosswalk(pctx.ReferenceQualifierPriority))
	}
	return e
}

// Match resolves one payment to zero-or-one claim header. The result always
// carries a reason code, including on failure to match.
func (e *Engine) Match(ctx context.Context, p *model.PaymentRecord) (model.MatchResult, error) {
	for _, s := range e.strategies {
		res, ok, err := s(ctx, p)
		if err != nil {
			return model.MatchResult{}, err
		}
		if ok {
			return res, nil
		}
	}
	return unmatchedReason(p), nil
}

// exactClaimID matches the payment's patient control number (CLP01) against
// claim_headers.claim_id.
func (e *Engine) exactClaimID(ctx context.Context, p *model.PaymentRecord) (model.MatchResult, bool, error) {
	for _, candidate := range normalize.ClaimKeyCandidates(p.PatientControlNumber) {
		id, err := e.idx.ByClaimID(ctx, candidate)
		if err != nil {
			return model.MatchResult{}, false, fmt.Errorf("match by claim id: %w", err)
		}
		if id != nil {
			return model.MatchResult{
				ClaimHeaderID: id,
				Strategy:      model.StrategyExactClaimID,
				ReasonCode:    model.ReasonMatchedExact,
			}, true, nil
		}
	}
	return model.MatchResult{}, false, nil
}

// originalClaimID crosswalks the payer claim control number (CLP07) against
// the original claim id recorded on resubmitted claims.
func (e *Engine) originalClaimID(ctx context.Context, p *model.PaymentRecord) (model.MatchResult, bool, error) {
	for _, candidate := range normalize.ClaimKeyCandidates(p.PayerClaimControlNumber) {
		id, err := e.idx.ByOriginalClaimID(ctx, candidate)
		if err != nil {
			return model.MatchResult{}, false, fmt.Errorf("match by original claim id: %w", err)
		}
		if id != nil {
			return model.MatchResult{
				ClaimHeaderID: id,
				Strategy:      model.StrategyOriginalClaimID,
				ReasonCode:    model.ReasonMatchedCrosswalk,
			}, true, nil
		}
	}
	return model.MatchResult{}, false, nil
}

// referenceCrosswalk resolves CLP07 against claim references, first by the
// configured qualifier priority, then by any qualifier. A lookup that yields
// more than one distinct claim is a terminal non-match with AMBIGUOUS_REF:
// guessing between candidate claims would corrupt downstream reconciliation.
func (e *Engine) referenceCrosswalk(priority []string) strategy {
	qualifiers := make([]string, 0, len(priority)+1)
	qualifiers = append(qualifiers, priority...)
	qualifiers = append(qualifiers, "") // any-qualifier fallback

	return func(ctx context.Context, p *model.PaymentRecord) (model.MatchResult, bool, error) {
		for _, candidate := range normalize.ClaimKeyCandidates(p.PayerClaimControlNumber) {
			for _, qual := range qualifiers {
				ids, err := e.idx.ByReference(ctx, qual, candidate)
				if err != nil {
					return model.MatchResult{}, false, fmt.Errorf("match by reference: %w", err)
				}
				switch {
				case len(ids) == 1:
					reason := model.ReasonMatchedRefPrefix + qual
					if qual == "" {
						reason = model.ReasonMatchedRefPrefix + "ANY"
					}
					return model.MatchResult{
						ClaimHeaderID: &ids[0],
						Strategy:      model.StrategyReference,
						ReasonCode:    reason,
					}, true, nil
				case len(ids) > 1:
					return model.MatchResult{
						Strategy:   model.StrategyUnmatched,
						ReasonCode: model.ReasonAmbiguousRef,
					}, true, nil
				}
			}
		}
		return model.MatchResult{}, false, nil
	}
}

// unmatchedReason names which keys were available once every strategy has
// been exhausted.
func unmatchedReason(p *model.PaymentRecord) model.MatchResult {
	pcnCandidates := normalize.ClaimKeyCandidates(p.PatientControlNumber)
	clp07Candidates := normalize.ClaimKeyCandidates(p.PayerClaimControlNumber)

	reason := model.ReasonNoKeys
	switch {
	case p.PatientControlNumber != "" && len(pcnCandidates) == 0:
		reason = model.ReasonUnusableCLP01
	case p.PayerClaimControlNumber != "" && len(clp07Candidates) == 0:
		reason = model.ReasonUnusableCLP07
	case len(pcnCandidates) > 0:
		reason = model.ReasonNoMatchBothKeys
	case len(clp07Candidates) > 0:
		reason = model.ReasonNoMatchCLP07
	}
	return model.MatchResult{Strategy: model.StrategyUnmatched, ReasonCode: reason}
}
