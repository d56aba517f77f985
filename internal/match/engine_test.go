package match

import (
	"context"
	"testing"

	"github.com/marbhealth/edipipe/internal/config"
	"github.com/marbhealth/edipipe/internal/model"
)

// fakeIndex backs the engine with in-memory maps. refs is keyed by
// qualifier then value, mirroring the distinct-claims semantics of the
// store-backed index.
type fakeIndex struct {
	claims    map[string]int64
	originals map[string]int64
	refs      map[string]map[string][]int64
}

func (f *fakeIndex) ByClaimID(_ context.Context, candidate string) (*int64, error) {
	if id, ok := f.claims[candidate]; ok {
		return &id, nil
	}
	return nil, nil
}

func (f *fakeIndex) ByOriginalClaimID(_ context.Context, candidate string) (*int64, error) {
	if id, ok := f.originals[candidate]; ok {
		return &id, nil
	}
	return nil, nil
}

func (f *fakeIndex) ByReference(_ context.Context, qualifier, value string) ([]int64, error) {
	var ids []int64
	if qualifier != "" {
		ids = f.refs[qualifier][value]
	} else {
		for _, byValue := range f.refs {
			ids = append(ids, byValue[value]...)
		}
	}
	seen := make(map[int64]struct{}, len(ids))
	var distinct []int64
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}
	return distinct, nil
}

func emptyIndex() *fakeIndex {
	return &fakeIndex{
		claims:    map[string]int64{},
		originals: map[string]int64{},
		refs:      map[string]map[string][]int64{},
	}
}

func (f *fakeIndex) addRef(qualifier, value string, ids ...int64) {
	if f.refs[qualifier] == nil {
		f.refs[qualifier] = map[string][]int64{}
	}
	f.refs[qualifier][value] = append(f.refs[qualifier][value], ids...)
}

func payment(clp01, clp07 string) *model.PaymentRecord {
	return &model.PaymentRecord{
		FileName:                "remit.edi",
		PatientControlNumber:    clp01,
		PayerClaimControlNumber: clp07,
	}
}

func matchOne(t *testing.T, idx ClaimIndex, p *model.PaymentRecord) model.MatchResult {
	t.Helper()
	res, err := New(idx, config.Defaults().Matching).Match(context.Background(), p)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	return res
}

func TestMatch_ExactWinsOverCrosswalk(t *testing.T) {
	idx := emptyIndex()
	idx.claims["CLM100"] = 11
	idx.originals["PAYER9"] = 22

	res := matchOne(t, idx, payment("CLM100", "PAYER9"))
	if !res.Matched() || *res.ClaimHeaderID != 11 {
		t.Fatalf("got %+v, want claim 11", res)
	}
	if res.Strategy != model.StrategyExactClaimID || res.ReasonCode != model.ReasonMatchedExact {
		t.Errorf("strategy/reason: %q %q", res.Strategy, res.ReasonCode)
	}
}

func TestMatch_CrosswalkWinsOverReference(t *testing.T) {
	idx := emptyIndex()
	idx.originals["PAYER9"] = 22
	idx.addRef("D9", "PAYER9", 33)

	res := matchOne(t, idx, payment("NOPE", "PAYER9"))
	if !res.Matched() || *res.ClaimHeaderID != 22 {
		t.Fatalf("got %+v, want claim 22", res)
	}
	if res.Strategy != model.StrategyOriginalClaimID || res.ReasonCode != model.ReasonMatchedCrosswalk {
		t.Errorf("strategy/reason: %q %q", res.Strategy, res.ReasonCode)
	}
}

func TestMatch_ReferenceQualifierPriority(t *testing.T) {
	idx := emptyIndex()
	idx.addRef("D9", "PAYER9", 33)
	idx.addRef("9A", "PAYER9", 44)

	// D9 precedes 9A in the default priority list.
	res := matchOne(t, idx, payment("NOPE", "PAYER9"))
	if !res.Matched() || *res.ClaimHeaderID != 33 {
		t.Fatalf("got %+v, want claim 33 via D9", res)
	}
	if res.ReasonCode != "MATCHED_REF_D9" {
		t.Errorf("reason: got %q", res.ReasonCode)
	}
	if res.Strategy != model.StrategyReference {
		t.Errorf("strategy: got %q", res.Strategy)
	}
}

func TestMatch_ReferenceAnyQualifierFallback(t *testing.T) {
	idx := emptyIndex()
	// EA is not in the priority list, so only the any-qualifier pass sees it.
	idx.addRef("EA", "PAYER9", 55)

	res := matchOne(t, idx, payment("NOPE", "PAYER9"))
	if !res.Matched() || *res.ClaimHeaderID != 55 {
		t.Fatalf("got %+v, want claim 55", res)
	}
	if res.ReasonCode != "MATCHED_REF_ANY" {
		t.Errorf("reason: got %q", res.ReasonCode)
	}
}

func TestMatch_AmbiguousReferenceIsTerminal(t *testing.T) {
	idx := emptyIndex()
	idx.addRef("D9", "PAYER9", 33, 44)
	// A later qualifier would match cleanly, but ambiguity at D9 must stop
	// the search rather than guess.
	idx.addRef("9A", "PAYER9", 55)

	res := matchOne(t, idx, payment("NOPE", "PAYER9"))
	if res.Matched() {
		t.Fatalf("ambiguous reference must not link: %+v", res)
	}
	if res.Strategy != model.StrategyUnmatched || res.ReasonCode != model.ReasonAmbiguousRef {
		t.Errorf("strategy/reason: %q %q", res.Strategy, res.ReasonCode)
	}
}

func TestMatch_CandidateVariants(t *testing.T) {
	idx := emptyIndex()
	// Stored claims are keyed by normalized, zero-trimmed ids.
	idx.claims["123A"] = 66

	res := matchOne(t, idx, payment("00123-A", ""))
	if !res.Matched() || *res.ClaimHeaderID != 66 {
		t.Fatalf("zero-trimmed candidate did not match: %+v", res)
	}
	if res.Strategy != model.StrategyExactClaimID {
		t.Errorf("strategy: got %q", res.Strategy)
	}
}

func TestMatch_CrosswalkDisabled(t *testing.T) {
	idx := emptyIndex()
	idx.addRef("D9", "PAYER9", 33)

	pctx := config.Defaults().Matching
	pctx.EnableReferenceCrosswalk = false
	res, err := New(idx, pctx).Match(context.Background(), payment("NOPE", "PAYER9"))
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if res.Matched() {
		t.Fatalf("reference crosswalk ran while disabled: %+v", res)
	}
	if res.ReasonCode != model.ReasonNoMatchBothKeys {
		t.Errorf("reason: got %q", res.ReasonCode)
	}
}

func TestMatch_UnmatchedReasons(t *testing.T) {
	cases := []struct {
		name   string
		clp01  string
		clp07  string
		reason string
	}{
		{"both_keys_present", "CLM1", "PAYER1", model.ReasonNoMatchBothKeys},
		{"only_clp07", "", "PAYER1", model.ReasonNoMatchCLP07},
		{"no_keys", "", "", model.ReasonNoKeys},
		{"unusable_clp01", "   ", "", model.ReasonUnusableCLP01},
		{"unusable_clp07", "", "   ", model.ReasonUnusableCLP07},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := matchOne(t, emptyIndex(), payment(tc.clp01, tc.clp07))
			if res.Matched() {
				t.Fatalf("unexpected match: %+v", res)
			}
			if res.Strategy != model.StrategyUnmatched {
				t.Errorf("strategy: got %q", res.Strategy)
			}
			if res.ReasonCode != tc.reason {
				t.Errorf("reason: got %q, want %q", res.ReasonCode, tc.reason)
			}
		})
	}
}
