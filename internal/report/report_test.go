package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/marbhealth/edipipe/internal/config"
	"github.com/marbhealth/edipipe/internal/model"
)

func TestBuild_TotalsAndGates(t *testing.T) {
	var b Builder
	b.Add(FileResult{FilePath: "a.edi", FileType: "837P", Status: "loaded", Records: 50, RecordErrors: 1, InvalidDates: 1})
	b.Add(FileResult{FilePath: "b.edi", FileType: "837P", Status: "skipped", Records: 50})
	b.Add(FileResult{FilePath: "c.edi", FileType: "835", Status: "loaded", Payments: 40, Unmatched: 2})
	b.Add(FileResult{FilePath: "d.edi", FileType: "837P", Status: "failed", Error: "no ISA header"})
	b.AddMatchCounts(map[model.MatchStrategy]int{model.StrategyExactClaimID: 30, model.StrategyUnmatched: 2})
	b.AddMatchCounts(map[model.MatchStrategy]int{model.StrategyExactClaimID: 8})

	rep := b.Build(config.Defaults().Gates)

	if rep.FilesTotal != 4 || rep.FilesLoaded != 2 || rep.FilesSkipped != 1 || rep.FilesFailed != 1 {
		t.Errorf("file totals: %+v", rep)
	}
	if rep.RecordsTotal != 100 || rep.InvalidDates != 1 {
		t.Errorf("record totals: %d %d", rep.RecordsTotal, rep.InvalidDates)
	}
	if rep.Payments != 40 || rep.Unmatched != 2 {
		t.Errorf("payment totals: %d %d", rep.Payments, rep.Unmatched)
	}
	if rep.MatchCounts[model.StrategyExactClaimID] != 38 {
		t.Errorf("match counts not folded: %v", rep.MatchCounts)
	}

	if len(rep.Gates) != 3 {
		t.Fatalf("gates: %+v", rep.Gates)
	}
	byName := map[string]GateResult{}
	for _, g := range rep.Gates {
		byName[g.Name] = g
	}

	// 1 failed of 4 files = 25% against the 5% default.
	if g := byName["parse_file_fail_rate"]; g.Rate != 25.0 || g.Passed {
		t.Errorf("parse gate: %+v", g)
	}
	// 1 invalid date of 100 records = 1% against 2%.
	if g := byName["invalid_date_rate"]; g.Rate != 1.0 || !g.Passed {
		t.Errorf("date gate: %+v", g)
	}
	// 2 unmatched of 40 payments = 5% against 10%.
	if g := byName["unmatched_835_rate"]; g.Rate != 5.0 || !g.Passed {
		t.Errorf("unmatched gate: %+v", g)
	}
	if rep.Passed {
		t.Error("report must fail when any gate fails")
	}
}

func TestBuild_EmptyDenominatorPasses(t *testing.T) {
	var b Builder
	rep := b.Build(config.QualityGates{})
	if !rep.Passed {
		t.Error("empty batch should pass every gate")
	}
	for _, g := range rep.Gates {
		if g.Rate != 0 || !g.Passed {
			t.Errorf("gate %s: %+v", g.Name, g)
		}
	}
}

func TestBuild_AllLoadedPasses(t *testing.T) {
	var b Builder
	b.Add(FileResult{FilePath: "a.edi", Status: "loaded", Records: 10})
	rep := b.Build(config.Defaults().Gates)
	if !rep.Passed {
		t.Errorf("clean batch failed gates: %+v", rep.Gates)
	}
}

func TestWriteJSON(t *testing.T) {
	var b Builder
	b.Add(FileResult{FilePath: "a.edi", FileType: "835", Status: "loaded", Payments: 3})
	rep := b.Build(config.Defaults().Gates)

	path := filepath.Join(t.TempDir(), "batch.json")
	if err := rep.WriteJSON(path); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var decoded BatchReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if decoded.FilesTotal != 1 || len(decoded.Files) != 1 || decoded.Files[0].FilePath != "a.edi" {
		t.Errorf("round trip: %+v", decoded)
	}
	if len(decoded.Gates) != 3 {
		t.Errorf("gates: %+v", decoded.Gates)
	}
}
