package delta_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"photodelta/internal/delta"
	"photodelta/internal/report"
	"photodelta/internal/testsupport"
)

// buildSets writes two photo directories: A holds a textured image plus an
// unrelated one, B holds a byte-identical copy of the first.
func buildSets(t *testing.T) (setA, setB string) {
	t.Helper()
	base := t.TempDir()
	setA = filepath.Join(base, "a")
	setB = filepath.Join(base, "b")
	testsupport.WriteTexturedPNG(t, filepath.Join(setA, "shared.png"), 11)
	testsupport.WriteTexturedPNG(t, filepath.Join(setA, "only_in_a.png"), 99)
	testsupport.WriteTexturedPNG(t, filepath.Join(setB, "shared_copy.png"), 11)
	return setA, setB
}

func TestRunEndToEnd(t *testing.T) {
	setA, setB := buildSets(t)
	cfg := testsupport.NewConfig(t)

	res, err := delta.Run(context.Background(), delta.Options{
		SetA:   setA,
		SetB:   setB,
		Config: cfg,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Summary.Counts.IndexedA != 2 || res.Summary.Counts.IndexedB != 1 {
		t.Fatalf("unexpected indexed counts %+v", res.Summary.Counts)
	}
	if len(res.AtoB.Matches) != 1 {
		t.Fatalf("expected one A to B match, got %+v", res.AtoB)
	}
	m := res.AtoB.Matches[0]
	if filepath.Base(m.SrcPath) != "shared.png" || filepath.Base(m.DstPath) != "shared_copy.png" {
		t.Fatalf("wrong pairing %+v", m)
	}
	if m.HashDistance != 0 {
		t.Fatalf("identical rasters must hash identically, got distance %d", m.HashDistance)
	}
	if len(res.AtoB.Unmatched) != 1 || filepath.Base(res.AtoB.Unmatched[0]) != "only_in_a.png" {
		t.Fatalf("unexpected A minus B %v", res.AtoB.Unmatched)
	}
	if len(res.BtoA.Matches) != 1 || len(res.BtoA.Unmatched) != 0 {
		t.Fatalf("unexpected B to A result %+v", res.BtoA)
	}
	if res.Summary.RunID == "" {
		t.Fatal("missing run ID")
	}

	for _, p := range []string{res.Files.Matches, res.Files.AMinusB, res.Files.BMinusA, res.Files.Summary} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing artifact %s: %v", p, err)
		}
	}
	var sum report.Summary
	raw, err := os.ReadFile(res.Files.Summary)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if err := json.Unmarshal(raw, &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Counts != res.Summary.Counts {
		t.Fatalf("summary on disk %+v differs from result %+v", sum.Counts, res.Summary.Counts)
	}
}

func TestRunSecondPassReusesIndex(t *testing.T) {
	setA, setB := buildSets(t)
	cfg := testsupport.NewConfig(t)

	if _, err := delta.Run(context.Background(), delta.Options{SetA: setA, SetB: setB, Config: cfg}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	res, err := delta.Run(context.Background(), delta.Options{SetA: setA, SetB: setB, Config: cfg})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if res.StatsA.Added != 0 || res.StatsA.Updated != 0 || res.StatsA.Removed != 0 {
		t.Fatalf("second pass should be incremental, got %+v", res.StatsA)
	}
	if res.StatsA.Unchanged != 2 || res.StatsB.Unchanged != 1 {
		t.Fatalf("unexpected unchanged counts %+v %+v", res.StatsA, res.StatsB)
	}
}

func TestRunFailsOnEmptySet(t *testing.T) {
	base := t.TempDir()
	setA := filepath.Join(base, "a")
	setB := filepath.Join(base, "b")
	if err := os.MkdirAll(setA, 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteTexturedPNG(t, filepath.Join(setB, "img.png"), 3)
	cfg := testsupport.NewConfig(t)

	_, err := delta.Run(context.Background(), delta.Options{SetA: setA, SetB: setB, Config: cfg})
	if err == nil {
		t.Fatal("expected error for empty set A")
	}
	if got := err.Error(); got != "set A indexed 0 files under "+setA {
		t.Fatalf("unexpected error %q", got)
	}
}

func TestRunReportsPhaseProgress(t *testing.T) {
	setA, setB := buildSets(t)
	cfg := testsupport.NewConfig(t)

	phases := map[string]bool{}
	_, err := delta.Run(context.Background(), delta.Options{
		SetA:   setA,
		SetB:   setB,
		Config: cfg,
		Progress: func(phase string, done, total int) {
			phases[phase] = true
			if done < 1 || done > total {
				t.Errorf("phase %s reported done=%d total=%d", phase, done, total)
			}
		},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, phase := range []string{delta.PhaseIndexA, delta.PhaseIndexB, delta.PhaseMatchAtoB, delta.PhaseMatchBtoA} {
		if !phases[phase] {
			t.Errorf("phase %s never reported progress", phase)
		}
	}
}

func TestReconcileSetStandalone(t *testing.T) {
	setA, _ := buildSets(t)
	cfg := testsupport.NewConfig(t)

	stats, err := delta.ReconcileSet(context.Background(), cfg, "A", setA, nil, nil)
	if err != nil {
		t.Fatalf("ReconcileSet failed: %v", err)
	}
	if stats.Added != 2 {
		t.Fatalf("expected 2 added, got %+v", stats)
	}

	stats, err = delta.ReconcileSet(context.Background(), cfg, "A", setA, nil, nil)
	if err != nil {
		t.Fatalf("second ReconcileSet failed: %v", err)
	}
	if stats.Unchanged != 2 || stats.Added != 0 {
		t.Fatalf("expected incremental pass, got %+v", stats)
	}

	if _, err := os.Stat(filepath.Join(cfg.Paths.IndexDir, "a.sqlite")); err != nil {
		t.Fatalf("index database not created: %v", err)
	}
}

func TestRunRejectsMissingInputs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := delta.Run(context.Background(), delta.Options{Config: cfg}); err == nil {
		t.Fatal("expected error for missing set directories")
	}
	if _, err := delta.Run(context.Background(), delta.Options{SetA: "/a", SetB: "/b"}); err == nil {
		t.Fatal("expected error for missing config")
	}
}
