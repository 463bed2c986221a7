// Package report serializes a finished run to its four JSON artifacts:
// the confirmed matches in both directions, the two delta lists, and a
// run summary.
package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"photodelta/internal/fileutil"
	"photodelta/internal/match"
)

const (
	matchesFile = "matches.json"
	aMinusBFile = "a_minus_b.json"
	bMinusAFile = "b_minus_a.json"
	summaryFile = "summary.json"
)

// MatchSet is the on-disk shape of matches.json.
type MatchSet struct {
	AtoB []match.Match `json:"A_to_B"`
	BtoA []match.Match `json:"B_to_A"`
}

// Counts summarizes how many files each stage saw.
type Counts struct {
	IndexedA    int `json:"indexedA"`
	IndexedB    int `json:"indexedB"`
	MatchesAtoB int `json:"matchesAtoB"`
	MatchesBtoA int `json:"matchesBtoA"`
	AMinusB     int `json:"aMinusB"`
	BMinusA     int `json:"bMinusA"`
}

// Params echoes the thresholds the run used so results stay interpretable
// after the configuration changes.
type Params struct {
	MaxSide         int `json:"maxSide"`
	HashMaxDistance int `json:"phashMaxDist"`
	MinSharedChunks int `json:"minSharedChunks"`
	MaxCandidates   int `json:"maxCandidates"`
	Features        int `json:"orbFeatures"`
	MinGoodMatches  int `json:"orbMinMatches"`
	MinInliers      int `json:"orbMinInliers"`
}

// Files holds the absolute paths of the written artifacts.
type Files struct {
	Matches string `json:"matches"`
	AMinusB string `json:"aMinusB"`
	BMinusA string `json:"bMinusA"`
	Summary string `json:"summary"`
}

// Summary is the on-disk shape of summary.json.
type Summary struct {
	RunID     string    `json:"runId"`
	Timestamp time.Time `json:"timestamp"`
	SetA      string    `json:"setA"`
	SetB      string    `json:"setB"`
	Counts    Counts    `json:"counts"`
	Params    Params    `json:"params"`
	Outputs   Files     `json:"outputs"`
}

// Write renders both direction results and the summary into dir, creating
// it if needed. The result-derived counts and output paths in the summary
// are filled here; the caller provides everything else. Files are written
// atomically so a crashed run never leaves a truncated artifact.
func Write(dir string, summary Summary, aToB, bToA match.DirectionResult) (Files, error) {
	if err := fileutil.EnsureDir(dir); err != nil {
		return Files{}, fmt.Errorf("create output directory: %w", err)
	}

	files := Files{
		Matches: filepath.Join(dir, matchesFile),
		AMinusB: filepath.Join(dir, aMinusBFile),
		BMinusA: filepath.Join(dir, bMinusAFile),
		Summary: filepath.Join(dir, summaryFile),
	}

	set := MatchSet{AtoB: aToB.Matches, BtoA: bToA.Matches}
	if set.AtoB == nil {
		set.AtoB = []match.Match{}
	}
	if set.BtoA == nil {
		set.BtoA = []match.Match{}
	}
	if err := writeJSON(files.Matches, set); err != nil {
		return Files{}, err
	}
	if err := writeJSON(files.AMinusB, nonNil(aToB.Unmatched)); err != nil {
		return Files{}, err
	}
	if err := writeJSON(files.BMinusA, nonNil(bToA.Unmatched)); err != nil {
		return Files{}, err
	}

	summary.Counts.MatchesAtoB = len(set.AtoB)
	summary.Counts.MatchesBtoA = len(set.BtoA)
	summary.Counts.AMinusB = len(aToB.Unmatched)
	summary.Counts.BMinusA = len(bToA.Unmatched)
	summary.Outputs = files
	if err := writeJSON(files.Summary, summary); err != nil {
		return Files{}, err
	}
	return files, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func nonNil(paths []string) []string {
	if paths == nil {
		return []string{}
	}
	return paths
}
