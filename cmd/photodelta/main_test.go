package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"photodelta/internal/config"
	"photodelta/internal/report"
	"photodelta/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	setA       string
	setB       string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.IndexDir = filepath.Join(base, "index")
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Matching.Progress = false

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, &cfgVal)

	setA := filepath.Join(base, "photos-a")
	setB := filepath.Join(base, "photos-b")
	testsupport.WriteTexturedPNG(t, filepath.Join(setA, "shared.png"), 7)
	testsupport.WriteTexturedPNG(t, filepath.Join(setA, "only_a.png"), 31)
	testsupport.WriteTexturedPNG(t, filepath.Join(setB, "shared_renamed.png"), 7)

	return &cliTestEnv{
		cfg:        &cfgVal,
		configPath: configPath,
		setA:       setA,
		setB:       setB,
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRunCommandEndToEnd(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := executeCommand(t, "run",
		"--config", env.configPath,
		"--set-a", env.setA,
		"--set-b", env.setB,
		"--no-progress")
	if err != nil {
		t.Fatalf("run command failed: %v\n%s", err, out)
	}
	for _, want := range []string{"Matches A->B", "Only in A", "Artifacts written to"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	for _, name := range []string{"matches.json", "a_minus_b.json", "b_minus_a.json", "summary.json"} {
		if _, err := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	// The counts in summary.json must reflect a live confirmation stage,
	// not just artifacts existing.
	raw, err := os.ReadFile(filepath.Join(env.cfg.Paths.OutputDir, "summary.json"))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var sum report.Summary
	if err := json.Unmarshal(raw, &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Counts.IndexedA != 2 || sum.Counts.IndexedB != 1 {
		t.Fatalf("unexpected indexed counts %+v", sum.Counts)
	}
	if sum.Counts.MatchesAtoB != 1 || sum.Counts.MatchesBtoA != 1 {
		t.Fatalf("duplicate image not confirmed: %+v", sum.Counts)
	}
	if sum.Counts.AMinusB != 1 || sum.Counts.BMinusA != 0 {
		t.Fatalf("unexpected delta counts %+v", sum.Counts)
	}
}

func TestRunCommandRequiresSets(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := executeCommand(t, "run", "--config", env.configPath); err == nil {
		t.Fatal("expected error without --set-a/--set-b")
	}
}

func TestRunCommandRejectsInvalidOverride(t *testing.T) {
	env := setupCLITestEnv(t)
	_, err := executeCommand(t, "run",
		"--config", env.configPath,
		"--set-a", env.setA,
		"--set-b", env.setB,
		"--min-shared-chunks", "9")
	if err == nil {
		t.Fatal("expected validation error for min-shared-chunks 9")
	}
}

func TestIndexCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := executeCommand(t, "index", "a", env.setA, "--config", env.configPath)
	if err != nil {
		t.Fatalf("index command failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Added") {
		t.Errorf("output missing stats table:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.IndexDir, "a.sqlite")); err != nil {
		t.Errorf("index database not created: %v", err)
	}
}

func TestIndexCommandRejectsUnknownSet(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := executeCommand(t, "index", "c", env.setA, "--config", env.configPath); err == nil {
		t.Fatal("expected error for unknown set label")
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := executeCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v\n%s", err, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	if _, err := executeCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when target exists without --overwrite")
	}
	if _, err := executeCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite failed: %v", err)
	}
}
