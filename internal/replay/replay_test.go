package replay

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

// #region fixture-tests

// TestFixture_BinarySession loads the binary_session fixture, runs Replay(),
// and compares the report against the fixture's expected values. This is the
// primary regression test: if the decision rule or metric accumulation
// changes, this catches drift.
func TestFixture_BinarySession(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "binary_session.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	summary, err := Replay(f)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if summary.TotalSteps != 2 || summary.TotalExamples != 4 {
		t.Fatalf("summary = %d steps / %d examples, want 2 / 4", summary.TotalSteps, summary.TotalExamples)
	}

	mismatches := Compare(summary.Report, f.Expected, f.ToleranceOrDefault())
	for _, m := range mismatches {
		if m.Missing {
			t.Errorf("metric %s missing from report", m.Name)
			continue
		}
		t.Errorf("metric %s = %v, want %v", m.Name, m.Got, m.Want)
	}
}

// TestFixture_ShardedMatchesSingle replays the same fixture across several
// shard counts and checks that the micro-aggregated auc never moves.
func TestFixture_ShardedMatchesSingle(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "binary_session.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	single, err := Replay(f)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	for _, shards := range []int{2, 3} {
		sharded, err := ReplaySharded(f, shards)
		if err != nil {
			t.Fatalf("ReplaySharded(%d): %v", shards, err)
		}
		if sharded.Shards != shards {
			t.Fatalf("summary shards = %d, want %d", sharded.Shards, shards)
		}
		if diff := math.Abs(single.Report["auc"] - sharded.Report["auc"]); diff > 1e-12 {
			t.Fatalf("%d shards: auc = %v, single = %v", shards, sharded.Report["auc"], single.Report["auc"])
		}
	}
}

func TestLoadFixture_NotFound(t *testing.T) {
	if _, err := LoadFixture("testdata/nonexistent.json"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoadFixture_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

// #endregion fixture-tests

// #region replay-tests

func TestReplay_InvalidShardCount(t *testing.T) {
	f := &Fixture{Config: FixtureConfig{Classes: []string{"a", "b"}}}
	if _, err := ReplaySharded(f, 0); err == nil {
		t.Fatal("expected error for zero shards")
	}
}

func TestReplay_RaggedBatch(t *testing.T) {
	f := &Fixture{
		Config: FixtureConfig{Classes: []string{"a", "b"}},
		Batches: []FixtureBatch{
			{TrueLabels: []string{"a", "b"}, ProbRows: [][]float64{{0.5, 0.5}}},
		},
	}
	if _, err := Replay(f); err == nil {
		t.Fatal("expected error for ragged batch")
	}
}

func TestCompare(t *testing.T) {
	report := map[string]float64{"auc": 0.75, "weighted_f1": 0.5}
	expected := map[string]float64{"auc": 0.75, "weighted_f1": 0.625, "loss": 0.1}

	mismatches := Compare(report, expected, 1e-9)
	if len(mismatches) != 2 {
		t.Fatalf("got %d mismatches, want 2", len(mismatches))
	}
	// Sorted by name: loss (missing) before weighted_f1 (diverged).
	if mismatches[0].Name != "loss" || !mismatches[0].Missing {
		t.Fatalf("first mismatch = %+v, want missing loss", mismatches[0])
	}
	if mismatches[1].Name != "weighted_f1" || mismatches[1].Missing {
		t.Fatalf("second mismatch = %+v, want diverged weighted_f1", mismatches[1])
	}
}

func TestCompareWithinTolerance(t *testing.T) {
	report := map[string]float64{"auc": 0.7500000001}
	expected := map[string]float64{"auc": 0.75}
	if ms := Compare(report, expected, 1e-6); len(ms) != 0 {
		t.Fatalf("unexpected mismatches: %+v", ms)
	}
}

func TestFixtureConfigDefaults(t *testing.T) {
	fc := FixtureConfig{Classes: []string{"a", "b"}}
	config := fc.ToHarnessConfig()
	if config.Threshold != 0.5 {
		t.Fatalf("threshold = %v, want 0.5", config.Threshold)
	}
	if config.AUCDecimalPlaces != 3 {
		t.Fatalf("decimal places = %d, want 3", config.AUCDecimalPlaces)
	}
}

// #endregion replay-tests
