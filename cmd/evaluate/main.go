package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/danielpatrickdp/shardeval/internal/harness"
	"github.com/danielpatrickdp/shardeval/internal/logging"
	"github.com/danielpatrickdp/shardeval/internal/metrics"
	"github.com/danielpatrickdp/shardeval/internal/replay"
	"github.com/danielpatrickdp/shardeval/internal/store"
)

// #region main
func main() {
	fixturePath := flag.String("fixture", "", "path to evaluation fixture JSON")
	dbPath := flag.String("db", envOr("SHARDEVAL_DB", "shardeval.db"), "path to results database")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: evaluate --fixture path/to/fixture.json [--db path/to/shardeval.db]")
		os.Exit(2)
	}

	if err := run(*fixturePath, *dbPath); err != nil {
		log.Fatalf("evaluate: %v", err)
	}
}

// #endregion main

// #region run
func run(fixturePath, dbPath string) error {
	f, err := replay.LoadFixture(fixturePath)
	if err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}

	st, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	configJSON, err := json.Marshal(f.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	runRec, err := st.CreateRun(string(configJSON))
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	fmt.Printf("run %s | fixture: %s | db: %s\n", runRec.RunID, fixturePath, dbPath)

	h, err := harness.New(f.Config.ToHarnessConfig())
	if err != nil {
		return fmt.Errorf("build harness: %w", err)
	}

	for i, batch := range f.Batches {
		step := i + 1
		preds, err := h.Step(batch.TrueLabels, batch.ProbRows)
		if err != nil {
			logStep(st, runRec.RunID, step, len(batch.TrueLabels), nil, "failed", err.Error())
			return fmt.Errorf("batch %d: %w", i, err)
		}

		report, err := h.Report()
		if errors.Is(err, metrics.ErrDegenerateAUC) {
			// Only one class seen so far; the report firms up once both
			// classes have arrived.
			logStep(st, runRec.RunID, step, len(batch.TrueLabels), &logging.BatchRecord{
				TrueLabels: batch.TrueLabels,
				ProbRows:   batch.ProbRows,
				Preds:      preds,
			}, "scored", "report deferred: "+err.Error())
			continue
		}
		if err != nil {
			return fmt.Errorf("report after batch %d: %w", i, err)
		}

		logStep(st, runRec.RunID, step, len(batch.TrueLabels), &logging.BatchRecord{
			TrueLabels: batch.TrueLabels,
			ProbRows:   batch.ProbRows,
			Preds:      preds,
			Report:     report,
		}, "scored", "")
		if err := st.CommitReport(runRec.RunID, step, report); err != nil {
			return fmt.Errorf("commit report after batch %d: %w", i, err)
		}
	}

	report, err := h.Report()
	if err != nil {
		return fmt.Errorf("final report: %w", err)
	}
	fmt.Printf("\n%d steps, %d examples\n", h.Steps(), h.Examples())
	printReport(report)
	return nil
}

// logStep writes step provenance; failures are logged, not fatal.
func logStep(st *store.Store, runID string, step, examples int, batch *logging.BatchRecord, outcome, reason string) {
	var batchJSON string
	if batch != nil {
		if data, err := json.Marshal(batch); err == nil {
			batchJSON = string(data)
		}
	}
	err := logging.LogStep(st.DB(), logging.StepEntry{
		RunID:        runID,
		Step:         step,
		ExampleCount: examples,
		BatchJSON:    batchJSON,
		Outcome:      outcome,
		Reason:       reason,
	})
	if err != nil {
		log.Printf("logging error: %v", err)
	}
}

func printReport(report map[string]float64) {
	names := make([]string, 0, len(report))
	for name := range report {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-24s %.6f\n", name, report[name])
	}
}

// #endregion run

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
