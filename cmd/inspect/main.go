package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/danielpatrickdp/shardeval/internal/logging"
	"github.com/danielpatrickdp/shardeval/internal/store"
	_ "modernc.org/sqlite"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to shardeval.db")
	last := flag.Int("last", 20, "show N most recent runs")
	runID := flag.String("run", "", "show single run detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/shardeval.db [--last N] [--run id] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *runID != "" {
		err = runDetailMode(st, *runID, *jsonOut)
	} else {
		err = runListMode(st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	RunID     string   `json:"run_id"`
	Classes   []string `json:"classes"`
	Reports   int      `json:"reports"`
	CreatedAt string   `json:"created_at"`
}

type runConfigJSON struct {
	Classes []string `json:"classes"`
}

func runListMode(st *store.Store, last int, jsonOut bool) error {
	runs, err := st.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found")
		return nil
	}

	rows := make([]listRow, len(runs))
	for i, run := range runs {
		var cfg runConfigJSON
		json.Unmarshal([]byte(run.ConfigJSON), &cfg)

		reports, err := st.ListReports(run.RunID)
		if err != nil {
			return err
		}
		rows[i] = listRow{
			RunID:     run.RunID,
			Classes:   cfg.Classes,
			Reports:   len(reports),
			CreatedAt: run.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %-24s  %8s  %s\n", "Run", "Classes", "Reports", "Time")
	fmt.Printf("%-10s+-%-24s+-%8s+-%s\n",
		"----------", "------------------------", "--------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-10s  %-24s  %8d  %s\n", shortID(r.RunID), joinClasses(r.Classes), r.Reports, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	RunID      string              `json:"run_id"`
	ConfigJSON string              `json:"config"`
	CreatedAt  string              `json:"created_at"`
	Steps      []logging.StepEntry `json:"steps,omitempty"`
	LatestStep int                 `json:"latest_step"`
	Report     map[string]float64  `json:"report"`
}

func runDetailMode(st *store.Store, runID string, jsonOut bool) error {
	run, err := st.GetRun(runID)
	if err != nil {
		return err
	}
	latest, err := st.LatestReport(runID)
	if err != nil {
		return fmt.Errorf("run %s has no reports: %w", shortID(runID), err)
	}
	steps, err := logging.ListSteps(st.DB(), runID)
	if err != nil {
		return err
	}

	out := detailOutput{
		RunID:      run.RunID,
		ConfigJSON: run.ConfigJSON,
		CreatedAt:  run.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Steps:      steps,
		LatestStep: latest.Step,
		Report:     latest.Values,
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Run:     %s\n", out.RunID)
	fmt.Printf("Created: %s\n", out.CreatedAt)
	fmt.Printf("Config:  %s\n", out.ConfigJSON)
	fmt.Printf("Steps:   %d logged, latest report at step %d\n", len(steps), out.LatestStep)

	fmt.Printf("\nLatest report:\n")
	names := make([]string, 0, len(out.Report))
	for name := range out.Report {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-24s %.6f\n", name, out.Report[name])
	}

	if len(steps) > 0 {
		fmt.Printf("\nStep log:\n")
		for _, s := range steps {
			reason := ""
			if s.Reason != "" {
				reason = " (" + s.Reason + ")"
			}
			fmt.Printf("  step %-4d %-8s %4d examples%s\n", s.Step, s.Outcome, s.ExampleCount, reason)
		}
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func joinClasses(classes []string) string {
	if len(classes) == 0 {
		return "—"
	}
	return strings.Join(classes, ",")
}

// #endregion output
