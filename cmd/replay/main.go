package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/danielpatrickdp/shardeval/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	shards := flag.Int("shards", 1, "number of shard harnesses to split batches across")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--shards N]")
		os.Exit(2)
	}

	os.Exit(runReplay(*fixturePath, *shards))
}

// #endregion main

// #region replay-mode

func runReplay(fixturePath string, shards int) int {
	f, err := replay.LoadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	summary, err := replay.ReplaySharded(f, shards)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	fmt.Printf("%s\n", f.Description)
	fmt.Printf("%d steps, %d examples, %d shard(s)\n\n", summary.TotalSteps, summary.TotalExamples, summary.Shards)

	if len(f.Expected) == 0 {
		fmt.Println("no expected values in fixture; report:")
		for _, name := range sortedNames(summary.Report) {
			fmt.Printf("  %-24s %.6f\n", name, summary.Report[name])
		}
		return 0
	}

	return printComparison(summary.Report, f.Expected, f.ToleranceOrDefault())
}

// #endregion replay-mode

// #region output

// printComparison outputs a comparison table and returns the exit code.
func printComparison(report map[string]float64, expected map[string]float64, tolerance float64) int {
	mismatched := make(map[string]replay.Mismatch)
	for _, m := range replay.Compare(report, expected, tolerance) {
		mismatched[m.Name] = m
	}

	fmt.Printf("%-24s| %-12s| %-12s| %s\n", "Metric", "Expected", "Replayed", "Match")
	fmt.Printf("%-24s+%-13s+%-13s+%s\n",
		"------------------------", "-------------", "-------------", "------")

	for _, name := range sortedNames(expected) {
		got := "—"
		match := "OK"
		if m, bad := mismatched[name]; bad {
			match = "DIFF"
			if !m.Missing {
				got = fmt.Sprintf("%.6f", m.Got)
			}
		} else {
			got = fmt.Sprintf("%.6f", report[name])
		}
		fmt.Printf("%-24s| %-12.6f| %-12s| %s\n", name, expected[name], got, match)
	}

	total := len(expected)
	diverge := len(mismatched)
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", total, total-diverge, diverge)

	if diverge > 0 {
		return 1
	}
	return 0
}

func sortedNames(m map[string]float64) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// #endregion output
