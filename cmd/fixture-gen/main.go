package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"

	"github.com/danielpatrickdp/shardeval/internal/replay"
)

// #region main

func main() {
	outPath := flag.String("out", "", "output fixture JSON path")
	batches := flag.Int("batches", 4, "number of batches to generate")
	batchSize := flag.Int("batch-size", 8, "examples per batch")
	seed := flag.Int64("seed", 1, "random seed")
	separation := flag.Float64("separation", 0.6, "class separation in [0, 1]: 0 is noise, 1 is clean")
	classList := flag.String("classes", "pos,neg", "comma-separated class labels; first is the reference class")
	flag.Parse()

	if *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-gen --out path/to/fixture.json [--batches N] [--batch-size N] [--seed N] [--separation F] [--classes a,b]")
		os.Exit(2)
	}
	if *separation < 0 || *separation > 1 {
		fmt.Fprintln(os.Stderr, "separation must be in [0, 1]")
		os.Exit(2)
	}

	if err := run(*outPath, *batches, *batchSize, *seed, *separation, strings.Split(*classList, ",")); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region generate

func run(outPath string, batches, batchSize int, seed int64, separation float64, classes []string) error {
	if len(classes) < 2 {
		return fmt.Errorf("need at least 2 classes, got %d", len(classes))
	}

	rng := rand.New(rand.NewSource(seed))
	fixture := &replay.Fixture{
		Description: fmt.Sprintf("synthetic %d-class fixture, separation %.2f, seed %d", len(classes), separation, seed),
		Config: replay.FixtureConfig{
			Classes:  classes,
			RefClass: classes[0],
			CalcAUC:  len(classes) == 2,
		},
	}

	for b := 0; b < batches; b++ {
		batch := replay.FixtureBatch{
			TrueLabels: make([]string, batchSize),
			ProbRows:   make([][]float64, batchSize),
		}
		for i := 0; i < batchSize; i++ {
			trueIdx := rng.Intn(len(classes))
			batch.TrueLabels[i] = classes[trueIdx]
			batch.ProbRows[i] = probRow(rng, len(classes), trueIdx, separation)
		}
		fixture.Batches = append(fixture.Batches, batch)
	}

	// Bake the replayed report in as the expected baseline.
	summary, err := replay.Replay(fixture)
	if err != nil {
		return fmt.Errorf("replay generated fixture: %w", err)
	}
	fixture.Expected = summary.Report

	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}

	fmt.Printf("wrote %s: %d batches x %d examples, %d expected metrics\n",
		outPath, batches, batchSize, len(fixture.Expected))
	return nil
}

// probRow draws a probability row biased toward the true class by the
// separation factor, normalized to sum to 1 and rounded to the default
// grid precision.
func probRow(rng *rand.Rand, numClasses, trueIdx int, separation float64) []float64 {
	row := make([]float64, numClasses)
	var sum float64
	for i := range row {
		weight := rng.Float64()
		if i == trueIdx {
			weight += separation * float64(numClasses-1)
		}
		row[i] = weight
		sum += weight
	}
	for i := range row {
		row[i] = math.Round(row[i]/sum*1000) / 1000
	}
	return row
}

// #endregion generate
