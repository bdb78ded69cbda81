// Package main benchmarks the donorlens CLI against synthetic gift exports.
// It generates exports of several sizes, runs each command several times,
// treating the first cached run as cold and averaging the rest as warm,
// and writes a CSV summary for performance tracking.
//
// Prerequisites:
// - donorlens binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the generated exports and cache file (default: a temp dir)
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Datasets    map[string]int // name -> gift rows
	Commands    []string
}

func main() {
	workDir := ""
	switch len(os.Args) {
	case 1:
		dir, err := os.MkdirTemp("", "donorlens-bench-*")
		if err != nil {
			fmt.Printf("Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
		workDir = dir
	case 2:
		workDir = os.Args[1]
	default:
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     workDir,
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Datasets: map[string]int{
			"small":  1_000,
			"medium": 50_000,
			"large":  500_000,
		},
		Commands: []string{"report", "queue", "trend", "donors"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results, config.Commands)
}

// checkPrerequisites verifies that the donorlens binary exists and the work dir is usable
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("donorlens"); err != nil {
		return fmt.Errorf("donorlens binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// datasetNames returns the dataset names from smallest to largest.
func datasetNames(config BenchmarkConfig) []string {
	names := make([]string, 0, len(config.Datasets))
	for name := range config.Datasets {
		names = append(names, name)
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && config.Datasets[names[j]] < config.Datasets[names[j-1]]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	return names
}

// runBenchmarks executes all benchmark tests across generated datasets
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Datasets), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, name := range datasetNames(config) {
		path := filepath.Join(config.WorkDir, name+".csv")
		fmt.Printf("Generating %s dataset (%d gifts)\n", name, config.Datasets[name])
		if err := generateExport(path, config.Datasets[name]); err != nil {
			fmt.Printf("Warning: failed to generate %s: %v\n", name, err)
			continue
		}

		for _, command := range config.Commands {
			results = append(results, runBenchmarkSuite(config, name, path, command))
		}
	}

	return results
}

// generateExport writes a deterministic gift export with the given number of rows.
func generateExport(path string, rows int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"Donor ID", "Name", "Gift Date", "Amount", "Pledge Amount", "Pledge Due Date", "Campaign", "Acknowledged", "Ack Date"}); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(42, uint64(rows)))
	donors := max(rows/4, 1)
	campaigns := []string{"Spring Appeal", "Gala", "Year End", "Capital", ""}
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	for i := range rows {
		id := rng.IntN(donors)
		gift := end.AddDate(0, 0, -rng.IntN(5*365))
		amount := 10 + rng.Float64()*rng.Float64()*5000
		record := []string{
			"D" + strconv.Itoa(id),
			"Donor " + strconv.Itoa(id),
			gift.Format("2006-01-02"),
			strconv.FormatFloat(amount, 'f', 2, 64),
			"", "",
			campaigns[i%len(campaigns)],
			"no", "",
		}
		if rng.IntN(20) == 0 {
			record[4] = strconv.FormatFloat(amount*3, 'f', 2, 64)
			record[5] = gift.AddDate(0, 6, 0).Format("2006-01-02")
		}
		if rng.IntN(3) > 0 {
			record[7] = "yes"
			record[8] = gift.AddDate(0, 0, rng.IntN(14)).Format("2006-01-02")
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, dataset, path, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, dataset)
	cacheFile := filepath.Join(config.WorkDir, "bench_cache.db")
	_ = os.Remove(cacheFile)

	// Helper to run a benchmark phase
	runPhase := func(cacheArgs []string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, path, command, cacheArgs, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase([]string{"--cache-backend", "none"}, config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase([]string{"--cache-backend", "sqlite", "--cache-db-connect", cacheFile}, config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:     dataset,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a donorlens command multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, path, command string, cacheArgs []string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{command, path, "--as-of", "2024-06-30", "--color", "no"}, cacheArgs...)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("donorlens", args...)
		cmd.Dir = config.WorkDir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	return strings.Contains(string(output), "Report completed in")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("donorlens_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult, commands []string) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range commands {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
