package main

import (
	"bytes"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/limaJavier/floorplanning/pkg/report"
	"github.com/samber/lo"
)

const (
	executablePath = "../../bin/floorplanning"
	outputFile     = "benchmark_results.csv"

	exitSolved     = 0
	exitNoSolution = 2
)

type Mode int

const (
	normal Mode = iota
	precision
)

var modes = map[Mode]string{
	normal:    "normal",
	precision: "precision",
}

type BenchmarkResult struct {
	Seed          int64
	Mode          Mode
	Status        string
	Rho           float64
	Utilization   float64
	Objective     int64
	Duration      int64
	Memory        float32
	CpuPercentage int64
	Valid         bool
}

func main() {
	seedsPtr := flag.Int("seeds", 5, "Number of seeds to sweep, starting at 1")
	timePtr := flag.Duration("time", 2*time.Minute, "Time budget of every run")
	threadsPtr := flag.Int("threads", 4, "Solver workers of every run")
	flag.Parse()

	seeds := lo.RangeFrom(int64(1), *seedsPtr)
	results := make([]BenchmarkResult, 0, len(seeds)*len(modes))

	for _, seed := range seeds {
		for _, mode := range []Mode{normal, precision} {
			fmt.Printf("Benchmarking seed %v in %v mode\n", seed, modes[mode])
			results = append(results, measure(seed, mode, *timePtr, *threadsPtr))
		}
	}

	toCsv(results)
}

func measure(seed int64, mode Mode, budget time.Duration, threads int) BenchmarkResult {
	outdir, err := os.MkdirTemp("", "floorplanning-benchmark-")
	if err != nil {
		log.Fatalf("cannot create output directory: %v", err)
	}
	defer os.RemoveAll(outdir)

	args := []string{"-v", executablePath, "solve",
		"--seed", fmt.Sprint(seed),
		"--time", budget.String(),
		"--threads", fmt.Sprint(threads),
		"--outdir", outdir,
	}
	if mode == precision {
		args = append(args, "--precision")
	}
	cmd := exec.Command("/usr/bin/time", args...)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	cmd.Run()
	result := BenchmarkResult{Seed: seed, Mode: mode}
	switch cmd.ProcessState.ExitCode() {
	case exitSolved:
		rep, err := report.Read(filepath.Join(outdir, "floorplan.json"))
		if err != nil {
			log.Fatalf("cannot read the report of seed %v in %v mode: %v", seed, modes[mode], err)
		}
		result.Status = rep.Outcome.Status
		result.Rho = rep.Outcome.Target
		result.Utilization = rep.Metrics.Space.ActualUtilization
		result.Objective = rep.Outcome.Objective
		result.Valid = rep.Outcome.Valid
	case exitNoSolution:
		result.Status = "NO_SOLUTION"
	default:
		log.Fatalf("an error occurred during the execution of \"floorplanning\" with seed %v in %v mode: %v\n", seed, modes[mode], stdErr.String())
	}

	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) string {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			log.Fatalf("Substring \"%v\" could not be found", substr)
		}
		return line
	}

	result.Duration = parseDurationLine(getLine("wall clock"))
	result.Memory = parseMemoryLine(getLine("maximum resident set size"))
	result.CpuPercentage = parseCpuPercentageLine(getLine("percent of cpu"))
	return result
}

func toCsv(results []BenchmarkResult) {
	file, err := os.Create(outputFile)
	if err != nil {
		log.Fatalf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(header()); err != nil {
		log.Fatalf("cannot write CSV header: %v", err)
	}
	for _, result := range results {
		if err := writer.Write(record(result)); err != nil {
			log.Fatalf("cannot write CSV record: %v", err)
		}
	}
}

func header() []string {
	return []string{"Seed", "Mode", "Status", "Rho", "Utilization", "Objective", "Duration(ms)", "Memory(MB)", "CPU(%)", "Valid"}
}

func record(result BenchmarkResult) []string {
	return []string{
		fmt.Sprintf("%d", result.Seed),
		modes[result.Mode],
		result.Status,
		fmt.Sprintf("%.4f", result.Rho),
		fmt.Sprintf("%.4f", result.Utilization),
		fmt.Sprintf("%d", result.Objective),
		fmt.Sprintf("%d", result.Duration),
		fmt.Sprintf("%.1f", result.Memory),
		fmt.Sprintf("%d", result.CpuPercentage),
		fmt.Sprintf("%v", result.Valid),
	}
}

func parseDurationLine(line string) int64 {
	durationStr := strings.Split(line, "(h:mm:ss or m:ss):")[1][1:]
	return parseDuration(durationStr)
}

func parseDuration(durationStr string) int64 {
	parts := strings.Split(durationStr, ":")
	secondsStr := parts[len(parts)-1]
	secondsParts := strings.Split(secondsStr, ".")

	var duration int64
	if len(parts) == 3 { // h:mm:ss
		hours := lo.Must(strconv.Atoi(parts[0]))
		minutes := lo.Must(strconv.Atoi(parts[1]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(hours*3600+minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else if len(parts) == 2 { // m:ss
		minutes := lo.Must(strconv.Atoi(parts[0]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else {
		log.Fatalf("unexpected duration format: %v", durationStr)
	}
	return duration
}

func parseMemoryLine(line string) float32 {
	memoryStr := strings.Split(line, ":")[1][1:]
	return float32(lo.Must(strconv.ParseFloat(memoryStr, 32))) / 1024
}

func parseCpuPercentageLine(line string) int64 {
	percentageStr := strings.Split(line, ":")[1][1:]
	percentageStr = percentageStr[:len(percentageStr)-1]
	return int64(lo.Must(strconv.Atoi(percentageStr)))
}
