// Command poolbench drives all three pool shapes through an empty-task
// throughput scenario and prints a ranked comparison table. It exists to
// make the library's steady-state numbers reproducible on a given
// machine, not to stand in for the package's own tests.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"

	"github.com/corepool/corepool/pool"
)

var allShapes = []string{"Balance", "Steady", "Dynamic"}

type shapeResult struct {
	Name             string
	TotalTime        time.Duration
	ThroughputPerSec float64
	Rank             int
}

var (
	bold = color.New(color.Bold)
	red  = color.New(color.FgRed)
)

func newPoolForShape(shape string, workers int) pool.Pool {
	switch shape {
	case "Steady":
		return pool.NewSteadyPool(workers)
	case "Dynamic":
		return pool.NewDynamicPool(workers)
	default:
		return pool.NewBalancePool(workers)
	}
}

// runShape submits totalTasks empty callables in chunkSize-sized batches
// and waits for every one of them to be invoked, timing the whole run.
func runShape(shape string, workers, totalTasks, chunkSize int) shapeResult {
	p := newPoolForShape(shape, workers)
	defer p.Close()

	batch := make([]func(), chunkSize)
	for i := range batch {
		batch[i] = func() {}
	}

	start := time.Now()
	submitted := 0
	for submitted < totalTasks {
		n := chunkSize
		if remaining := totalTasks - submitted; remaining < n {
			n = remaining
		}
		if err := p.SubmitBatch(batch[:n]); err != nil {
			_, _ = red.Printf("error submitting to %s: %v\n", shape, err)
			return shapeResult{Name: shape}
		}
		submitted += n
	}
	p.WaitForTasks()
	elapsed := time.Since(start)

	return shapeResult{
		Name:             shape,
		TotalTime:        elapsed,
		ThroughputPerSec: float64(totalTasks) / elapsed.Seconds(),
	}
}

func printConfiguration(workers, totalTasks, chunkSize int) {
	_, _ = bold.Println("Configuration:")
	fmt.Printf("  Workers:    %d (of %d logical CPUs)\n", workers, runtime.NumCPU())
	fmt.Printf("  Shapes:     %d pool variants\n", len(allShapes))
	fmt.Printf("  Tasks:      %s empty callables\n", formatNumber(totalTasks))
	fmt.Printf("  Batch size: %s per SubmitBatch call\n", formatNumber(chunkSize))
	fmt.Println()
}

func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	out := ""
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out += ","
		}
		out += string(c)
	}
	return out
}

func printResults(results []shapeResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].TotalTime < results[j].TotalTime
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	fmt.Println()
	_, _ = bold.Println("Throughput results")
	fmt.Println()

	fastest := results[0].TotalTime
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Rank", "Pool", "Time", "M tasks/sec", "vs fastest")

	for _, r := range results {
		vs := "baseline"
		if r.Rank != 1 {
			vs = fmt.Sprintf("%.2fx", float64(r.TotalTime)/float64(fastest))
		}
		_ = table.Append(
			fmt.Sprintf("%d", r.Rank),
			r.Name,
			r.TotalTime.Round(time.Millisecond).String(),
			fmt.Sprintf("%.2f", r.ThroughputPerSec/1_000_000),
			vs,
		)
	}
	_ = table.Render()
}

func makeProgressBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(len(allShapes),
		progressbar.OptionSetDescription("Benchmarking pool shapes"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    "=",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)
}

func main() {
	workersFlag := flag.Int("workers", runtime.NumCPU(), "worker count for every pool shape under test")
	tasksFlag := flag.Int("tasks", 5_000_000, "total empty tasks to submit per shape")
	chunkFlag := flag.Int("chunk", 256, "tasks per SubmitBatch call")
	flag.Parse()

	printConfiguration(*workersFlag, *tasksFlag, *chunkFlag)

	bar := makeProgressBar()
	results := make([]shapeResult, 0, len(allShapes))
	for _, shape := range allShapes {
		results = append(results, runShape(shape, *workersFlag, *tasksFlag, *chunkFlag))
		_ = bar.Add(1)
	}

	printResults(results)
}
