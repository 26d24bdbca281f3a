// Command benchmark measures /student/:roll latency against a running
// resultscraper server and writes a JSON report.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nubngpi/resultscraper/models"
)

var (
	apiURL     = flag.String("api-url", "http://localhost:3000", "resultscraper API base URL")
	rolls      = flag.String("rolls", "", "comma-separated roll numbers to look up")
	regulation = flag.String("regulation", "", "regulation year; empty uses the server default")
	runs       = flag.Int("runs", 3, "number of runs per roll")
	output     = flag.String("output", "benchmark-results.json", "JSON output file path")
)

type runResult struct {
	Run        int    `json:"run"`
	HTTPStatus int    `json:"http_status"`
	TotalMs    int64  `json:"total_ms"`
	FetchMs    int64  `json:"fetch_ms"`
	ExtractMs  int64  `json:"extract_ms"`
	EngineUsed string `json:"engine_used,omitempty"`
	Semesters  int    `json:"semesters"`
	Found      bool   `json:"found"`
	Error      string `json:"error,omitempty"`
}

type rollAverages struct {
	TotalMs   float64 `json:"total_ms"`
	FetchMs   float64 `json:"fetch_ms"`
	ExtractMs float64 `json:"extract_ms"`
}

type rollResult struct {
	Roll     string        `json:"roll"`
	Runs     []runResult   `json:"runs"`
	Averages *rollAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp   string       `json:"timestamp"`
	APIURL      string       `json:"api_url"`
	RunsPerRoll int          `json:"runs_per_roll"`
	Results     []rollResult `json:"results"`
}

func main() {
	flag.Parse()

	targets := splitRolls(*rolls)
	if len(targets) == 0 {
		fmt.Fprintln(os.Stderr, "Error: -rolls is required")
		os.Exit(2)
	}

	fmt.Println("=== resultscraper benchmark ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Rolls:     %s\n", strings.Join(targets, ", "))
	fmt.Printf("Runs/roll: %d\n", *runs)
	fmt.Println()

	client := &http.Client{Timeout: 90 * time.Second}
	if err := checkAPI(client, *apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		APIURL:      *apiURL,
		RunsPerRoll: *runs,
	}

	for _, roll := range targets {
		fmt.Printf("Looking up %s ...\n", roll)
		rr := rollResult{Roll: roll}
		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			r := lookup(client, roll, i)
			switch {
			case r.Found:
				fmt.Printf("OK  %dms  %d semesters via %s\n", r.TotalMs, r.Semesters, r.EngineUsed)
			case r.HTTPStatus == http.StatusNotFound:
				fmt.Printf("NOT FOUND  %dms\n", r.TotalMs)
			default:
				fmt.Printf("FAILED: %s\n", r.Error)
			}
			rr.Runs = append(rr.Runs, r)
		}
		rr.Averages = computeAverages(rr.Runs)
		report.Results = append(report.Results, rr)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func splitRolls(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func checkAPI(client *http.Client, baseURL string) error {
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func lookup(client *http.Client, roll string, run int) runResult {
	r := runResult{Run: run}

	endpoint := *apiURL + "/student/" + roll
	if *regulation != "" {
		endpoint += "?regulation=" + *regulation
	}

	resp, err := client.Get(endpoint)
	if err != nil {
		r.Error = fmt.Sprintf("request failed: %v", err)
		return r
	}
	defer resp.Body.Close()
	r.HTTPStatus = resp.StatusCode

	var sr models.StudentResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		r.Error = fmt.Sprintf("decode error: %v", err)
		return r
	}

	r.TotalMs = sr.Timing.TotalMs
	r.FetchMs = sr.Timing.FetchMs
	r.ExtractMs = sr.Timing.ExtractMs
	r.EngineUsed = sr.EngineUsed
	r.Found = sr.Success && sr.Data != nil
	if r.Found {
		r.Semesters = len(sr.Data.Semesters)
	}
	if sr.Error != nil {
		r.Error = sr.Error.Code + ": " + sr.Error.Message
	}
	return r
}

func computeAverages(runs []runResult) *rollAverages {
	var n int
	var avg rollAverages
	for _, r := range runs {
		if !r.Found {
			continue
		}
		n++
		avg.TotalMs += float64(r.TotalMs)
		avg.FetchMs += float64(r.FetchMs)
		avg.ExtractMs += float64(r.ExtractMs)
	}
	if n == 0 {
		return nil
	}
	avg.TotalMs /= float64(n)
	avg.FetchMs /= float64(n)
	avg.ExtractMs /= float64(n)
	return &avg
}

func printTable(results []rollResult) {
	fmt.Println(strings.Repeat("─", 70))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Roll\tAvg Total\tAvg Fetch\tAvg Extract\tFound\n")
	fmt.Fprintf(w, "────\t─────────\t─────────\t───────────\t─────\n")
	for _, r := range results {
		found := 0
		for _, run := range r.Runs {
			if run.Found {
				found++
			}
		}
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t0/%d\n", r.Roll, len(r.Runs))
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%dms\t%dms\t%d/%d\n",
			r.Roll,
			int64(r.Averages.TotalMs),
			int64(r.Averages.FetchMs),
			int64(r.Averages.ExtractMs),
			found, len(r.Runs),
		)
	}
	w.Flush()
	fmt.Println(strings.Repeat("─", 70))
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
