package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"backend-speedtrack/internal/config"
	"backend-speedtrack/internal/replay"
	"backend-speedtrack/internal/speed"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, config.Load); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, loadConfig func() config.Config) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	inputPath := fs.String("input", "", "Path to FIT activity file")
	profile := fs.String("profile", speed.ProfileSmoothed, "Processor profile (smoothed or basic)")
	duration := fs.Int64("duration", 0, "Session length in seconds, 0 disables recording")
	asJSON := fs.Bool("json", false, "Print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inputPath == "" {
		return fmt.Errorf("please provide input file with -input")
	}

	procCfg, err := loadConfig().Processor(*profile)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	samples, err := replay.Decode(data)
	if err != nil {
		return err
	}
	report, err := replay.Run(samples, replay.Options{Processor: procCfg, DurationSeconds: *duration})
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(out, *profile, report)
	return nil
}

func printReport(out io.Writer, profile string, r replay.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Profile\t%s\n", profile)
	fmt.Fprintf(w, "Samples\t%d\n", r.Samples)
	for _, o := range speed.Outcomes() {
		fmt.Fprintf(w, "  %s\t%d\n", o, r.Outcomes[o])
	}
	fmt.Fprintf(w, "Max reading\t%.2f km/h\n", r.MaxReadingKmh)
	fmt.Fprintf(w, "Overspeed readings\t%d\n", r.Overspeed)
	if r.Analytics == nil {
		fmt.Fprintf(w, "Session\tno analytics\n")
		w.Flush()
		return
	}
	a := r.Analytics
	fmt.Fprintf(w, "Session completed\t%t\n", r.SessionCompleted)
	fmt.Fprintf(w, "Recorded readings\t%d\n", a.SampleCount)
	fmt.Fprintf(w, "Avg speed\t%.2f km/h\n", a.AvgSpeedKmh)
	fmt.Fprintf(w, "Avg acceleration\t%.3f km/h/s\n", a.AvgAccelerationKmhPerS)
	fmt.Fprintf(w, "Max speed\t%.2f km/h\n", a.MaxSpeedKmh)
	fmt.Fprintf(w, "Distance\t%.3f km\n", a.DistanceKm)
	w.Flush()
}
