package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gundash/internal/testkit"

	flag "github.com/spf13/pflag"
)

func main() {
	out := flag.String("out", "guns_cleaned.csv", "output file path")
	rows := flag.Int("rows", 2000, "number of incidents")
	format := flag.String("format", "", "output format: xlsx or csv (default inferred from -out)")
	seed := flag.Int64("seed", 42, "RNG seed (deterministic)")
	startYear := flag.Int("start-year", 2012, "first incident year")
	years := flag.Int("years", 3, "number of years covered")
	missing := flag.Float64("missing", 0, "probability that an age or education cell is blank")
	trainerHeaders := flag.Bool("trainer-headers", false, "write title-case trainer columns (Age, Sex, Race, ..., Intent)")
	flag.Parse()

	if *rows <= 0 {
		fmt.Fprintln(os.Stderr, "rows must be > 0")
		os.Exit(2)
	}

	fmtName := strings.ToLower(strings.TrimSpace(*format))
	if fmtName == "" {
		switch strings.ToLower(filepath.Ext(*out)) {
		case ".xlsx":
			fmtName = "xlsx"
		default:
			fmtName = "csv"
		}
	}

	cfg := testkit.DefaultConfig()
	cfg.Rows = *rows
	cfg.Seed = *seed
	cfg.StartYear = *startYear
	cfg.Years = *years
	cfg.MissingRate = *missing
	cfg.TrainerHeaders = *trainerHeaders

	ds, err := testkit.Generate(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error generating dataset:", err)
		os.Exit(1)
	}

	switch fmtName {
	case "csv":
		err = testkit.WriteCSV(*out, ds)
	case "xlsx":
		err = testkit.WriteXLSX(*out, ds)
	default:
		fmt.Fprintln(os.Stderr, "unsupported format:", fmtName)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", fmtName, err)
		os.Exit(1)
	}

	fmt.Printf("Incident dataset created: %s\n", *out)
	fmt.Printf("Columns: %d | Rows: %d\n", len(ds.Headers), len(ds.Rows))
}
