// score_preview runs the deterministic scorer over a company profile and
// an extraction JSON file and prints the score breakdown.
//
// Usage: score_preview -profile profile.json -extraction extraction.json
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sunahsooq/rfpsimplify-sub000/internal/analysis"
	"github.com/sunahsooq/rfpsimplify-sub000/internal/models"
)

func main() {
	profilePath := flag.String("profile", "", "path to a company profile JSON file")
	extractionPath := flag.String("extraction", "", "path to an extraction JSON file")
	flag.Parse()

	if *profilePath == "" || *extractionPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	var profile models.CompanyProfile
	if err := readJSON(*profilePath, &profile); err != nil {
		log.Fatalf("profile: %v", err)
	}

	raw, err := os.ReadFile(*extractionPath)
	if err != nil {
		log.Fatalf("extraction: %v", err)
	}
	ext, err := analysis.Decode(raw)
	if err != nil {
		log.Fatalf("extraction: %v", err)
	}

	scores := analysis.Score(profile, ext)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Dimension", "Score"})
	t.AppendRow(table.Row{"NAICS alignment", scores.NAICS})
	t.AppendRow(table.Row{"Certifications", scores.Certifications})
	t.AppendRow(table.Row{"Capabilities", scores.Capabilities})
	t.AppendRow(table.Row{"Past performance", scores.PastPerformance})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Overall match", scores.Overall})
	t.AppendRow(table.Row{"Readiness", scores.Readiness})
	t.Render()
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
