// Package report renders finished conformance reports: sectioned text for
// terminals and indented JSON for files and tooling.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tverberg/ikconform/internal/conformance"
)

// WriteText renders rep as sectioned text: a run header, one line per
// scenario, and one block per inconsistency with the target and recovered
// poses spelled out.
func WriteText(w io.Writer, rep *conformance.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Conformance Run: %s\n", rep.RunID)
	fmt.Fprintf(&b, "Solver:  %s\n", rep.Solver)
	fmt.Fprintf(&b, "Robot:   %s\n", rep.Robot)
	fmt.Fprintf(&b, "Elapsed: %s\n", rep.FinishedAt.Sub(rep.StartedAt))
	fmt.Fprintf(&b, "Verdict: %s\n", verdict(rep.Accepted))
	b.WriteString("\n")

	writeScenarios(&b, rep)
	b.WriteString("\n")
	writeInconsistencies(&b, rep)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON renders rep as one indented JSON document with a trailing
// newline.
func WriteJSON(w io.Writer, rep *conformance.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func verdict(accepted bool) string {
	if accepted {
		return "ACCEPTED"
	}
	return "REJECTED"
}

func writeScenarios(b *strings.Builder, rep *conformance.Report) {
	fmt.Fprintln(b, "=== Scenarios ===")
	if len(rep.Scenarios) == 0 {
		fmt.Fprintln(b, "  (none)")
		return
	}
	for _, sr := range rep.Scenarios {
		mark := "✓"
		if !sr.Accepted {
			mark = "✗"
		}
		fmt.Fprintf(b, "  %s %-15s %d/%d succeeded",
			mark, sr.Name, sr.Stats.Succeeded, sr.Stats.Attempted)
		if sr.Stats.InputFailures > 0 {
			fmt.Fprintf(b, " (%d input failures)", sr.Stats.InputFailures)
		}
		fmt.Fprintf(b, ", rate %.1f%%, elapsed %s\n", sr.SuccessRate*100, sr.Stats.Elapsed)
	}
}

func writeInconsistencies(b *strings.Builder, rep *conformance.Report) {
	fmt.Fprintln(b, "=== Inconsistencies ===")

	// Kind identifiers become headings, so "roundtrip_mismatch" prints as
	// "Roundtrip Mismatch".
	titleCase := cases.Title(language.English)

	total := 0
	for _, sr := range rep.Scenarios {
		for _, inc := range sr.Inconsistencies {
			total++
			heading := titleCase.String(strings.ReplaceAll(string(inc.Kind), "_", " "))
			if inc.Solution >= 0 {
				fmt.Fprintf(b, "  %s trial %d solution %d: %s\n",
					inc.Scenario, inc.Trial, inc.Solution, heading)
			} else {
				fmt.Fprintf(b, "  %s trial %d: %s\n", inc.Scenario, inc.Trial, heading)
			}
			fmt.Fprintf(b, "    detail:    %s\n", inc.Detail)
			if inc.Target != nil {
				fmt.Fprintf(b, "    target:    %s\n", inc.Target)
			}
			if inc.Recovered != nil {
				fmt.Fprintf(b, "    recovered: %s\n", inc.Recovered)
			}
		}
	}
	if total == 0 {
		fmt.Fprintln(b, "  (none)")
	}
}
