package main

import (
	"encoding/json"
	"fmt"
	"io"

	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/fhir/patient"
)

func writeResults(w io.Writer, format string, results []resourceResult) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		fmt.Fprintf(w, "== %s ==\n", r.Resource)
		fmt.Fprintf(w, "Status: %s\n", status(r))
		if r.Duration != "" {
			fmt.Fprintf(w, "Duration: %s\n", r.Duration)
		}
		if r.Error != "" {
			fmt.Fprintf(w, "Error: %s\n", r.Error)
		}
		if len(r.Ailments) > 0 {
			fmt.Fprintln(w, "\nAilments:")
			for _, a := range r.Ailments {
				fmt.Fprintf(w, "  [%s] %s\n", a.Rule, patient.Describe(a))
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

func status(r resourceResult) string {
	switch {
	case r.Error != "":
		return "FAULT"
	case r.Clean:
		return "CLEAN"
	default:
		return "AILING"
	}
}

// ruleLine renders a rule template for the rules command.
func ruleLine(a ex.Ailment) string {
	property := a.Property
	if property == "" {
		property = "-"
	}
	line := fmt.Sprintf("%-20s %s", a.Rule, property)
	if len(a.Params) > 0 {
		line += " " + paramString(a.Params)
	}
	return line
}

func paramString(p ex.Params) string {
	s := "{"
	for i, k := range p.Keys() {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s: %v", k, p[k])
	}
	return s + "}"
}
