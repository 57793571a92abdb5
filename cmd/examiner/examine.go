package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	ex "github.com/gofhir/examiner"
	"github.com/gofhir/examiner/fhir/patient"
	"github.com/gofhir/examiner/pkg/logger"
	"github.com/gofhir/examiner/stream"
	"github.com/gofhir/examiner/telemetry"
)

// stdinName is the argument that reads a resource from stdin.
const stdinName = "-"

type examineOptions struct {
	metricsFile string
}

// resourceResult is the outcome for one input.
type resourceResult struct {
	Resource string       `json:"resource"`
	Clean    bool         `json:"clean"`
	Ailments []ex.Ailment `json:"ailments,omitempty"`
	Error    string       `json:"error,omitempty"`
	Duration string       `json:"duration,omitempty"`
}

func newExamineCommand(root *rootOptions) *cobra.Command {
	opts := &examineOptions{}

	cmd := &cobra.Command{
		Use:   "examine <file|->...",
		Short: "Examine Patient resources",
		Long: `Examine FHIR Patient resources read from files, glob patterns or stdin ("-").

Exit status is 1 when any patient has ailments and 2 when any input could
not be read, parsed or examined.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExamine(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")

	return cmd
}

func runExamine(cmd *cobra.Command, root *rootOptions, opts *examineOptions, args []string) error {
	s, err := newSuite(root)
	if err != nil {
		return err
	}

	inputs := expandBundles(cmd.Context(), readInputs(cmd.InOrStdin(), args))
	results := make([]resourceResult, len(inputs))
	docs := make([]*patient.Document, 0, len(inputs))
	slots := make([]int, 0, len(inputs))

	for i, in := range inputs {
		results[i].Resource = in.name
		if in.err != nil {
			results[i].Error = in.err.Error()
			continue
		}
		doc, err := patient.Parse(in.name, in.data)
		if err != nil {
			results[i].Error = err.Error()
			continue
		}
		docs = append(docs, doc)
		slots = append(slots, i)
	}

	root.log.Debug("examining", logger.Source(s.definition.Name()), slog.Int("resources", len(docs)))

	if len(docs) > 0 {
		batch := s.examiner.ExamineBatch(cmd.Context(), docs, s.definition)
		for j, r := range batch.Results {
			res := &results[slots[j]]
			if r == nil {
				res.Error = "not examined"
				continue
			}
			res.Duration = r.Duration.Round(time.Microsecond).String()
			if r.Error != nil {
				res.Error = r.Error.Error()
				continue
			}
			res.Clean = r.Report.Clean()
			res.Ailments = r.Report.Sorted()
		}
	}

	if err := writeResults(cmd.OutOrStdout(), root.format, results); err != nil {
		return err
	}

	if opts.metricsFile != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(telemetry.NewCollector(s.examiner.Metrics(), telemetry.WithCache("fhirpath", s.evaluator)))
		if err := prometheus.WriteToTextfile(opts.metricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	return exitFor(results)
}

func exitFor(results []resourceResult) error {
	code := exitClean
	for _, r := range results {
		switch {
		case r.Error != "":
			return &exitError{code: exitFault}
		case !r.Clean:
			code = exitAilments
		}
	}
	if code == exitClean {
		return nil
	}
	return &exitError{code: code}
}

type input struct {
	name string
	data []byte
	err  error
}

// readInputs expands glob patterns and reads every file. Read failures are
// kept per input so one bad file does not hide the others.
func readInputs(stdin io.Reader, args []string) []input {
	var out []input
	for _, arg := range args {
		if arg == stdinName {
			data, err := io.ReadAll(stdin)
			out = append(out, input{name: "stdin", data: data, err: err})
			continue
		}

		matches, err := filepath.Glob(arg)
		if err != nil {
			out = append(out, input{name: arg, err: fmt.Errorf("bad pattern: %w", err)})
			continue
		}
		if len(matches) == 0 {
			out = append(out, input{name: arg, err: fmt.Errorf("no files match %s", arg)})
			continue
		}
		for _, m := range matches {
			data, err := os.ReadFile(m)
			out = append(out, input{name: m, data: data, err: err})
		}
	}
	return out
}

// expandBundles replaces every Bundle input with its Patient entries. Other
// resource types in a bundle are ignored.
func expandBundles(ctx context.Context, inputs []input) []input {
	out := make([]input, 0, len(inputs))
	reader := stream.NewReader()
	for _, in := range inputs {
		if in.err != nil || !stream.IsBundle(in.data) {
			out = append(out, in)
			continue
		}
		for e := range reader.Entries(ctx, bytes.NewReader(in.data)) {
			switch {
			case e.Error != nil:
				out = append(out, input{name: e.Name(in.name), err: e.Error})
			case e.ResourceType == patient.ResourceType:
				out = append(out, input{name: e.Name(in.name), data: e.Resource})
			}
		}
	}
	return out
}
