package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/gofhir/examiner/config"
	"github.com/gofhir/examiner/pkg/logger"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
)

var validFormats = []string{formatText, formatJSON}

// rootOptions holds global flags and the state they resolve to.
type rootOptions struct {
	configPath string
	format     string
	verbose    bool

	cfg *config.Config
	log *logger.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "examiner",
		Short:         "Examine FHIR Patient resources",
		Long:          "Checks FHIR R4 Patient resources against composable rules and FHIRPath invariants.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "configuration file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.format, "format", formatText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(newExamineCommand(opts))
	cmd.AddCommand(newRulesCommand(opts))

	return cmd
}

// resolve validates flags, loads the configuration and builds the logger.
// Logs always go to stderr so JSON output stays parseable.
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	if !slices.Contains(validFormats, o.format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.format, validFormats)
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.verbose {
		cfg.Log.Level = logger.LevelDebug.String()
	}

	log, err := cfg.Log.Logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.log = log.With(logger.Component("cli"))
	return nil
}
