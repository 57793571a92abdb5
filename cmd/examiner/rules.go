package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newRulesCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the configured rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSuite(root)
			if err != nil {
				return err
			}

			templates := s.definition.Describe()
			w := cmd.OutOrStdout()
			if root.format == formatJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(templates)
			}
			for _, a := range templates {
				fmt.Fprintln(w, ruleLine(a))
			}
			return nil
		},
	}
}
