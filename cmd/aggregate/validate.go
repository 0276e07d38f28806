package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/aggregate/pkg/adapters/yaml"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a rules file for consistency",
		Long:  `Compiles every builder of the rules file and reports unknown types, key collisions and dangling references.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("rules")
			if path == "" && len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("a rules file is required")
			}

			set, err := yaml.New().LoadFile(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, name := range set.Names() {
				rs, _ := set.Lookup(name)
				fields := make([]string, 0, len(rs.Fields))
				for _, f := range rs.Fields {
					fields = append(fields, f.Name)
				}
				assocs := make([]string, 0, len(rs.Associations))
				for _, a := range rs.Associations {
					assocs = append(assocs, fmt.Sprintf("%s(%s %s)", a.Name, a.Cardinality, a.Rules.Name))
				}
				fmt.Fprintf(out, "%s [%s]: fields=%s associations=%s\n",
					name, rs.Severity, strings.Join(fields, ","), strings.Join(assocs, ","))
			}
			fmt.Fprintln(out, "Rules are valid!")
			return nil
		},
	}
}
