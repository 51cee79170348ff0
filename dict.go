package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doc-translator/backend/internal/dictionary"
)

func newDictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Special words dictionary tools",
	}
	cmd.AddCommand(newDictCheckCmd())
	return cmd
}

func newDictCheckCmd() *cobra.Command {
	var (
		policy string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a special words CSV file",
		Long: `Parse a dictionary file exactly as an upload would be parsed and report
every line that would be skipped. Each non-blank line must be
"original,translation".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := dictionary.ParsePolicy(policy)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			content, err := dictionary.Decode(data)
			if err != nil {
				return err
			}

			pairs, warnings := dictionary.Parse(content, p)
			out := cmd.OutOrStdout()
			for _, w := range warnings {
				fmt.Fprintf(out, "%s: %v (%q)\n", args[0], w, w.Text)
			}
			fmt.Fprintf(out, "%d valid, %d skipped\n", len(pairs), len(warnings))

			if strict && len(warnings) > 0 {
				return fmt.Errorf("%d malformed lines", len(warnings))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&policy, "extra-fields", "keep", "Lines with more than one comma: keep, truncate or reject")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when any line is skipped")
	return cmd
}
