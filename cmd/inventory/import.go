package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/goliatone/go-flavor-inventory/ingest"
	"github.com/spf13/cobra"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import an inventory CSV file and print the outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return err
			}

			c, err := opts.container(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			outcome, err := c.Pipeline().Import(cmd.Context(), ingest.Upload{
				Filename: filepath.Base(args[0]),
				Size:     info.Size(),
				Body:     f,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(outcome)
		},
	}
}
