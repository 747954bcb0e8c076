package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkoosis/hellobench/internal/cli"
	"github.com/dkoosis/hellobench/internal/history"
	"github.com/dkoosis/hellobench/pkg/mapper"
)

func newHistoryCmd(out *outputFlags, stdout, stderr io.Writer) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently recorded results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 {
				return fmt.Errorf("limit must be at least 1 (got %d)", limit)
			}
			env, err := cli.Bootstrap(cmd.Flags(), stderr)
			if err != nil {
				return err
			}
			defer env.Close()

			renderer, err := newRenderer(out, env.Config.NoColor, stdout)
			if err != nil {
				return err
			}

			store := history.Disabled()
			path := env.Config.Cache().Path(history.DefaultFilename)
			if _, err := os.Stat(path); err == nil {
				if store, err = history.Open(path); err != nil {
					return err
				}
			} else if !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprint(stdout, renderer.Render(mapper.FromHistory(entries)))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to list")
	return cmd
}
