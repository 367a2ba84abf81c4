package main

import (
	"github.com/agentuity/go-paramcache/tui"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func newPutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put NAME VALUE",
		Short: "Store a parameter in a writable source (redis or sqlite)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if rt.backend.writer == nil {
				return errors.Newf("source %q is read-only", rt.cfg.Source)
			}
			version, err := rt.backend.writer.Put(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			tui.ShowSuccess(cmd.OutOrStdout(), "stored %s (version %d)", args[0], version)
			return nil
		},
	}
}
