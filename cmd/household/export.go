package main

import (
	"os"

	"github.com/nasdf/household/core"
	"github.com/nasdf/household/errors"

	"github.com/spf13/cobra"
)

func (a *app) exportCmd() *cobra.Command {
	var at, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a universe revision to a CAR file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if out == "" {
				return errors.InvalidArgumentf("--out is required")
			}
			ts, err := timestampFlag(at)
			if err != nil {
				return err
			}

			h, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer h.Close(ctx)

			store, ok := h.Store()
			if !ok {
				return errors.InvalidArgumentf("export requires a content addressed storage driver, got %s", a.cfg.Storage.Driver)
			}
			revision, err := h.Mental.UniverseRevision(ctx, ts)
			if err != nil {
				return err
			}

			file, err := os.Create(out)
			if err != nil {
				return err
			}
			defer file.Close()

			if err := core.Export(ctx, store, revision.Collection(), file); err != nil {
				return err
			}
			a.logger.Infow("exported revision", "collection", revision.Name(), "out", out)
			return file.Sync()
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "revision time (RFC 3339, default now)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "path of the CAR file to write")
	return cmd
}
