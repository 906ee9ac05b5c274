package main

import (
	"fmt"

	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/filter"
	"github.com/nasdf/household/mental"
	"github.com/nasdf/household/object"

	"github.com/spf13/cobra"
)

func (a *app) revisionCmd() *cobra.Command {
	var at, where string
	cmd := &cobra.Command{
		Use:   "revision",
		Short: "Print the objects that exist at a point in time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ts, err := timestampFlag(at)
			if err != nil {
				return err
			}
			f, err := filterFlag(where)
			if err != nil {
				return err
			}

			h, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer h.Close(ctx)

			revision, err := h.Mental.UniverseRevision(ctx, ts)
			if err != nil {
				return err
			}
			for o, err := range revision.Find(ctx, f) {
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), o.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "revision time (RFC 3339, default now)")
	cmd.Flags().StringVar(&where, "where", "", "JSON filter applied to the revision")
	return cmd
}

func (a *app) historyCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "history FILTER",
		Short: "Print the existence claims made about matching objects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := filterFlag(args[0])
			if err != nil {
				return err
			}
			var period mental.Period
			if period.Start, err = timestampFlag(from); err != nil {
				return err
			}
			if period.End, err = timestampFlag(to); err != nil {
				return err
			}

			h, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer h.Close(ctx)

			transitions, err := h.Mental.ObjectClaims(ctx, f, period)
			if err != nil {
				return err
			}
			for o, err := range transitions.Find(ctx, nil) {
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), o.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start of the period (RFC 3339, default unbounded)")
	cmd.Flags().StringVar(&to, "to", "", "end of the period (RFC 3339, default now)")
	return cmd
}

func timestampFlag(value string) (mental.Timestamp, error) {
	t, ok, err := parseTime(value)
	if err != nil || !ok {
		return mental.Now(), err
	}
	return mental.At(t), nil
}

func filterFlag(value string) (*filter.Filter, error) {
	if value == "" {
		return filter.Empty(), nil
	}
	o, err := object.ParseJSON([]byte(value))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse filter")
	}
	return filter.Where(o)
}
