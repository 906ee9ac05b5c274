package main

import (
	"fmt"

	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/mental"
	"github.com/nasdf/household/object"

	"github.com/spf13/cobra"
)

func (a *app) claimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Append a claim to the ledger",
	}
	cmd.AddCommand(a.claimKindCmd("exists", "Claim that an object exists", mental.KindExists))
	cmd.AddCommand(a.claimKindCmd("absent", "Claim that an object does not exist", mental.KindDoesNotExist))
	return cmd
}

func (a *app) claimKindCmd(use, short string, kind mental.Kind) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   use + " OBJECT",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			o, err := object.ParseJSON([]byte(args[0]))
			if err != nil {
				return errors.Wrap(err, "failed to parse object")
			}
			var opts []mental.ClaimOption
			madeAt, ok, err := parseTime(at)
			if err != nil {
				return err
			}
			if ok {
				opts = append(opts, mental.MadeAt(madeAt))
			}

			h, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer h.Close(ctx)

			var claim mental.Claim
			if kind == mental.KindExists {
				claim, err = h.Mental.ClaimExists(ctx, o, opts...)
			} else {
				claim, err = h.Mental.ClaimDoesNotExist(ctx, o, opts...)
			}
			if err != nil {
				return err
			}
			record, err := claim.Record()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), record.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "time the claim was made (RFC 3339, default now)")
	return cmd
}
