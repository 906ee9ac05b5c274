package main

import (
	"fmt"

	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/object"

	"github.com/spf13/cobra"
)

func (a *app) axiomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "axioms",
		Short: "Claim the axioms of every institute",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			h, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer h.Close(ctx)

			if err := h.InitAxioms(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized %d institutes\n", len(h.Institutes()))
			return nil
		},
	}
}

func (a *app) ownCmd() *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "own OBJECT",
		Short: "Claim ownership of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			subject, err := object.ParseJSON([]byte(args[0]))
			if err != nil {
				return errors.Wrap(err, "failed to parse object")
			}
			if label == "" {
				return errors.InvalidArgumentf("--label is required")
			}

			h, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer h.Close(ctx)

			claim, err := h.Ownership.ClaimOwnership(ctx, subject, label)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), claim.Object.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "name of the ownership contract")
	return cmd
}
