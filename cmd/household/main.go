package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/nasdf/household"
	"github.com/nasdf/household/config"
	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.SugaredLogger
	out        io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:   "household",
		Short: "Record and replay claims about the things in your life",
		Long: `household keeps an append-only ledger of existence claims and
replays it into the set of objects believed to exist at any time.

Examples:
  household axioms                                  # Claim the institute axioms
  household claim exists '{"type":"fridge"}'        # Claim a fridge exists
  household claim absent '{"type":"fridge"}'        # Claim it no longer exists
  household revision --where '{"type":"fridge"}'    # Fridges that exist now
  household history '{"type":"fridge"}'             # Every claim about fridges
  household export --out revision.car               # Export a revision as a CAR`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log.Logger())
			if err != nil {
				return errors.Wrap(err, "failed to initialize logger")
			}
			a.cfg = cfg
			a.logger = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a TOML config file")

	root.AddCommand(a.claimCmd())
	root.AddCommand(a.revisionCmd())
	root.AddCommand(a.historyCmd())
	root.AddCommand(a.axiomsCmd())
	root.AddCommand(a.ownCmd())
	root.AddCommand(a.exportCmd())
	return root
}

// open connects to the configured backend. The caller must close it.
func (a *app) open(ctx context.Context) (*household.Household, error) {
	return household.Open(ctx, a.cfg, a.logger)
}

// parseTime parses an optional RFC 3339 flag value.
func parseTime(value string) (time.Time, bool, error) {
	if value == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, errors.Mark(errors.Wrapf(err, "invalid time %q", value), errors.ErrInvalidArgument)
	}
	return t, true, nil
}

func main() {
	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
