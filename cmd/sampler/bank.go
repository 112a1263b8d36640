package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-sampler/internal/bank"
	"github.com/cwbudde/algo-sampler/internal/dialog"
)

func (a *app) openBank(ctx context.Context) (*bank.Service, error) {
	store, err := bank.OpenSQLStore(a.dbPath)
	if err != nil {
		return nil, err
	}

	svc, err := bank.NewService(ctx, store, bank.WithLogger(a.log))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return svc, nil
}

// withBank opens the bank database around fn.
func (a *app) withBank(fn func(*cobra.Command, []string, *bank.Service) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := a.openBank(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		return fn(cmd, args, svc)
	}
}

func newBankCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Manage sample banks",
	}

	cmd.AddCommand(
		newBankCreateCmd(a),
		newBankDeleteCmd(a),
		newBankListCmd(a),
		newBankAddCmd(a),
		newBankRemoveCmd(a),
	)

	return cmd
}

func newBankCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty bank",
		Args:  cobra.ExactArgs(1),
		RunE: a.withBank(func(cmd *cobra.Command, args []string, svc *bank.Service) error {
			b, err := svc.CreateBank(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created bank %s (%s)\n", b.Name, b.ID)

			return nil
		}),
	}
}

func newBankDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <bank>",
		Short: "Delete a bank and all its samples",
		Args:  cobra.ExactArgs(1),
		RunE: a.withBank(func(cmd *cobra.Command, args []string, svc *bank.Service) error {
			b, err := svc.FindBank(args[0])
			if err != nil {
				return err
			}

			if !yes {
				ok, err := a.confirm(cmd.Context(), fmt.Sprintf("Delete bank %q and its samples?", b.Name))
				if err != nil || !ok {
					return ignoreCancel(err)
				}
			}

			return svc.DeleteBank(cmd.Context(), b.ID)
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func newBankListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [bank]",
		Short: "List banks, or the samples of one bank",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.withBank(func(cmd *cobra.Command, args []string, svc *bank.Service) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer tw.Flush()

			if len(args) == 0 {
				fmt.Fprintln(tw, "ID\tNAME\tSAMPLES\tCREATED")

				for _, b := range svc.Banks() {
					recs, _ := svc.Samples(b.ID)
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", b.ID, b.Name, len(recs), humanize.Time(b.Created))
				}

				return nil
			}

			b, err := svc.FindBank(args[0])
			if err != nil {
				return err
			}

			recs, err := svc.Samples(b.ID)
			if err != nil {
				return err
			}

			fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tSIZE\tCREATED")

			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Color, humanize.Bytes(uint64(r.Size)), humanize.Time(r.Created))
			}

			return nil
		}),
	}
}

func newBankAddCmd(a *app) *cobra.Command {
	var name, color string

	cmd := &cobra.Command{
		Use:   "add <bank> <file>",
		Short: "Export a WAV file and store it in a bank",
		Long: `add renders the file through the equalizer and master chain, normalizes it
and stores the result. Without --name the sample name is asked for on the
terminal, defaulting to the file name.`,
		Args: cobra.ExactArgs(2),
		RunE: a.withBank(func(cmd *cobra.Command, args []string, svc *bank.Service) error {
			b, err := svc.FindBank(args[0])
			if err != nil {
				return err
			}

			s, err := a.openSession(cmd, args[1])
			if err != nil {
				return err
			}
			defer s.Close()

			var dlg dialog.Service = dialog.NewScripted(name)

			if name == "" {
				term, err := dialog.NewTerminal()
				if err != nil {
					a.log.WithError(err).Debug("no terminal, using the file name")
				} else {
					defer term.Close()
					dlg = term
				}
			}

			rec, err := s.SaveToBank(cmd.Context(), svc, dlg, b.ID, color)
			if err != nil {
				return ignoreCancel(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s (%s, %s)\n", rec.Name, b.Name, rec.ID, humanize.Bytes(uint64(rec.Size)))

			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "Sample name")
	cmd.Flags().StringVar(&color, "color", bank.DefaultColor, "Display color")

	return cmd
}

func newBankRemoveCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove <bank> <sample-id>",
		Short: "Remove a sample from a bank",
		Args:  cobra.ExactArgs(2),
		RunE: a.withBank(func(cmd *cobra.Command, args []string, svc *bank.Service) error {
			b, err := svc.FindBank(args[0])
			if err != nil {
				return err
			}

			if !yes {
				ok, err := a.confirm(cmd.Context(), fmt.Sprintf("Remove sample %s from %q?", args[1], b.Name))
				if err != nil || !ok {
					return ignoreCancel(err)
				}
			}

			return svc.DeleteSample(cmd.Context(), b.ID, args[1])
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func (a *app) confirm(ctx context.Context, msg string) (bool, error) {
	term, err := dialog.NewTerminal()
	if err != nil {
		return false, fmt.Errorf("%w: pass --yes to skip confirmation", dialog.ErrUnavailable)
	}
	defer term.Close()

	return term.Confirm(ctx, msg)
}

// ignoreCancel turns a dismissed dialog into a quiet no-op.
func ignoreCancel(err error) error {
	if errors.Is(err, dialog.ErrCancelled) {
		return nil
	}

	return err
}
