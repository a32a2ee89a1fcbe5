package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/five82/vitrine/internal/app"
	"github.com/five82/vitrine/internal/shelf"
)

func newShelfCmd(flags *globalFlags, label, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   label,
		Short: short,
		Long: fmt.Sprintf(`Manage the %s shelf without starting the interface.

Available subcommands:
  list   - Show the shelf contents
  add    - Add products by id
  remove - Remove products by id
  clear  - Remove every product
  purge  - Remove every product and delete the saved snapshot`, label),
	}

	type shelfFunc func(ctx context.Context, env *app.Env, s *shelf.Store, args []string, out io.Writer) error
	withShelf := func(fn shelfFunc) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			return flags.withEnv(cmd, func(ctx context.Context, env *app.Env) error {
				s, ok := env.Shelf(label)
				if !ok {
					return errors.Errorf("unknown shelf %q", label)
				}
				return fn(ctx, env, s, args, cmd.OutOrStdout())
			})
		}
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show the shelf contents",
		Args:  cobra.NoArgs,
		RunE: withShelf(func(ctx context.Context, env *app.Env, s *shelf.Store, args []string, out io.Writer) error {
			return printShelf(out, s.Snapshot(), label)
		}),
	}

	addCmd := &cobra.Command{
		Use:   "add <product-id>...",
		Short: "Add products by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: withShelf(func(ctx context.Context, env *app.Env, s *shelf.Store, args []string, out io.Writer) error {
			return addProducts(ctx, env, s, out, args)
		}),
	}

	removeCmd := &cobra.Command{
		Use:     "remove <product-id>...",
		Aliases: []string{"rm"},
		Short:   "Remove products by id",
		Args:    cobra.MinimumNArgs(1),
		RunE: withShelf(func(ctx context.Context, env *app.Env, s *shelf.Store, args []string, out io.Writer) error {
			for _, id := range args {
				fmt.Fprintf(out, "%s: %s\n", id, s.Remove(ctx, id))
			}
			return nil
		}),
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every product",
		Args:  cobra.NoArgs,
		RunE: withShelf(func(ctx context.Context, env *app.Env, s *shelf.Store, args []string, out io.Writer) error {
			fmt.Fprintf(out, "%s: %s\n", label, s.Clear(ctx))
			return nil
		}),
	}

	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove every product and delete the saved snapshot",
		Args:  cobra.NoArgs,
		RunE: withShelf(func(ctx context.Context, env *app.Env, s *shelf.Store, args []string, out io.Writer) error {
			if err := s.Purge(ctx); err != nil {
				return errors.Wrapf(err, "purge %s", label)
			}
			fmt.Fprintf(out, "%s: purged\n", label)
			return nil
		}),
	}

	cmd.AddCommand(listCmd, addCmd, removeCmd, clearCmd, purgeCmd)
	return cmd
}

// addProducts fetches each product so the shelf keeps a current snapshot of
// its name, price and category. A full shelf stops the run with an error.
func addProducts(ctx context.Context, env *app.Env, s *shelf.Store, out io.Writer, ids []string) error {
	for _, id := range ids {
		product, err := env.Client.FetchProduct(ctx, id)
		if err != nil {
			return errors.Wrapf(err, "fetch %s", id)
		}
		outcome := s.Add(ctx, shelf.FromProduct(product, time.Now()))
		fmt.Fprintf(out, "%s: %s\n", id, outcome)
		if outcome == shelf.Full {
			return errors.Errorf("%s holds at most %d items", s.Label(), s.Capacity())
		}
	}
	return nil
}

func printShelf(out io.Writer, snap shelf.Snapshot, label string) error {
	if len(snap.Items) == 0 {
		_, err := fmt.Fprintf(out, "%s is empty (0/%d)\n", label, snap.Capacity)
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "PRICE", "CATEGORY", "ADDED")
	for _, item := range snap.Items {
		t.Row(item.ID, item.Name, "$"+item.Price.StringFixed(2), item.Category, item.AddedAt.Local().Format("2006-01-02 15:04"))
	}
	_, err := fmt.Fprintf(out, "%s\n%s (%d/%d)\n", t.String(), label, len(snap.Items), snap.Capacity)
	return err
}
