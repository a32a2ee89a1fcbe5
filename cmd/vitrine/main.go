package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/five82/vitrine/internal/app"
)

func init() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "vitrine: %v\n", err)
		return 1
	}
	return 0
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	prefsPath  string
	apiURL     string
	verbose    bool
	demo       bool
}

func (f *globalFlags) options() app.Options {
	return app.Options{
		ConfigPath: f.configPath,
		PrefsPath:  f.prefsPath,
		Verbose:    f.verbose,
		Demo:       f.demo,
		APIURL:     f.apiURL,
	}
}

// withEnv bootstraps the application, hydrates both shelves and runs fn.
func (f *globalFlags) withEnv(cmd *cobra.Command, fn func(ctx context.Context, env *app.Env) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	env, err := app.Bootstrap(ctx, f.options())
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.Initialize(ctx); err != nil {
		return err
	}
	return fn(ctx, env)
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "vitrine",
		Short: "Terminal storefront browser",
		Long: `vitrine browses a storefront catalog from the terminal.

Filter the listing by category, price and search text, keep up to four
products side by side for comparison, and save products to a wishlist.
Both shelves survive restarts.

Run without arguments to start the interactive interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), flags.options())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file path (default ~/.config/vitrine/config.toml)")
	pf.StringVar(&flags.prefsPath, "prefs", "", "preferences file path (default ~/.config/vitrine/prefs.toml)")
	pf.StringVar(&flags.apiURL, "api-url", "", "storefront API root, overrides the config file")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&flags.demo, "demo", false, "serve the bundled demo catalog and keep shelves in memory")

	root.AddCommand(
		newDemoCmd(flags),
		newShelfCmd(flags, "compare", "Manage the comparison shelf"),
		newShelfCmd(flags, "wishlist", "Manage the wishlist"),
		newProductsCmd(flags),
	)
	return root
}

func newDemoCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Start the interface against the bundled demo catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options()
			opts.Demo = true
			return app.Run(cmd.Context(), opts)
		},
	}
}
