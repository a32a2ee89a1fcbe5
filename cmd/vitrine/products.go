package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/five82/vitrine/internal/app"
	"github.com/five82/vitrine/internal/catalog"
	"github.com/five82/vitrine/internal/filter"
)

func newProductsCmd(flags *globalFlags) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Print one page of the product listing",
		Long: `Print one page of the product listing.

The --query flag takes the same parameters the storefront listing page
puts in its URL, so a copied link can be pasted as is:

  vitrine products --query "category=cat-home&minPrice=30&sort=price_asc"
  vitrine products --query "?q=lamp&page=2"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withEnv(cmd, func(ctx context.Context, env *app.Env) error {
				return listProducts(ctx, env, query, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "listing filters as URL query parameters")
	return cmd
}

func listProducts(ctx context.Context, env *app.Env, query string, out io.Writer) error {
	engine := filter.NewEngine(env.FilterOptions())

	// Category names are what the storefront filters on; without the tree
	// the engine falls back to sending ids.
	categories, err := env.Client.FetchCategories(ctx)
	if err != nil {
		env.Logger.Warn("category fetch failed", zap.Error(err))
	} else {
		engine.SetCategories(categories)
	}

	if err := engine.ParseQuery(query); err != nil {
		return errors.Wrap(err, "parse query")
	}

	page, err := env.Client.FetchProducts(ctx, engine.ToQuery())
	if err != nil {
		return errors.Wrap(err, "fetch products")
	}
	return printProducts(out, engine, page)
}

func printProducts(out io.Writer, engine *filter.Engine, page catalog.Page) error {
	var active []string
	for _, dim := range engine.Active() {
		active = append(active, string(dim))
	}
	filters := "none"
	if len(active) > 0 {
		filters = strings.Join(active, ", ")
	}

	if len(page.Results) == 0 {
		_, err := fmt.Fprintf(out, "No products match (filters: %s)\n", filters)
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "PRICE", "CATEGORY", "STATUS")
	for _, p := range page.Results {
		t.Row(p.ID, p.Name, "$"+p.Price.StringFixed(2), p.CategoryName, p.Status)
	}

	criteria := engine.Criteria()
	footer := fmt.Sprintf("page %d of %d · %d products · sort %s · filters: %s",
		criteria.Page, max(page.TotalPages, 1), page.Count, criteria.Sort.Label(), filters)
	if page.HasNext {
		footer += fmt.Sprintf(" · next: --query %q", nextPageQuery(engine))
	}
	_, err := fmt.Fprintf(out, "%s\n%s\n", t.String(), footer)
	return err
}

// nextPageQuery encodes the criteria for the following page.
func nextPageQuery(engine *filter.Engine) string {
	v := engine.Values()
	v.Set("page", fmt.Sprint(engine.Criteria().Page+1))
	return v.Encode()
}
