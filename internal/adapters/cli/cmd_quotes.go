package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-manager/internal/app"
	"github.com/jsamuelsen/quote-manager/internal/bootstrap"
	"github.com/jsamuelsen/quote-manager/internal/domain"
)

func newRandomCommand(r *runtime) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Show a random quote",
		Long:  "Show a random quote. Without --category the saved filter applies.",
		Example: "  quotes random\n" +
			"  quotes random --category Wisdom",
		Args: noArgs,
		RunE: r.withApp(func(ctx context.Context, a *bootstrap.App, _ []string) error {
			q, err := a.Service.ShowRandom(ctx, category)
			if err != nil {
				return err
			}

			return r.emit(q, "%s", formatQuote(q))
		}),
	}

	cmd.Flags().StringVar(&category, "category", "", "Only pick from this category (\"all\" for any)")

	return cmd
}

func newAddCommand(r *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "add <text> <category>",
		Short:   "Add a quote and post it to the quote server",
		Example: `  quotes add "Stay hungry, stay foolish." Inspiration`,
		Args:    exactArgs(2),
		RunE: r.withApp(func(ctx context.Context, a *bootstrap.App, args []string) error {
			q, err := a.Service.AddQuote(ctx, args[0], args[1])
			if err != nil {
				return err
			}

			return r.emit(q, "%s\n%s", app.MsgQuoteAdded, formatQuote(q))
		}),
	}
}

func newListCommand(r *runtime) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored quotes",
		Args:  noArgs,
		RunE: r.withApp(func(_ context.Context, a *bootstrap.App, _ []string) error {
			quotes := a.Service.ListQuotes()
			if category != "" {
				quotes = domain.Filter(quotes, category)
			}

			if r.globals.JSON {
				return printJSON(r.out, quotes)
			}

			for _, q := range quotes {
				if _, err := fmt.Fprintln(r.out, formatQuote(q)); err != nil {
					return err
				}
			}

			return nil
		}),
	}

	cmd.Flags().StringVar(&category, "category", domain.CategoryAll, "Only list this category")

	return cmd
}

type categoriesOutput struct {
	Categories []string `json:"categories"`
	Selected   string   `json:"selected"`
}

func newCategoriesCommand(r *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories; the saved filter is marked with *",
		Args:  noArgs,
		RunE: r.withApp(func(_ context.Context, a *bootstrap.App, _ []string) error {
			categories, selected := a.Service.Categories()

			if r.globals.JSON {
				return printJSON(r.out, categoriesOutput{Categories: categories, Selected: selected})
			}

			var b strings.Builder
			for _, c := range append([]string{domain.CategoryAll}, categories...) {
				marker := " "
				if c == selected {
					marker = "*"
				}

				fmt.Fprintf(&b, "%s %s\n", marker, c)
			}

			_, err := fmt.Fprint(r.out, b.String())

			return err
		}),
	}
}

type filterOutput struct {
	Selected string        `json:"selected"`
	Quote    *domain.Quote `json:"quote"`
}

func newFilterCommand(r *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "filter <category>",
		Short: "Save the category filter and show a quote from it",
		Example: "  quotes filter Motivation\n" +
			"  quotes filter all",
		Args: exactArgs(1),
		RunE: r.withApp(func(ctx context.Context, a *bootstrap.App, args []string) error {
			selected := a.Service.SelectCategory(ctx, args[0])

			q, err := a.Service.ShowRandom(ctx, "")

			var noQuotes *domain.NoQuotesError

			switch {
			case errors.As(err, &noQuotes):
				return r.emit(filterOutput{Selected: selected}, "Selected category: %s\nNo quotes available.", selected)
			case err != nil:
				return err
			}

			return r.emit(filterOutput{Selected: selected, Quote: &q}, "Selected category: %s\n%s", selected, formatQuote(q))
		}),
	}
}
