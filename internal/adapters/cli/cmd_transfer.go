package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-manager/internal/app"
	"github.com/jsamuelsen/quote-manager/internal/bootstrap"
)

// stdio selects standard input or output in place of a file.
const stdio = "-"

const defaultExportFile = "quotes.json"

type exportOutput struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

func newExportCommand(r *runtime) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every quote to a JSON file",
		Example: "  quotes export\n" +
			"  quotes export -o backup.json\n" +
			"  quotes export -o - > quotes.json",
		Args: noArgs,
		RunE: r.withApp(func(_ context.Context, a *bootstrap.App, _ []string) error {
			data, err := a.Service.ExportQuotes()
			if err != nil {
				return err
			}

			if output == stdio {
				_, err := r.out.Write(append(data, '\n'))
				return err
			}

			if err := os.WriteFile(output, data, 0o644); err != nil { //nolint:gosec // exports are meant to be shared
				return err
			}

			count := len(a.Service.ListQuotes())

			return r.emit(exportOutput{Path: output, Count: count}, "Exported %d quotes to %s", count, output)
		}),
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultExportFile, `Destination file ("-" for stdout)`)

	return cmd
}

type importOutput struct {
	app.ImportResult

	Message string `json:"message"`
}

func newImportCommand(r *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Append the quotes from an exported JSON file",
		Example: "  quotes import backup.json\n" +
			"  cat backup.json | quotes import -",
		Args: exactArgs(1),
		RunE: r.withApp(func(ctx context.Context, a *bootstrap.App, args []string) error {
			src, err := openInput(args[0], r.in)
			if err != nil {
				return err
			}
			defer src.Close()

			result, err := a.Service.ImportQuotes(ctx, src)
			if err != nil {
				return err
			}

			return r.emit(
				importOutput{ImportResult: result, Message: app.MsgQuotesImported},
				"%s (%d imported, %d total)", app.MsgQuotesImported, result.Imported, result.Total,
			)
		}),
	}
}

func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == stdio {
		return io.NopCloser(stdin), nil
	}

	return os.Open(path)
}
