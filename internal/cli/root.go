package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"vanta/internal/auth"
	"vanta/internal/backend"
	"vanta/internal/log"
	"vanta/internal/sheets"
	"vanta/internal/store"
)

// App holds what the commands run against.
type App struct {
	Adapters *backend.Adapters
	Auth     auth.Config
	// Sheets opens the spreadsheet for "export --to sheets". Nil when no
	// spreadsheet is configured.
	Sheets func(ctx context.Context) (sheets.TableWriter, error)
	// PageSize caps how many records a load fetches. Zero fetches all.
	PageSize int
	Logger   *log.Logger
	Out      io.Writer
	// Color forces styled output; by default it follows whether Out is a
	// terminal.
	Color *bool
}

// NewRootCmd creates the top-level "vanta" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	if app.Logger == nil {
		app.Logger = log.Nop()
	}
	if app.Out == nil {
		app.Out = os.Stdout
	}
	color := isTerminal(app.Out)
	if app.Color != nil {
		color = *app.Color
	}

	e := &env{
		app: app,
		p:   printer{w: app.Out, color: color},
		all: resources(app.Adapters, store.ListOptions{Limit: app.PageSize}, app.Logger.WithComponent(log.ComponentCLI)),
	}

	root := &cobra.Command{
		Use:           "vanta",
		Short:         "Manage Vanta Ledger records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(app.Out)

	root.AddCommand(
		newListCmd(e),
		newAddCmd(e),
		newEditCmd(e),
		newRemoveCmd(e),
		newExportCmd(e),
		newTotalsCmd(e),
		newTokenCmd(e),
	)
	return root
}

// env is the state shared by one invocation's commands.
type env struct {
	app *App
	p   printer
	all []resource
}
