package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vanta/internal/auth"
	"vanta/internal/controller"
	"vanta/internal/core"
)

func addFilterFlags(cmd *cobra.Command, f *controller.Filter) {
	cmd.Flags().StringVar(&f.Kind, "kind", "", "only records of this type or status")
	cmd.Flags().StringVar(&f.StartDate, "start-date", "", "only records dated on or after YYYY-MM-DD")
	cmd.Flags().StringVar(&f.EndDate, "end-date", "", "only records dated on or before YYYY-MM-DD")
	cmd.Flags().StringVar(&f.Search, "search", "", "case-insensitive text match")
}

func newListCmd(e *env) *cobra.Command {
	var f controller.Filter
	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List records, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := lookup(e.all, args[0])
			if err != nil {
				return err
			}
			if err := r.Load(cmd.Context(), f); err != nil {
				return err
			}
			if err := r.Resolve(cmd.Context()); err != nil {
				return err
			}
			header, rows := r.Table()
			if len(rows) == 0 {
				fmt.Fprintln(e.p.w, e.p.style(styleDim, "No "+r.Name()+" found."))
				return nil
			}
			fmt.Fprint(e.p.w, e.p.table(header, rows))
			fmt.Fprintln(e.p.w, e.p.style(styleDim, fmt.Sprintf("%d of %d %s", len(rows), r.Total(), r.Name())))
			return nil
		},
	}
	addFilterFlags(cmd, &f)
	return cmd
}

// recordInput reads the JSON record given by --data or --file ("-" is stdin).
func recordInput(cmd *cobra.Command, data, file string) ([]byte, error) {
	switch {
	case data != "" && file != "":
		return nil, errors.New("use either --data or --file, not both")
	case data != "":
		return []byte(data), nil
	case file == "-":
		return io.ReadAll(cmd.InOrStdin())
	case file != "":
		return os.ReadFile(file)
	default:
		return nil, errors.New("a record is required: pass --data or --file")
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, &core.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return id, nil
}

func newAddCmd(e *env) *cobra.Command {
	var data, file string
	cmd := &cobra.Command{
		Use:   "add <resource>",
		Short: "Create a record from JSON",
		Example: `  vanta add transactions --data '{"date":"2024-01-01","type":"sale","description":"Invoice 7","amount":100}'
  vanta add accounts --file account.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := lookup(e.all, args[0])
			if err != nil {
				return err
			}
			body, err := recordInput(cmd, data, file)
			if err != nil {
				return err
			}
			if err := r.Load(cmd.Context(), controller.Filter{}); err != nil {
				return err
			}
			id, err := r.Submit(cmd.Context(), 0, body)
			if err != nil {
				return err
			}
			fmt.Fprintln(e.p.w, e.p.style(styleGreen, fmt.Sprintf("Created %s %d", r.Name(), id)))
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "record as a JSON object")
	cmd.Flags().StringVarP(&file, "file", "f", "", "file holding the JSON record, - for stdin")
	return cmd
}

func newEditCmd(e *env) *cobra.Command {
	var data, file string
	cmd := &cobra.Command{
		Use:   "edit <resource> <id>",
		Short: "Replace a record with the given JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := lookup(e.all, args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			body, err := recordInput(cmd, data, file)
			if err != nil {
				return err
			}
			if err := r.Load(cmd.Context(), controller.Filter{}); err != nil {
				return err
			}
			if _, err := r.Submit(cmd.Context(), id, body); err != nil {
				return err
			}
			fmt.Fprintln(e.p.w, e.p.style(styleGreen, fmt.Sprintf("Updated %s %d", r.Name(), id)))
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "record as a JSON object")
	cmd.Flags().StringVarP(&file, "file", "f", "", "file holding the JSON record, - for stdin")
	return cmd
}

func newRemoveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <resource> <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a record",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := lookup(e.all, args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			if err := r.Load(cmd.Context(), controller.Filter{}); err != nil {
				return err
			}
			if err := r.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(e.p.w, e.p.style(styleRed, fmt.Sprintf("Deleted %s %d", r.Name(), id)))
			return nil
		},
	}
}

func newExportCmd(e *env) *cobra.Command {
	var (
		f     controller.Filter
		to    string
		sheet string
	)
	cmd := &cobra.Command{
		Use:   "export <resource>",
		Short: "Export the filtered records as CSV or to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := lookup(e.all, args[0])
			if err != nil {
				return err
			}
			if err := r.Load(cmd.Context(), f); err != nil {
				return err
			}
			switch to {
			case "csv":
				_, err := io.WriteString(e.p.w, r.CSV()+"\n")
				return err
			case "sheets":
				if e.app.Sheets == nil {
					return errors.New("no spreadsheet configured: set GOOGLE_SPREADSHEET_ID")
				}
				w, err := e.app.Sheets(cmd.Context())
				if err != nil {
					return err
				}
				if sheet == "" {
					sheet = r.Name()
				}
				header, rows := r.Export()
				if err := w.ReplaceTable(cmd.Context(), sheet, header, rows); err != nil {
					return err
				}
				fmt.Fprintln(e.p.w, e.p.style(styleGreen, fmt.Sprintf("Wrote %d %s to sheet %q", len(rows), r.Name(), sheet)))
				return nil
			default:
				return fmt.Errorf("unknown export target %q (want csv or sheets)", to)
			}
		},
	}
	addFilterFlags(cmd, &f)
	cmd.Flags().StringVar(&to, "to", "csv", "csv or sheets")
	cmd.Flags().StringVar(&sheet, "sheet", "", "sheet name, defaults to the resource name")
	return cmd
}

func newTotalsCmd(e *env) *cobra.Command {
	var f controller.Filter
	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Sum sales and expenditures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := lookup(e.all, core.TransactionSchema.Resource)
			if err != nil {
				return err
			}
			if err := r.Load(cmd.Context(), f); err != nil {
				return err
			}
			ctl, _ := transactions(r)
			t := core.SummarizeTransactions(ctl.Snapshot().View)
			net := t.NetTotal.String()
			if t.NetTotal.IsNegative() {
				net = e.p.style(styleRed, net)
			} else {
				net = e.p.style(styleGreen, net)
			}
			fmt.Fprint(e.p.w, e.p.table(
				[]string{"sales", "expenditures", "net", "transactions"},
				[][]string{{t.TotalSales.String(), t.TotalExpenditures.String(), net, strconv.Itoa(t.Count)}},
			))
			return nil
		},
	}
	addFilterFlags(cmd, &f)
	return cmd
}

func newTokenCmd(e *env) *cobra.Command {
	var subject, role string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(subject) == "" {
				return &core.ValidationError{Field: "subject", Reason: "is required"}
			}
			token, err := auth.New(e.app.Auth).Mint(subject, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(e.p.w, token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "who the token is for")
	cmd.Flags().StringVar(&role, "role", "admin", "role claim")
	return cmd
}
