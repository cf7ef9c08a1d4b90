package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vanta/internal/auth"
	"vanta/internal/backend"
	"vanta/internal/core"
	"vanta/internal/sheets"
	sheetsmem "vanta/internal/sheets/memory"
)

// testApp wires an App over empty in-memory adapters.
func testApp(t *testing.T) *App {
	t.Helper()
	res, err := backend.NewFactory(nil).CreateBackend(context.Background(), backend.Config{
		Type:          backend.MemoryBackend,
		DataDirectory: t.TempDir(),
	})
	require.NoError(t, err)
	off := false
	return &App{Adapters: res.Adapters, Color: &off}
}

// run executes one command line against app. Adapters persist across runs,
// controllers do not.
func run(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app.Out = &out
	cmd := NewRootCmd(app)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seed(t *testing.T, app *App) {
	t.Helper()
	for _, data := range []string{
		`{"date":"2024-01-01","type":"sale","description":"Invoice 7","amount":100}`,
		`{"date":"2024-01-02","type":"expenditure","description":"Office rent","amount":50}`,
	} {
		_, err := run(t, app, "add", "transactions", "--data", data)
		require.NoError(t, err)
	}
}

func TestAddAndList(t *testing.T) {
	app := testApp(t)

	out, err := run(t, app, "add", "transactions", "--data",
		`{"date":"2024-01-01","type":"sale","description":"Invoice 7","amount":100}`)
	require.NoError(t, err)
	assert.Equal(t, "Created transactions 1\n", out)

	out, err = run(t, app, "list", "transactions")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"id", "date", "type", "description", "amount", "category", "account"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "2024-01-01", "sale", "Invoice", "7", "100"}, strings.Fields(lines[2]))
	assert.Equal(t, "1 of 1 transactions", lines[3])
}

func TestListResolvesForeignKeys(t *testing.T) {
	app := testApp(t)
	for _, args := range [][]string{
		{"add", "companies", "--data", `{"name":"Acme","status":"active"}`},
		{"add", "projects", "--data", `{"name":"Rollout","company_id":1,"status":"active","budget":10}`},
		{"add", "projects", "--data", `{"name":"Orphan","company_id":9,"status":"planning","budget":0}`},
		{"add", "categories", "--data", `{"name":"Rent","type":"expense"}`},
		{"add", "transactions", "--data", `{"date":"2024-01-02","type":"expenditure","description":"Office","amount":50,"category_id":1}`},
	} {
		_, err := run(t, app, args...)
		require.NoError(t, err)
	}

	out, err := run(t, app, "list", "projects")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	header := strings.Fields(lines[0])
	assert.Equal(t, "id", header[0])
	assert.Equal(t, "company", header[len(header)-1])
	assert.NotContains(t, header[1:], "id")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "#9")

	out, err = run(t, app, "list", "transactions")
	require.NoError(t, err)
	assert.Contains(t, out, "Rent")
}

func TestListEmpty(t *testing.T) {
	out, err := run(t, testApp(t), "list", "budgets")
	require.NoError(t, err)
	assert.Equal(t, "No budgets found.\n", out)
}

func TestListFilterAndOrder(t *testing.T) {
	app := testApp(t)
	seed(t, app)

	out, err := run(t, app, "list", "transactions")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Office rent"), strings.Index(out, "Invoice 7"), "newest first")

	out, err = run(t, app, "list", "transactions", "--kind", "sale")
	require.NoError(t, err)
	assert.Contains(t, out, "Invoice 7")
	assert.NotContains(t, out, "Office rent")
	assert.Contains(t, out, "1 of 2 transactions")

	out, err = run(t, app, "list", "transactions", "--search", "RENT")
	require.NoError(t, err)
	assert.Contains(t, out, "Office rent")
	assert.NotContains(t, out, "Invoice 7")
}

func TestListRejectsBadFilter(t *testing.T) {
	app := testApp(t)
	_, err := run(t, app, "list", "transactions", "--start-date", "01/02/2024")
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "start_date", ve.Field)
}

func TestEditAndRemove(t *testing.T) {
	app := testApp(t)
	seed(t, app)

	out, err := run(t, app, "edit", "transactions", "2", "--data",
		`{"date":"2024-01-02","type":"expenditure","description":"Office rent (March)","amount":55}`)
	require.NoError(t, err)
	assert.Equal(t, "Updated transactions 2\n", out)

	out, err = run(t, app, "list", "transactions")
	require.NoError(t, err)
	assert.Contains(t, out, "Office rent (March)")

	out, err = run(t, app, "rm", "transactions", "1")
	require.NoError(t, err)
	assert.Equal(t, "Deleted transactions 1\n", out)

	_, err = run(t, app, "rm", "transactions", "1")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestAddFromFileAndStdin(t *testing.T) {
	app := testApp(t)
	path := filepath.Join(t.TempDir(), "account.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"Main","type":"checking","currency":"USD","balance":0}`), 0o600))

	_, err := run(t, app, "add", "accounts", "--file", path)
	require.NoError(t, err)

	var out bytes.Buffer
	app.Out = &out
	cmd := NewRootCmd(app)
	cmd.SetIn(strings.NewReader(`{"name":"Savings","type":"savings","currency":"USD","balance":10}`))
	cmd.SetArgs([]string{"add", "accounts", "-f", "-"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Created accounts 2\n", out.String())
}

func TestAddErrors(t *testing.T) {
	app := testApp(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown resource", []string{"add", "widgets", "--data", "{}"}, `unknown resource "widgets"`},
		{"no record", []string{"add", "transactions"}, "a record is required"},
		{"both inputs", []string{"add", "transactions", "--data", "{}", "--file", "x"}, "either --data or --file"},
		{"invalid record", []string{"add", "transactions", "--data", `{"date":"2024-01-01","type":"sale","description":"x","amount":-1}`}, "amount"},
		{"bad id", []string{"edit", "transactions", "zero", "--data", "{}"}, "id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, app, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExportCSV(t *testing.T) {
	app := testApp(t)
	seed(t, app)

	out, err := run(t, app, "export", "transactions", "--end-date", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, `"date","type","description","amount"`+"\n"+`"2024-01-01","sale","Invoice 7","100"`+"\n", out)
}

func TestExportSheets(t *testing.T) {
	app := testApp(t)
	seed(t, app)
	store := sheetsmem.New()
	app.Sheets = func(context.Context) (sheets.TableWriter, error) { return store, nil }

	out, err := run(t, app, "export", "transactions", "--to", "sheets")
	require.NoError(t, err)
	assert.Equal(t, "Wrote 2 transactions to sheet \"transactions\"\n", out)

	table, err := store.ReadTable(context.Background(), "transactions")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"date", "type", "description", "amount"},
		{"2024-01-02", "expenditure", "Office rent", "50"},
		{"2024-01-01", "sale", "Invoice 7", "100"},
	}, table)
}

func TestExportSheetsNotConfigured(t *testing.T) {
	_, err := run(t, testApp(t), "export", "transactions", "--to", "sheets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no spreadsheet configured")
}

func TestTotals(t *testing.T) {
	app := testApp(t)
	seed(t, app)

	out, err := run(t, app, "totals")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"100", "50", "50", "2"}, strings.Fields(lines[2]))

	out, err = run(t, app, "totals", "--kind", "expenditure")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, []string{"0", "50", "-50", "1"}, strings.Fields(lines[2]))
}

func TestToken(t *testing.T) {
	app := testApp(t)
	app.Auth = auth.Config{JWTSecret: "0123456789abcdef0123456789abcdef"}

	out, err := run(t, app, "token", "--subject", "alice")
	require.NoError(t, err)

	p, err := auth.New(app.Auth).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Subject)
	assert.Equal(t, "admin", p.Role)

	_, err = run(t, app, "token")
	assert.Error(t, err)

	app.Auth = auth.Config{}
	_, err = run(t, app, "token", "--subject", "alice")
	assert.Error(t, err)
}

func TestTableColorOnlyWhenEnabled(t *testing.T) {
	plain := printer{color: false}.table([]string{"a"}, [][]string{{"x"}})
	assert.Equal(t, "a\n─\nx\n", plain)
}
