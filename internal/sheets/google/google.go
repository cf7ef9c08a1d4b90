// Package google writes tables to a Google spreadsheet through the Sheets v4
// API using service-account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"vanta/internal/core"
	ports "vanta/internal/sheets"
)

var _ ports.TableStore = (*Client)(nil)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// New builds a client from service-account key JSON.
func New(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*Client, error) {
	if len(credentialsJSON) == 0 {
		return nil, errors.New("missing service account credentials")
	}
	return NewWithOptions(ctx, spreadsheetID,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

// NewWithOptions builds a client from raw API options.
func NewWithOptions(ctx context.Context, spreadsheetID string, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// ReplaceTable clears sheet and writes header and rows from A1.
func (c *Client) ReplaceTable(ctx context.Context, sheet string, header []string, rows [][]string) error {
	if err := c.ensureSheet(ctx, sheet); err != nil {
		return err
	}

	rng := quoteSheet(sheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return classify(fmt.Sprintf("clear %s", sheet), err)
	}

	values := make([][]any, 0, len(rows)+1)
	for _, r := range ports.Table(header, rows) {
		values = append(values, toCells(r))
	}
	vr := &gsheet.ValueRange{Values: values}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return classify(fmt.Sprintf("write %s", sheet), err)
	}
	return nil
}

// ReadTable returns the sheet's rows as text.
func (c *Client) ReadTable(ctx context.Context, sheet string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quoteSheet(sheet)).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		// a range naming an unknown sheet is rejected as a bad request
		if errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest {
			return nil, nil
		}
		return nil, classify(fmt.Sprintf("read %s", sheet), err)
	}
	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		out = append(out, toStrings(row))
	}
	return out, nil
}

func (c *Client) ensureSheet(ctx context.Context, sheet string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return classify("read spreadsheet", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == sheet {
			return nil
		}
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: sheet}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return classify(fmt.Sprintf("add sheet %s", sheet), err)
	}
	return nil
}

func classify(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden) {
		return fmt.Errorf("%s: %w: %v", op, core.ErrAuth, err)
	}
	return fmt.Errorf("%s: %w: %v", op, core.ErrUnavailable, err)
}

// quoteSheet renders a sheet name as an A1 range prefix.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func toCells(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
