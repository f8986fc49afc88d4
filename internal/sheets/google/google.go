// Package google mirrors recorded transactions and overspending alerts into a
// Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"fintrack/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Settings selects the spreadsheet and the service account used to reach it.
type Settings struct {
	SpreadsheetID   string
	SheetName       string
	AlertsSheetName string
	CredentialsJSON string
	CredentialsFile string
}

var (
	ErrMissingSpreadsheet = errors.New("missing spreadsheet id")
	ErrMissingCredentials = errors.New("missing service account credentials")
)

// Client appends rows through the Sheets values API.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	alertsSheet   string
}

// TransactionHeader is the column layout of the transactions sheet.
var TransactionHeader = []any{"Date", "Type", "Category", "Amount", "Note", "Ref"}

// New creates a Sheets client authenticated with a service account. Extra
// options are appended after the credentials.
func New(ctx context.Context, s Settings, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(s.SpreadsheetID) == "" {
		return nil, ErrMissingSpreadsheet
	}

	creds, err := credentials(s)
	if err != nil {
		return nil, err
	}
	all := append([]goption.ClientOption{
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, opts...)

	svc, err := gsheet.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", s.SpreadsheetID, "sheet", s.SheetName)
	return NewWithService(svc, s), nil
}

// NewWithService wraps an already configured service.
func NewWithService(svc *gsheet.Service, s Settings) *Client {
	sheet := strings.TrimSpace(s.SheetName)
	if sheet == "" {
		sheet = "Transactions"
	}
	alerts := strings.TrimSpace(s.AlertsSheetName)
	if alerts == "" {
		alerts = "Alerts"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: s.SpreadsheetID,
		sheet:         sheet,
		alertsSheet:   alerts,
	}
}

func credentials(s Settings) ([]byte, error) {
	switch {
	case strings.TrimSpace(s.CredentialsJSON) != "":
		return []byte(s.CredentialsJSON), nil
	case strings.TrimSpace(s.CredentialsFile) != "":
		data, err := os.ReadFile(s.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	}
	if path := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read application credentials: %w", err)
		}
		return data, nil
	}
	return nil, ErrMissingCredentials
}

// TransactionRow is the sheet row for one transaction. The amount is a number
// so sheet formulas can sum the column.
func TransactionRow(ref string, tx core.Transaction) []any {
	return []any{tx.Date.String(), string(tx.Type), tx.Category, tx.Amount.Float(), tx.Note, ref}
}

// AlertRow is the sheet row for one overspending alert.
func AlertRow(a core.Alert) []any {
	return []any{a.Month, a.Category, a.Spent.Float(), a.Threshold.Float(), a.Message()}
}

// AppendTransaction adds one row and returns the updated A1 range.
func (c *Client) AppendTransaction(ctx context.Context, ref string, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	return c.appendRow(ctx, c.sheet, "A:F", TransactionRow(ref, tx))
}

// AppendAlert adds one row to the alerts sheet.
func (c *Client) AppendAlert(ctx context.Context, a core.Alert) (string, error) {
	return c.appendRow(ctx, c.alertsSheet, "A:E", AlertRow(a))
}

func (c *Client) appendRow(ctx context.Context, sheet, cols string, row []any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!%s", sheet, cols)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", sheet, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}
