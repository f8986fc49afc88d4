package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type appendCall struct {
	path   string
	query  string
	values [][]any
}

func newFakeSheets(t *testing.T, status int) (*Client, *[]appendCall) {
	t.Helper()
	var calls []appendCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Values [][]any `json:"values"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		calls = append(calls, appendCall{path: r.URL.Path, query: r.URL.RawQuery, values: body.Values})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"forbidden"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id","updates":{"updatedRange":"Transactions!A12:F12","updatedRows":1}}`))
	}))
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return NewWithService(svc, Settings{SpreadsheetID: "sheet-id"}), &calls
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Settings{CredentialsJSON: "{}"})
	if !errors.Is(err, ErrMissingSpreadsheet) {
		t.Fatalf("expected ErrMissingSpreadsheet, got %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Settings{SpreadsheetID: "id"})
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Settings{
		SpreadsheetID:   "id",
		CredentialsFile: filepath.Join(t.TempDir(), "missing.json"),
	})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCredentialsPrecedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(file, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := credentials(Settings{CredentialsJSON: `{"from":"inline"}`, CredentialsFile: file})
	if err != nil || string(got) != `{"from":"inline"}` {
		t.Errorf("inline JSON should win, got %s, %v", got, err)
	}
	got, err = credentials(Settings{CredentialsFile: file})
	if err != nil || string(got) != `{"from":"file"}` {
		t.Errorf("file credentials, got %s, %v", got, err)
	}
}

func TestTransactionRow(t *testing.T) {
	tx := core.SeedTransactions()[1]
	row := TransactionRow("7", tx)
	want := []any{"2025-10-21", "Expense", "Food", 1200.0, "Groceries", "7"}
	if len(row) != len(want) || len(row) != len(TransactionHeader) {
		t.Fatalf("row = %v", row)
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %d = %v, want %v", i, row[i], want[i])
		}
	}
}

func TestAppendTransaction(t *testing.T) {
	client, calls := newFakeSheets(t, http.StatusOK)

	ref, err := client.AppendTransaction(context.Background(), "mem:11", core.SeedTransactions()[1])
	if err != nil {
		t.Fatalf("AppendTransaction() error = %v", err)
	}
	if ref != "Transactions!A12:F12" {
		t.Errorf("ref = %q", ref)
	}
	if len(*calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(*calls))
	}
	call := (*calls)[0]
	if !strings.HasSuffix(call.path, ":append") || !strings.Contains(call.path, "/spreadsheets/sheet-id/values/") {
		t.Errorf("unexpected path %q", call.path)
	}
	if !strings.Contains(call.query, "valueInputOption=USER_ENTERED") {
		t.Errorf("missing valueInputOption in %q", call.query)
	}
	if len(call.values) != 1 || call.values[0][2] != "Food" || call.values[0][3] != 1200.0 {
		t.Errorf("unexpected values %v", call.values)
	}
}

func TestAppendAlert(t *testing.T) {
	client, calls := newFakeSheets(t, http.StatusOK)

	alert := core.Alert{Month: "2025-10", Category: "Food", Spent: core.Money{Cents: 720000}, Threshold: core.DefaultOverspendThreshold}
	if _, err := client.AppendAlert(context.Background(), alert); err != nil {
		t.Fatalf("AppendAlert() error = %v", err)
	}
	if !strings.Contains((*calls)[0].path, "Alerts") {
		t.Errorf("alert should go to the alerts sheet, path %q", (*calls)[0].path)
	}
	if got := (*calls)[0].values[0][4]; got != alert.Message() {
		t.Errorf("message column = %v", got)
	}
}

func TestAppendTransaction_Errors(t *testing.T) {
	client, calls := newFakeSheets(t, http.StatusForbidden)

	_, err := client.AppendTransaction(context.Background(), "1", core.Transaction{})
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("expected validation error, got %v", err)
	}
	if len(*calls) != 0 {
		t.Error("invalid transactions must not reach the API")
	}

	_, err = client.AppendTransaction(context.Background(), "1", core.SeedTransactions()[0])
	if err == nil || !strings.Contains(err.Error(), "append to Transactions") {
		t.Errorf("expected API error, got %v", err)
	}

	var nilSvc Client
	if _, err := nilSvc.AppendAlert(context.Background(), core.Alert{}); err == nil {
		t.Error("expected error without service")
	}
}
