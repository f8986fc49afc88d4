package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"date": "2025-10-26", "category": " Food ", "amount": 42.5, "flag": true}`
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}
	if got := parser.Get("category"); got != "Food" {
		t.Errorf("Get('category') = %q, want 'Food'", got)
	}
	if got := parser.Get("amount"); got != "42.5" {
		t.Errorf("Get('amount') = %q, want '42.5'", got)
	}
	if got := parser.Get("flag"); got != "true" {
		t.Errorf("Get('flag') = %q, want 'true'", got)
	}
	if got := parser.Get("missing"); got != "" {
		t.Errorf("Get('missing') = %q, want empty", got)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "category=Food&note=Movies+%26+Games%01"
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parser.IsJSON() || parser.LooksJSON() {
		t.Error("Expected form data not to be treated as JSON")
	}
	if got := parser.Get("note"); got != "Movies & Games" {
		t.Errorf("Get('note') = %q, want control characters stripped", got)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"truncated json", `{"date": "2025-10-26"`},
		{"json array", `[1, 2]`},
		{"bad escape", "note=%zz"},
		{"too large", "note=" + strings.Repeat("a", maxBodyBytes)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(tt.body))
			err := NewRequestBodyParser(req).Parse()
			if !errors.Is(err, ErrMalformedBody) {
				t.Fatalf("Parse() error = %v, want ErrMalformedBody", err)
			}
		})
	}
}

func TestRequestBodyParser_Transaction(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    core.Transaction
		wantErr error
	}{
		{
			name: "form with comma decimal",
			body: "date=2025-10-26&type=expense&category=Food&amount=12,345&note=Lunch",
			want: core.Transaction{
				Date: core.NewDate(2025, 10, 26), Type: core.Expense,
				Category: "Food", Amount: core.Money{Cents: 1235}, Note: "Lunch",
			},
		},
		{
			name: "json number amount",
			body: `{"date":"2025-10-20","type":"Income","category":"Salary","amount":50000}`,
			want: core.Transaction{
				Date: core.NewDate(2025, 10, 20), Type: core.Income,
				Category: "Salary", Amount: core.Money{Cents: 5000000},
			},
		},
		{
			name: "zero amount accepted",
			body: "date=2025-10-26&type=Income&category=Gift&amount=0",
			want: core.Transaction{
				Date: core.NewDate(2025, 10, 26), Type: core.Income,
				Category: "Gift",
			},
		},
		{name: "missing date", body: "type=Income&category=Gift&amount=1", wantErr: core.ErrInvalidDate},
		{name: "bad type", body: "date=2025-10-26&type=Loan&category=Gift&amount=1", wantErr: core.ErrInvalidType},
		{name: "NaN amount", body: "date=2025-10-26&type=Income&category=Gift&amount=NaN", wantErr: core.ErrInvalidAmount},
		{name: "blank category", body: "date=2025-10-26&type=Income&category=+++&amount=1", wantErr: core.ErrEmptyCategory},
		{name: "long note", body: "date=2025-10-26&type=Income&category=Gift&amount=1&note=" + strings.Repeat("n", 201), wantErr: core.ErrNoteTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(tt.body))
			parser := NewRequestBodyParser(req)
			if err := parser.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got, err := parser.Transaction()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Transaction() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Transaction() error = %v", err)
			}
			if !got.Date.Equal(tt.want.Date.Time) || got.Type != tt.want.Type || got.Category != tt.want.Category ||
				got.Amount != tt.want.Amount || got.Note != tt.want.Note {
				t.Errorf("Transaction() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRequireMethod(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		allowed []string
		wantErr bool
	}{
		{"POST allowed", http.MethodPost, []string{http.MethodPost}, false},
		{"HEAD allowed with multiple", http.MethodHead, []string{http.MethodGet, http.MethodHead}, false},
		{"GET not allowed", http.MethodGet, []string{http.MethodPost}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			result := RequireMethod(req, tt.allowed...)

			if tt.wantErr && result == nil {
				t.Error("Expected error response but got nil")
			}
			if !tt.wantErr && result != nil {
				t.Error("Expected nil but got error response")
			}
		})
	}
}

func TestWantsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	if !wantsJSON(req) {
		t.Error("Accept: application/json should ask for JSON")
	}
	req.Header.Set("HX-Request", "true")
	if wantsJSON(req) {
		t.Error("htmx requests always get HTML")
	}
}
