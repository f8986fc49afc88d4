// Package export serialises the transaction collection into downloadable
// files. JSON is the canonical format and can be decoded back; YAML and XLSX
// are one-way conveniences.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"fintrack/internal/core"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies an export encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	XLSX Format = "xlsx"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts "", "json", "yaml", "yml" and "xlsx" in any case.
// The empty string selects JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "xlsx", "excel":
		return XLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Filename is the name offered to the browser for the download.
func (f Format) Filename() string {
	return "transactions." + string(f)
}

// ContentType is the MIME type of the encoded file.
func (f Format) ContentType() string {
	switch f {
	case YAML:
		return "application/yaml"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Encode writes txs to w in the given format.
func Encode(w io.Writer, f Format, txs []core.Transaction) error {
	switch f {
	case JSON:
		return EncodeJSON(w, txs)
	case YAML:
		return EncodeYAML(w, txs)
	case XLSX:
		return EncodeXLSX(w, txs)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// EncodeJSON writes the collection as a 2-space indented array, one object
// per transaction with keys date/type/category/amount/note, followed by a
// newline.
func EncodeJSON(w io.Writer, txs []core.Transaction) error {
	if txs == nil {
		txs = []core.Transaction{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(txs); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}

// DecodeJSON reads a file produced by EncodeJSON. Every decoded transaction
// is validated.
func DecodeJSON(r io.Reader) ([]core.Transaction, error) {
	var txs []core.Transaction
	if err := json.NewDecoder(r).Decode(&txs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	return txs, nil
}

type yamlTransaction struct {
	Date     string  `yaml:"date"`
	Type     string  `yaml:"type"`
	Category string  `yaml:"category"`
	Amount   float64 `yaml:"amount"`
	Note     string  `yaml:"note"`
}

// EncodeYAML writes the collection as a YAML sequence.
func EncodeYAML(w io.Writer, txs []core.Transaction) error {
	rows := make([]yamlTransaction, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, yamlTransaction{
			Date:     tx.Date.String(),
			Type:     string(tx.Type),
			Category: tx.Category,
			Amount:   tx.Amount.Float(),
			Note:     tx.Note,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode yaml export: %w", err)
	}
	return enc.Close()
}

const (
	transactionsSheet = "Transactions"
	summarySheet      = "Summary"
)

// EncodeXLSX writes a workbook with the transactions and a monthly summary.
func EncodeXLSX(w io.Writer, txs []core.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(transactionsSheet, "A1", &[]any{"Date", "Type", "Category", "Amount", "Note"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, tx := range txs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{tx.Date.String(), string(tx.Type), tx.Category, tx.Amount.Float(), tx.Note}
		if err := f.SetSheetRow(transactionsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(transactionsSheet, "A", "E", 16); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	if err := f.SetSheetRow(summarySheet, "A1", &[]any{"Month", "Income", "Expense"}); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	months := core.MonthlySummaries(txs)
	for i, m := range months {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{m.Month, m.Income.Float(), m.Expense.Float()}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+2, err)
		}
	}
	totals := core.ComputeTotals(txs)
	cell, err := excelize.CoordinatesToCellName(1, len(months)+3)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(summarySheet, cell, &[]any{"Total", totals.Income.Float(), totals.Expense.Float(), totals.Balance.Float()}); err != nil {
		return fmt.Errorf("write totals row: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
