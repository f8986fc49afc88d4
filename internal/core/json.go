package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// transactionJSON is the wire shape shared by the export file, the JSON API
// and queue messages.
type transactionJSON struct {
	Date     string          `json:"date"`
	Type     TransactionType `json:"type"`
	Category string          `json:"category"`
	Amount   Money           `json:"amount"`
	Note     string          `json:"note"`
}

// MarshalJSON leaves HTML characters in notes unescaped so exported files
// stay readable.
func (tx Transaction) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(transactionJSON{
		Date:     tx.Date.String(),
		Type:     tx.Type,
		Category: tx.Category,
		Amount:   tx.Amount,
		Note:     tx.Note,
	})
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (tx *Transaction) UnmarshalJSON(data []byte) error {
	var raw transactionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := ParseDate(raw.Date)
	if err != nil {
		return fmt.Errorf("date %q: %w", raw.Date, err)
	}
	typ, err := ParseTransactionType(string(raw.Type))
	if err != nil {
		return fmt.Errorf("type %q: %w", raw.Type, err)
	}
	*tx = Transaction{
		Date:     d,
		Type:     typ,
		Category: raw.Category,
		Amount:   raw.Amount,
		Note:     raw.Note,
	}
	return nil
}

// MarshalJSON writes the amount as a plain JSON number, e.g. 1200.5.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) >= 2 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	cents, err := ParseDecimalToCents(string(data))
	if err != nil {
		return fmt.Errorf("amount %s: %w", data, err)
	}
	m.Cents = cents
	return nil
}
