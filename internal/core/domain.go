package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  TransactionType = "Income"
	Expense TransactionType = "Expense"
)

// DateLayout is the calendar-day format used on the wire and in forms.
const DateLayout = "2006-01-02"

// MonthLayout formats a month key (year-month).
const MonthLayout = "2006-01"

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is one recorded financial event. Transactions are immutable
	// once stored and carry no identifier.
	Transaction struct {
		Date     Date
		Type     TransactionType
		Category string
		Amount   Money
		Note     string
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyCategory   = errors.New("empty category")
	ErrCategoryTooLong = errors.New("category too long (max 100 characters)")
	ErrNoteTooLong     = errors.New("note too long (max 200 characters)")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String returns the date in YYYY-MM-DD format.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey returns the year-month bucket of the date, e.g. "2025-10".
func (d Date) MonthKey() string {
	return d.Format(MonthLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ParseTransactionType accepts any letter case and returns the canonical type.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	}
	return "", ErrInvalidType
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	if m.Cents > MaxAmount.Cents {
		return ErrAmountTooLarge
	}
	return nil
}

func (tx Transaction) Validate() error {
	if err := tx.Date.Validate(); err != nil {
		return err
	}
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(tx.Category) == "" {
		return ErrEmptyCategory
	}
	if utf8.RuneCountInString(tx.Category) > 100 {
		return ErrCategoryTooLong
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(tx.Note) > 200 {
		return ErrNoteTooLong
	}
	return nil
}

// IsValidationError reports whether err is one of the domain validation errors.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidDate, ErrInvalidType, ErrInvalidAmount,
		ErrEmptyCategory, ErrCategoryTooLong, ErrNoteTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
