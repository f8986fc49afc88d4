package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"

	"github.com/google/uuid"
)

// Event kinds carried on the queue.
const (
	KindTransactionRecorded = "transaction.recorded"
	KindOverspendingAlert   = "overspending.alert"
)

var ErrUnknownKind = errors.New("unknown event kind")

// Event is the envelope for every message. Exactly one of Transaction or
// Alert is set, according to Kind.
type Event struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	Timestamp   time.Time         `json:"timestamp"`
	Ref         string            `json:"ref,omitempty"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Alert       *AlertPayload     `json:"alert,omitempty"`
}

// AlertPayload is the wire form of core.Alert.
type AlertPayload struct {
	Month     string     `json:"month"`
	Category  string     `json:"category"`
	Spent     core.Money `json:"spent"`
	Threshold core.Money `json:"threshold"`
	Message   string     `json:"message"`
}

// Alert converts the payload back to the domain type.
func (p AlertPayload) Alert() core.Alert {
	return core.Alert{Month: p.Month, Category: p.Category, Spent: p.Spent, Threshold: p.Threshold}
}

func newEvent(kind string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransactionRecorded wraps a stored transaction and its store reference.
func NewTransactionRecorded(ref string, tx core.Transaction) *Event {
	e := newEvent(KindTransactionRecorded)
	e.Ref = ref
	e.Transaction = &tx
	return e
}

// NewOverspendingAlert wraps an alert raised after a write.
func NewOverspendingAlert(a core.Alert) *Event {
	e := newEvent(KindOverspendingAlert)
	e.Alert = &AlertPayload{
		Month:     a.Month,
		Category:  a.Category,
		Spent:     a.Spent,
		Threshold: a.Threshold,
		Message:   a.Message(),
	}
	return e
}

// ToJSON converts the message to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes and checks an envelope.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Kind {
	case KindTransactionRecorded:
		if e.Transaction == nil {
			return nil, fmt.Errorf("%s event without transaction", e.Kind)
		}
	case KindOverspendingAlert:
		if e.Alert == nil {
			return nil, fmt.Errorf("%s event without alert", e.Kind)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	return &e, nil
}
