package calculator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey is returned when a key label does not name a calculator button.
var ErrUnknownKey = errors.New("unknown key")

// EventKind identifies which button raised an Event.
type EventKind string

const (
	DigitEvent    EventKind = "digit"
	OperatorEvent EventKind = "operator"
	EqualsEvent   EventKind = "equals"
	ClearEvent    EventKind = "clear"
)

// Event is a single button press.
type Event struct {
	Kind     EventKind
	Digit    int
	Operator Operator
}

// Digit returns the event for digit button d.
func Digit(d int) Event { return Event{Kind: DigitEvent, Digit: d} }

// Op returns the event for operator button op.
func Op(op Operator) Event { return Event{Kind: OperatorEvent, Operator: op} }

// Equals returns the event for the "=" button.
func Equals() Event { return Event{Kind: EqualsEvent} }

// Clear returns the event for the "AC" button.
func Clear() Event { return Event{Kind: ClearEvent} }

// Name is the span and metric name of the event.
func (e Event) Name() string {
	if e.Kind == OperatorEvent {
		return string(e.Operator)
	}
	return string(e.Kind)
}

// Validate reports whether the event carries a usable payload.
func (e Event) Validate() error {
	switch e.Kind {
	case DigitEvent:
		if e.Digit < 0 || e.Digit > 9 {
			return fmt.Errorf("digit %d out of range: %w", e.Digit, ErrUnknownKey)
		}
	case OperatorEvent:
		if !e.Operator.Valid() {
			return fmt.Errorf("operator %q: %w", e.Operator, ErrUnknownKey)
		}
	case EqualsEvent, ClearEvent:
	default:
		return fmt.Errorf("event kind %q: %w", e.Kind, ErrUnknownKey)
	}
	return nil
}

var keyEvents = map[string]Event{
	"+":        Op(Add),
	"add":      Op(Add),
	"-":        Op(Subtract),
	"subtract": Op(Subtract),
	"*":        Op(Multiply),
	"×":        Op(Multiply),
	"multiply": Op(Multiply),
	"/":        Op(Divide),
	"÷":        Op(Divide),
	"divide":   Op(Divide),
	"=":        Equals(),
	"equals":   Equals(),
	"ac":       Clear(),
	"clear":    Clear(),
}

// ParseKey maps a keypad label ("7", "+", "×", "=", "AC", "divide", ...) to
// its event.
func ParseKey(key string) (Event, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	if len(k) == 1 && k[0] >= '0' && k[0] <= '9' {
		return Digit(int(k[0] - '0')), nil
	}
	if ev, ok := keyEvents[k]; ok {
		return ev, nil
	}
	return Event{}, fmt.Errorf("%q: %w", key, ErrUnknownKey)
}

// Transition describes the effect of one dispatched event.
type Transition struct {
	Event     Event
	Before    State
	After     State
	Evaluated bool    // an operation was applied
	Result    float64 // valid when Evaluated
}

// Dispatch applies e to the machine.
func (m *Machine) Dispatch(e Event) (Transition, error) {
	if err := e.Validate(); err != nil {
		return Transition{}, err
	}

	t := Transition{Event: e, Before: m.State()}

	switch e.Kind {
	case DigitEvent:
		m.DigitPressed(e.Digit)
	case OperatorEvent:
		t.Result, t.Evaluated = m.operatorPressed(e.Operator)
	case EqualsEvent:
		t.Result, t.Evaluated = m.equalsPressed()
	case ClearEvent:
		m.ClearPressed()
	}

	t.After = m.State()
	return t, nil
}
