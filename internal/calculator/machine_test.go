package calculator

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

// press feeds keypad labels to m, failing the test on unknown labels.
func press(t *testing.T, m *Machine, keys ...string) {
	t.Helper()
	for _, key := range keys {
		ev, err := ParseKey(key)
		if err != nil {
			t.Fatalf("parsing key %q: %v", key, err)
		}
		if _, err := m.Dispatch(ev); err != nil {
			t.Fatalf("dispatching %q: %v", key, err)
		}
	}
}

func TestNewMachineStartsInInitialState(t *testing.T) {
	s := NewMachine().State()

	if s.Display != "0" {
		t.Fatalf("expected display %q, got %q", "0", s.Display)
	}
	if s.FirstOperand != nil {
		t.Fatalf("expected no first operand, got %v", *s.FirstOperand)
	}
	if s.Operator != nil {
		t.Fatalf("expected no operator, got %q", *s.Operator)
	}
	if s.AwaitingSecondOperand {
		t.Fatal("expected awaiting flag to be false")
	}
}

func TestMachineScenarios(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
	}{
		{name: "leading zero replaced", keys: []string{"0", "5", "3"}, want: "53"},
		{name: "addition", keys: []string{"7", "+", "3", "="}, want: "10"},
		{name: "left to right chain", keys: []string{"6", "-", "2", "*", "4", "="}, want: "16"},
		{name: "chain shows running result", keys: []string{"6", "-", "2", "*"}, want: "4"},
		{name: "multi digit operands", keys: []string{"1", "2", "×", "1", "2", "="}, want: "144"},
		{name: "fractional result", keys: []string{"1", "/", "4", "="}, want: "0.25"},
		{name: "negative result", keys: []string{"3", "-", "8", "="}, want: "-5"},
		{name: "division by zero", keys: []string{"5", "/", "0", "="}, want: "Infinity"},
		{name: "negative division by zero", keys: []string{"0", "-", "5", "/", "0", "="}, want: "-Infinity"},
		{name: "zero by zero", keys: []string{"0", "÷", "0", "="}, want: "NaN"},
		{name: "operator then digit shows digit", keys: []string{"4", "5", "+", "9"}, want: "9"},
		{name: "equals without operator", keys: []string{"4", "2", "="}, want: "42"},
		{name: "digits extend a result", keys: []string{"7", "+", "3", "=", "5"}, want: "105"},
		{name: "operator after result keeps result operand", keys: []string{"7", "+", "3", "=", "5", "+", "1", "="}, want: "11"},
		{name: "infinity keeps reading as infinity", keys: []string{"5", "/", "0", "=", "7", "-", "1", "="}, want: "Infinity"},
		{name: "clear", keys: []string{"9", "*", "9", "AC"}, want: "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMachine()
			press(t, m, tc.keys...)

			if got := m.Display(); got != tc.want {
				t.Fatalf("keys %v: expected display %q, got %q", tc.keys, tc.want, got)
			}
		})
	}
}

func TestDigitsConcatenateWithoutLeadingZeros(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		m := NewMachine()
		var typed strings.Builder

		for n := rng.Intn(12) + 1; n > 0; n-- {
			d := rng.Intn(10)
			typed.WriteByte(byte('0' + d))
			m.DigitPressed(d)
		}

		want := strings.TrimLeft(typed.String(), "0")
		if want == "" {
			want = "0"
		}
		if got := m.Display(); got != want {
			t.Fatalf("typed %q: expected display %q, got %q", typed.String(), want, got)
		}
	}
}

func TestOperatorThenDigitReplacesDisplay(t *testing.T) {
	for _, op := range []Operator{Add, Subtract, Multiply, Divide} {
		for d := 0; d <= 9; d++ {
			m := NewMachine()
			m.DigitPressed(8)
			m.DigitPressed(8)
			m.OperatorPressed(op)
			m.DigitPressed(d)

			want := string(rune('0' + d))
			if got := m.Display(); got != want {
				t.Fatalf("%s then %d: expected display %q, got %q", op, d, want, got)
			}
			if m.State().AwaitingSecondOperand {
				t.Fatalf("%s then %d: expected awaiting flag cleared", op, d)
			}
		}
	}
}

func TestRepeatedOperatorOnlyReplacesOperator(t *testing.T) {
	m := NewMachine()
	press(t, m, "3", "+")
	before := m.State()

	press(t, m, "*")
	after := m.State()

	if after.Display != before.Display {
		t.Fatalf("expected display %q, got %q", before.Display, after.Display)
	}
	if *after.FirstOperand != *before.FirstOperand {
		t.Fatalf("expected first operand %v, got %v", *before.FirstOperand, *after.FirstOperand)
	}
	if *after.Operator != Multiply {
		t.Fatalf("expected operator %q, got %q", Multiply, *after.Operator)
	}

	press(t, m, "4", "=")
	if got := m.Display(); got != "12" {
		t.Fatalf("expected 3*4 = %q, got %q", "12", got)
	}
}

func TestRepeatedOperatorInChainDoesNotRecompute(t *testing.T) {
	m := NewMachine()
	press(t, m, "2", "+", "3", "+")

	if got := m.Display(); got != "5" {
		t.Fatalf("expected running result %q, got %q", "5", got)
	}

	press(t, m, "+", "-")
	if got := m.Display(); got != "5" {
		t.Fatalf("expected display to stay %q, got %q", "5", got)
	}

	press(t, m, "1", "=")
	if got := m.Display(); got != "4" {
		t.Fatalf("expected 5-1 = %q, got %q", "4", got)
	}
}

func TestEqualsIsIdempotent(t *testing.T) {
	m := NewMachine()
	press(t, m, "7", "+", "3", "=")
	first := m.State()

	m.EqualsPressed()
	second := m.State()

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected state %+v after second equals, got %+v", first, second)
	}
	if second.Display != "10" {
		t.Fatalf("expected display %q, got %q", "10", second.Display)
	}
}

func TestEqualsWithoutOperatorIsNoop(t *testing.T) {
	m := NewMachine()
	want := m.State()

	m.EqualsPressed()

	if got := m.State(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected state %+v, got %+v", want, got)
	}
}

func TestClearAlwaysRestoresInitialState(t *testing.T) {
	initial := NewMachine().State()

	sequences := [][]string{
		{},
		{"4"},
		{"4", "+"},
		{"4", "+", "5"},
		{"4", "+", "5", "="},
		{"5", "/", "0", "="},
		{"1", "*", "2", "-"},
	}

	for _, keys := range sequences {
		m := NewMachine()
		press(t, m, keys...)
		m.ClearPressed()

		if got := m.State(); !reflect.DeepEqual(got, initial) {
			t.Fatalf("after %v and clear: expected %+v, got %+v", keys, initial, got)
		}
	}
}

func TestStateInvariantsHoldForRandomPresses(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	labels := []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "+", "-", "*", "/", "=", "AC"}

	m := NewMachine()
	for i := 0; i < 5000; i++ {
		press(t, m, labels[rng.Intn(len(labels))])
		s := m.State()

		if s.Display == "" {
			t.Fatalf("step %d: display is empty", i)
		}
		if s.FirstOperand == nil && s.Operator != nil {
			t.Fatalf("step %d: operator %q pending without a first operand", i, *s.Operator)
		}
		if s.AwaitingSecondOperand && s.Operator == nil {
			t.Fatalf("step %d: awaiting a second operand with no operator", i)
		}
	}
}

func TestStateSnapshotIsDetached(t *testing.T) {
	m := NewMachine()
	press(t, m, "2", "+")

	s := m.State()
	*s.FirstOperand = 99
	*s.Operator = Divide

	again := m.State()
	if *again.FirstOperand != 2 || *again.Operator != Add {
		t.Fatalf("snapshot mutation leaked into machine: %+v", again)
	}
}

func TestOutOfRangeInputsAreIgnored(t *testing.T) {
	m := NewMachine()
	press(t, m, "4")

	m.DigitPressed(10)
	m.DigitPressed(-1)
	m.OperatorPressed(Operator("modulo"))

	s := m.State()
	if s.Display != "4" || s.FirstOperand != nil || s.Operator != nil {
		t.Fatalf("expected untouched state, got %+v", s)
	}
}
