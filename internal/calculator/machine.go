package calculator

// Operator is a pending binary operation.
type Operator string

const (
	Add      Operator = "add"
	Subtract Operator = "subtract"
	Multiply Operator = "multiply"
	Divide   Operator = "divide"
)

// Valid reports whether op is one of the four supported operators.
func (op Operator) Valid() bool {
	switch op {
	case Add, Subtract, Multiply, Divide:
		return true
	}
	return false
}

// State is a read-only snapshot of a Machine.
type State struct {
	Display               string
	FirstOperand          *float64
	Operator              *Operator
	AwaitingSecondOperand bool
}

// Machine is the calculator state machine. It is not safe for concurrent
// use; callers serialise events (see Store).
type Machine struct {
	display  string
	first    float64
	hasFirst bool
	op       Operator // "" when no operation is pending
	awaiting bool
}

// NewMachine returns a machine in the initial state.
func NewMachine() *Machine {
	m := &Machine{}
	m.ClearPressed()
	return m
}

// Display returns the text to render.
func (m *Machine) Display() string {
	return m.display
}

// State returns a snapshot of the machine.
func (m *Machine) State() State {
	s := State{
		Display:               m.display,
		AwaitingSecondOperand: m.awaiting,
	}
	if m.hasFirst {
		first := m.first
		s.FirstOperand = &first
	}
	if m.op != "" {
		op := m.op
		s.Operator = &op
	}
	return s
}

// DigitPressed enters digit d. Values outside 0-9 are ignored.
func (m *Machine) DigitPressed(d int) {
	if d < 0 || d > 9 {
		return
	}
	digit := string(rune('0' + d))

	switch {
	case m.awaiting:
		m.display = digit
		m.awaiting = false
	case m.display == "0":
		m.display = digit
	default:
		m.display += digit
	}
}

// OperatorPressed selects op as the pending operation, first folding any
// pending operation into the running result. Unknown operators are ignored.
func (m *Machine) OperatorPressed(op Operator) {
	m.operatorPressed(op)
}

func (m *Machine) operatorPressed(op Operator) (float64, bool) {
	if !op.Valid() {
		return 0, false
	}

	var (
		result    float64
		evaluated bool
	)

	input := parseNumber(m.display)

	switch {
	case !m.hasFirst:
		m.first = input
		m.hasFirst = true
	case m.op != "" && !m.awaiting:
		// Repeated operator presses only replace the operator.
		result = evaluate(m.op, m.first, input)
		m.display = formatNumber(result)
		m.first = result
		evaluated = true
	}

	m.op = op
	m.awaiting = true

	return result, evaluated
}

// EqualsPressed applies the pending operator. Without one it does nothing.
func (m *Machine) EqualsPressed() {
	m.equalsPressed()
}

func (m *Machine) equalsPressed() (float64, bool) {
	if m.op == "" {
		return 0, false
	}

	result := evaluate(m.op, m.first, parseNumber(m.display))
	m.display = formatNumber(result)
	m.first = result
	m.op = ""
	m.awaiting = false

	return result, true
}

// ClearPressed returns the machine to its initial state.
func (m *Machine) ClearPressed() {
	m.display = "0"
	m.first = 0
	m.hasFirst = false
	m.op = ""
	m.awaiting = false
}

func evaluate(op Operator, a, b float64) float64 {
	switch op {
	case Add:
		return a + b
	case Subtract:
		return a - b
	case Multiply:
		return a * b
	case Divide:
		return a / b
	}
	return b
}
