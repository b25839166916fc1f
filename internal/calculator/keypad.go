package calculator

// Button is one key of the keypad.
type Button struct {
	Label string
	Key   string // value accepted by ParseKey
	Class string // "", "operator", "all-clear" or "equal-sign"
}

// Keypad is the 4x4 button layout, row by row.
var Keypad = [][]Button{
	{{Label: "7", Key: "7"}, {Label: "8", Key: "8"}, {Label: "9", Key: "9"}, {Label: "+", Key: "+", Class: "operator"}},
	{{Label: "4", Key: "4"}, {Label: "5", Key: "5"}, {Label: "6", Key: "6"}, {Label: "-", Key: "-", Class: "operator"}},
	{{Label: "1", Key: "1"}, {Label: "2", Key: "2"}, {Label: "3", Key: "3"}, {Label: "×", Key: "*", Class: "operator"}},
	{{Label: "AC", Key: "AC", Class: "all-clear"}, {Label: "0", Key: "0"}, {Label: "=", Key: "=", Class: "equal-sign"}, {Label: "÷", Key: "/", Class: "operator"}},
}
