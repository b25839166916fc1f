package calculator

// KeyRequest is the JSON body for POST /calculator/sessions/{id}/keys.
type KeyRequest struct {
	Key string `json:"key"` // "0".."9", "+", "-", "*", "/", "=", "AC"
}

// StateResponse is the JSON view of a session. FirstOperand uses the display
// text form so that Infinity and NaN survive JSON encoding.
type StateResponse struct {
	SessionID             string    `json:"session_id"`
	Display               string    `json:"display"`
	FirstOperand          *string   `json:"first_operand"`
	Operator              *Operator `json:"operator"`
	AwaitingSecondOperand bool      `json:"awaiting_second_operand"`
}

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Keys []string `json:"keys"`
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
type EvaluateResponse struct {
	Keys    []string    `json:"keys"`
	Steps   []KeyResult `json:"steps"`
	Display string      `json:"display"`
}

// KeyResult records the display after one replayed key.
type KeyResult struct {
	Key     string `json:"key"`
	Display string `json:"display"`
}

func newStateResponse(id string, s State) StateResponse {
	resp := StateResponse{
		SessionID:             id,
		Display:               s.Display,
		Operator:              s.Operator,
		AwaitingSecondOperand: s.AwaitingSecondOperand,
	}
	if s.FirstOperand != nil {
		first := formatNumber(*s.FirstOperand)
		resp.FirstOperand = &first
	}
	return resp
}
