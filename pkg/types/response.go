package types

// SuccessEnvelope is the wire shape for successful API responses.
type SuccessEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorEnvelope is the wire shape for failed API responses. Error carries a
// human-readable message; Code carries the machine-readable taxonomy code.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
