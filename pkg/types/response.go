// Package types holds the JSON envelopes every API response is wrapped in.
package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public face of a coded error. Message is safe to show a
// customer; internal causes are only logged.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// ChatReply is the body returned for one chat message.
type ChatReply struct {
	Reply string `json:"reply"`
}
