package types

// SuccessEnvelope wraps every successful JSON response body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error shape. Details is only populated for
// codes whose metadata allows it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
