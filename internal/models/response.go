package models

// SubmitResponse is returned once a record has been stored.
type SubmitResponse struct {
	Message  string          `json:"message"`
	Location *LocationRecord `json:"location"`
}

// ErrorResponse is returned for rejected or failed submissions.
type ErrorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"` // Offending input field, validation failures only
	Error   string `json:"error,omitempty"` // Diagnostic detail, storage failures only
}

// HealthResponse reports whether the location store is reachable.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
