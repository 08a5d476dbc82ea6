package handler

// CheckNPIRequest is the inbound JSON body for POST /check-npi.
// Metadata is passed through to logging (keys only) and never persisted.
type CheckNPIRequest struct {
	Identifier string            `json:"identifier"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
