package handler

import (
	"npi-gateway/internal/lookup/models"
)

// CheckNPIResponse is the outbound envelope for every lookup outcome.
// Provider is set only when the status is "found"; Reason only when the
// status is "error".
type CheckNPIResponse struct {
	Status   string           `json:"status"`
	Provider *models.Provider `json:"provider"`
	Reason   *string          `json:"reason"`
}

// FromResult maps a domain result into the response envelope.
func FromResult(result *models.LookupResult) CheckNPIResponse {
	return CheckNPIResponse{
		Status:   string(result.Outcome),
		Provider: result.Provider,
	}
}

func errorResponse(reason string) CheckNPIResponse {
	return CheckNPIResponse{
		Status: "error",
		Reason: &reason,
	}
}
