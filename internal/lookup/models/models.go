package models

import (
	dErrors "npi-gateway/pkg/domain-errors"
)

// NPI is a validated National Provider Identifier: ten digits whose check
// digit satisfies the Luhn algorithm over the "80840"-prefixed number, per
// the NPPES enumeration standard.
type NPI string

// luhnPrefixSum is the Luhn contribution of the constant "80840" card issuer
// prefix every NPI carries implicitly.
const luhnPrefixSum = 24

// ParseNPI validates the raw identifier and returns it as an NPI.
// Validation is purely local; no network call is made here.
func ParseNPI(raw string) (NPI, error) {
	if len(raw) != 10 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identifier must be exactly 10 digits")
	}
	sum := luhnPrefixSum
	double := true // rightmost of the first nine digits is doubled
	for i := 8; i >= 0; i-- {
		c := raw[i]
		if c < '0' || c > '9' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "identifier must contain only digits")
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	check := raw[9]
	if check < '0' || check > '9' {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identifier must contain only digits")
	}
	if (10-sum%10)%10 != int(check-'0') {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identifier check digit is invalid")
	}
	return NPI(raw), nil
}

// String returns the identifier digits.
func (n NPI) String() string {
	return string(n)
}

// Truncated returns the first four digits followed by a mask, for log lines.
func (n NPI) Truncated() string {
	if len(n) < 4 {
		return "****"
	}
	return string(n[:4]) + "******"
}

// EntityType distinguishes individual providers from organizations.
type EntityType string

const (
	EntityIndividual   EntityType = "NPI-1"
	EntityOrganization EntityType = "NPI-2"
)

// Address is the normalized practice-location address.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Provider carries the normalized attributes copied from the upstream
// registry schema. It exists only for the duration of one request.
type Provider struct {
	NPI              NPI        `json:"npi"`
	EntityType       EntityType `json:"entity_type"`
	Status           string     `json:"status"`
	FirstName        string     `json:"first_name,omitempty"`
	LastName         string     `json:"last_name,omitempty"`
	OrganizationName string     `json:"organization_name,omitempty"`
	Address          *Address   `json:"practice_address,omitempty"`
}

// Active reports whether the registry lists the provider as active.
func (p *Provider) Active() bool {
	return p.Status == "A"
}

// LookupRequest is the domain-level request: a validated identifier plus
// caller metadata the gateway passes through without interpreting.
type LookupRequest struct {
	Identifier string
	Metadata   map[string]string
}

// Outcome tags a LookupResult.
type Outcome string

const (
	OutcomeFound    Outcome = "found"
	OutcomeNotFound Outcome = "not_found"
	OutcomeInactive Outcome = "inactive"
)

// LookupResult is the tagged outcome of a lookup. Provider is set only for
// OutcomeFound; a record that exists but is not active yields
// OutcomeInactive with no attributes, matching what callers may show.
type LookupResult struct {
	Outcome  Outcome
	Provider *Provider
}
