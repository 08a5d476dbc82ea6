// Package upstream implements the client for the NPPES registry lookup API.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"npi-gateway/internal/lookup/models"
)

// apiVersion is the NPPES API version this client speaks.
const apiVersion = "2.1"

// maxResponseBytes caps how much of an upstream response is read. NPPES
// single-number lookups are small; anything larger is suspect.
const maxResponseBytes = 1 << 20

// Client queries the provider registry for a single identifier.
type Client interface {
	// Lookup issues exactly one registry call for the given identifier.
	//
	// Returns ErrNotFound if no record exists. Returns a *RegistryError
	// (timeout, upstream_failure, malformed_response) on failure. The
	// returned record may describe an inactive provider; the caller decides
	// what that means.
	Lookup(ctx context.Context, number models.NPI) (*models.Provider, error)
}

// HTTPClient is the production NPPES client.
type HTTPClient struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewHTTPClient builds a registry client with a strict per-call timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		timeout: timeout,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// nppesResponse mirrors the subset of the NPPES 2.1 schema the gateway reads.
type nppesResponse struct {
	ResultCount int           `json:"result_count"`
	Results     []nppesResult `json:"results"`
	Errors      []nppesError  `json:"Errors"`
}

type nppesError struct {
	Description string `json:"description"`
	Field       string `json:"field"`
	Number      string `json:"number"`
}

type nppesResult struct {
	Number          string         `json:"number"`
	EnumerationType string         `json:"enumeration_type"`
	Basic           nppesBasic     `json:"basic"`
	Addresses       []nppesAddress `json:"addresses"`
}

type nppesBasic struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	OrganizationName string `json:"organization_name"`
	Status           string `json:"status"`
}

type nppesAddress struct {
	AddressPurpose string `json:"address_purpose"`
	Address1       string `json:"address_1"`
	Address2       string `json:"address_2"`
	City           string `json:"city"`
	State          string `json:"state"`
	PostalCode     string `json:"postal_code"`
	CountryCode    string `json:"country_code"`
}

// Lookup implements Client against the NPPES HTTP API.
func (c *HTTPClient) Lookup(ctx context.Context, number models.NPI) (*models.Provider, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("version", apiVersion)
	q.Set("number", number.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, NewRegistryError(ErrorFailure, "build registry request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRegistryError(ErrorTimeout, "registry call exceeded budget", err)
		}
		return nil, NewRegistryError(ErrorFailure, "registry unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewRegistryError(ErrorFailure, fmt.Sprintf("registry returned status %d", resp.StatusCode), nil)
	}

	var body nppesResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return nil, NewRegistryError(ErrorMalformed, "decode registry response", err)
	}

	if len(body.Errors) > 0 {
		return nil, NewRegistryError(ErrorMalformed, "registry rejected the query: "+body.Errors[0].Description, nil)
	}
	if len(body.Results) == 0 {
		return nil, ErrNotFound
	}

	return mapResult(body.Results[0]), nil
}

// mapResult copies upstream fields into the normalized schema. Field renames
// only; no transformation logic lives here.
func mapResult(r nppesResult) *models.Provider {
	p := &models.Provider{
		NPI:              models.NPI(r.Number),
		EntityType:       models.EntityType(r.EnumerationType),
		Status:           r.Basic.Status,
		FirstName:        r.Basic.FirstName,
		LastName:         r.Basic.LastName,
		OrganizationName: r.Basic.OrganizationName,
	}
	for _, addr := range r.Addresses {
		if addr.AddressPurpose == "LOCATION" {
			p.Address = &models.Address{
				Line1:      addr.Address1,
				Line2:      addr.Address2,
				City:       addr.City,
				State:      addr.State,
				PostalCode: addr.PostalCode,
				Country:    addr.CountryCode,
			}
			break
		}
	}
	return p
}
