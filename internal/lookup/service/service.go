// Package service orchestrates NPI validation: local identifier checks,
// the single registry call, and outcome mapping.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"npi-gateway/internal/lookup/metrics"
	"npi-gateway/internal/lookup/models"
	"npi-gateway/internal/lookup/upstream"
	dErrors "npi-gateway/pkg/domain-errors"
	"npi-gateway/pkg/requestcontext"
)

type Service struct {
	registry upstream.Client
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(registry upstream.Client, opts ...Option) (*Service, error) {
	if registry == nil {
		return nil, errors.New("registry client is required")
	}
	svc := &Service{registry: registry}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Lookup validates the identifier and resolves it against the registry.
//
// Malformed identifiers fail before any network call. A matching active
// record yields OutcomeFound with normalized attributes; a matching inactive
// record yields OutcomeInactive; no record yields OutcomeNotFound. Registry
// failures surface as coded errors (upstream_timeout / upstream_error) for
// the transport layer to map. The service performs no retries and keeps no
// state across calls.
func (s *Service) Lookup(ctx context.Context, req models.LookupRequest) (*models.LookupResult, error) {
	npi, err := models.ParseNPI(req.Identifier)
	if err != nil {
		s.observe("invalid_input")
		return nil, err
	}

	start := time.Now()
	record, err := s.registry.Lookup(ctx, npi)
	upstreamLatency := time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveUpstreamLatency(upstreamLatency)
	}

	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			s.logLookup(ctx, npi, req, string(models.OutcomeNotFound), upstreamLatency)
			s.observe(string(models.OutcomeNotFound))
			return &models.LookupResult{Outcome: models.OutcomeNotFound}, nil
		}

		category := upstream.CategoryOf(err)
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "registry lookup failed",
				"request_id", requestcontext.RequestID(ctx),
				"npi", npi.Truncated(),
				"category", string(category),
				"duration_ms", upstreamLatency.Milliseconds(),
				"error", err,
			)
		}
		s.observe(string(category))

		if category == upstream.ErrorTimeout {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "registry did not respond in time")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "registry lookup failed")
	}

	outcome := models.OutcomeFound
	result := &models.LookupResult{Outcome: outcome, Provider: record}
	if !record.Active() {
		// Inactive registrations are reported without attributes; callers
		// only need to know the number is not usable.
		outcome = models.OutcomeInactive
		result = &models.LookupResult{Outcome: outcome}
	}

	s.logLookup(ctx, npi, req, string(outcome), upstreamLatency)
	s.observe(string(outcome))
	return result, nil
}

// logLookup writes the per-request operational log line. The identifier is
// truncated and metadata is reduced to its key set so contact details never
// land in logs.
func (s *Service) logLookup(ctx context.Context, npi models.NPI, req models.LookupRequest, outcome string, latency time.Duration) {
	if s.logger == nil {
		return
	}
	keys := make([]string, 0, len(req.Metadata))
	for k := range req.Metadata {
		keys = append(keys, k)
	}
	s.logger.InfoContext(ctx, "npi lookup",
		"request_id", requestcontext.RequestID(ctx),
		"npi", npi.Truncated(),
		"outcome", outcome,
		"upstream_ms", latency.Milliseconds(),
		"metadata_keys", keys,
	)
}

func (s *Service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveLookup(outcome)
	}
}
