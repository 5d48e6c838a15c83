package service

import (
	"context"

	"ssogate/internal/platform/middleware"
)

// Observability helpers. Metrics are optional; every increment is
// nil-guarded so the service runs unchanged without a registry.

func (s *Service) logEvent(ctx context.Context, event string, attributes ...any) {
	if requestID := middleware.GetRequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	s.logger.InfoContext(ctx, event, attributes...)
}

func (s *Service) authFailure(ctx context.Context, operation, reason string, attributes ...any) {
	if requestID := middleware.GetRequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	attributes = append(attributes, "operation", operation, "reason", reason)
	s.logger.WarnContext(ctx, "authentication failed", attributes...)
	if s.metrics != nil {
		s.metrics.IncrementAuthFailures(operation)
	}
}

func (s *Service) notificationFailure(ctx context.Context, template string, err error) {
	s.logger.ErrorContext(ctx, "login notification failed",
		"template", template, "error", err)
	if s.metrics != nil {
		s.metrics.IncrementNotificationFailures()
	}
}

func (s *Service) incrementLogins(principal string) {
	if s.metrics != nil {
		s.metrics.IncrementLogins(principal)
	}
}

func (s *Service) incrementTokensIssued(principal string) {
	if s.metrics != nil {
		s.metrics.IncrementTokensIssued(principal)
	}
}

func (s *Service) incrementTokenValidations(outcome string) {
	if s.metrics != nil {
		s.metrics.IncrementTokenValidations(outcome)
	}
}

func (s *Service) incrementTwoFactorChallenges() {
	if s.metrics != nil {
		s.metrics.IncrementTwoFactorChallenges()
	}
}

func (s *Service) observeLoginDuration(durationMs float64) {
	if s.metrics != nil {
		s.metrics.ObserveLoginDuration(durationMs)
	}
}
