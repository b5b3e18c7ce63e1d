package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"help-desk/domain"
)

var (
	ErrEmptyQuestion        = fmt.Errorf("question is empty")
	ErrUnknownSpecialist    = fmt.Errorf("unknown specialist")
	ErrMissingTemplate      = fmt.Errorf("specialist template is missing")
	ErrDuplicateDomain      = fmt.Errorf("domain mapped to more than one specialist")
	ErrUnmappedDomain       = fmt.Errorf("domain has no specialist")
	ErrCatalogMisconfigured = fmt.Errorf("model catalog is misconfigured")
	ErrInvalidRule          = fmt.Errorf("invalid guardrail rule")
	ErrInvalidPlan          = fmt.Errorf("invalid subscription plan")
	ErrSessionMissing       = fmt.Errorf("session is missing from context")
	ErrOrganizationNotFound = fmt.Errorf("organization not found")
	ErrKnowledgeNotFound    = fmt.Errorf("knowledge entry not found")
	ErrEmptyPhraseSet       = fmt.Errorf("phrase set is empty")
	ErrQuestionTooLong      = fmt.Errorf("question is too long")
	ErrInvalidRequest       = fmt.Errorf("invalid request")
	ErrInvalidToken         = fmt.Errorf("invalid or expired token")
	ErrInvalidClaims        = fmt.Errorf("token claims are invalid")

	ErrProviderAuth        = fmt.Errorf("completion provider rejected credentials")
	ErrProviderRateLimited = fmt.Errorf("completion provider rate limited the request")
	ErrProviderTimeout     = fmt.Errorf("completion provider timed out")
	ErrProviderUnavailable = fmt.Errorf("completion provider unavailable")
	ErrEmptyCompletion     = fmt.Errorf("completion returned no text")
)

// Categorize maps an error to the category the UI uses to render a hint.
func Categorize(err error) domain.ErrorCategory {
	switch {
	case err == nil:
		return domain.ErrorCategoryNone
	case stderrors.Is(err, ErrProviderAuth):
		return domain.ErrorCategoryAuth
	case stderrors.Is(err, ErrProviderRateLimited):
		return domain.ErrorCategoryRateLimit
	case stderrors.Is(err, ErrProviderTimeout), stderrors.Is(err, context.DeadlineExceeded):
		return domain.ErrorCategoryTimeout
	default:
		return domain.ErrorCategoryUnknown
	}
}

// MapToHTTPStatus maps service errors onto HTTP status codes.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrEmptyQuestion), stderrors.Is(err, ErrInvalidRequest), stderrors.Is(err, ErrInvalidPlan):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrQuestionTooLong):
		return http.StatusRequestEntityTooLarge
	case stderrors.Is(err, ErrInvalidToken), stderrors.Is(err, ErrInvalidClaims), stderrors.Is(err, ErrSessionMissing):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
