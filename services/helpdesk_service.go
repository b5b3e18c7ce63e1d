package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"help-desk/domain"
	"help-desk/errors"
	"help-desk/observability"
	"help-desk/repositories"
	"help-desk/runtime"

	"github.com/go-playground/validator/v10"
)

const DefaultMaxQuestionLength = 2000

type IHelpDeskService interface {
	Ask(ctx context.Context, session domain.Session, req AskRequest) (domain.EdResponse, error)
}

// AskRequest is what the UI sends: the question and where it was asked from.
type AskRequest struct {
	Question string `json:"question" validate:"required"`
	App      string `json:"app,omitempty" validate:"max=64"`
	Page     string `json:"page,omitempty" validate:"max=256"`
}

type HelpDeskService struct {
	log               *slog.Logger
	sessions          *runtime.Registry
	organizations     repositories.OrganizationRepository
	monitoring        *observability.MonitoringManager
	validate          *validator.Validate
	maxQuestionLength int
}

func NewHelpDeskService(log *slog.Logger, sessions *runtime.Registry, organizations repositories.OrganizationRepository,
	monitoring *observability.MonitoringManager, maxQuestionLength int) *HelpDeskService {
	if maxQuestionLength <= 0 {
		maxQuestionLength = DefaultMaxQuestionLength
	}
	return &HelpDeskService{
		log:               log,
		sessions:          sessions,
		organizations:     organizations,
		monitoring:        monitoring,
		validate:          validator.New(),
		maxQuestionLength: maxQuestionLength,
	}
}

// Ask validates the request, resolves the session's orchestrator and answers.
// Only invalid requests return an error; every accepted question gets a response.
func (s *HelpDeskService) Ask(ctx context.Context, session domain.Session, req AskRequest) (domain.EdResponse, error) {
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return domain.EdResponse{}, errors.ErrEmptyQuestion
	}
	if n := utf8.RuneCountInString(req.Question); n > s.maxQuestionLength {
		return domain.EdResponse{}, fmt.Errorf("%w: %d characters, at most %d", errors.ErrQuestionTooLong, n, s.maxQuestionLength)
	}
	if err := s.validate.Struct(req); err != nil {
		return domain.EdResponse{}, fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	if !session.Subscription.Plan.Valid() {
		return domain.EdResponse{}, fmt.Errorf("%w: %q", errors.ErrInvalidPlan, session.Subscription.Plan)
	}

	if session.School.IsEmpty() {
		session.School = s.school(session.OrganizationID)
	}

	o := s.sessions.Acquire(session)
	resp := o.ProcessQuestion(ctx, domain.Question{
		Text:       req.Question,
		Context:    domain.QueryContext{App: req.App, Page: req.Page},
		ReceivedAt: time.Now().UTC(),
	})

	s.monitoring.IncrRequests()
	if resp.Outcome == domain.OutcomeError || resp.RequiresHuman {
		s.monitoring.IncrDegraded()
	}
	s.monitoring.SetActiveSessions(s.sessions.Len())
	return resp, nil
}

// school returns the known facts of the organization, or nothing.
func (s *HelpDeskService) school(organizationID string) domain.SchoolContext {
	if s.organizations == nil || organizationID == "" {
		return domain.SchoolContext{}
	}
	school, err := s.organizations.Get(organizationID)
	switch {
	case err == nil:
		return school
	case stderrors.Is(err, errors.ErrOrganizationNotFound):
		s.log.Debug("No facts known for organization", "organization", organizationID)
	default:
		s.log.Warn("Organization facts unavailable", "organization", organizationID, "error", err)
	}
	return domain.SchoolContext{}
}
