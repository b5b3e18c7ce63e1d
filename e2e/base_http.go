package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"help-desk/auth"
	"help-desk/client"
	"help-desk/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment and skips when no server is configured.
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.Address == "" || s.Config.JWTSecret == "" {
		s.T().Skip("HELPDESK_ADDR and JWT_SECRET are required for end to end tests")
	}
}

// Token signs a fresh session for the given plan and role.
func (s *BaseHTTPSuite) Token(plan domain.Plan, role domain.Role, credits float64) string {
	token, err := auth.NewTokens(s.Config.JWTSecret, time.Hour).Generate(auth.Claims{
		UserID:           "e2e-" + string(role),
		OrganizationID:   "e2e-school",
		Role:             role,
		Plan:             plan,
		Credits:          credits,
		Perspectives:     true,
		RegisteredClaims: jwt.RegisteredClaims{ID: uuid.NewString()},
	})
	s.Require().NoError(err)
	return token
}

// WithSession runs fn with a client bound to token inside a titled step.
func (s *BaseHTTPSuite) WithSession(name, token string, fn func(ctx context.Context, c *client.Client)) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	fn(ctx, client.New(s.Config.Address, token, 0))
}

// Dump logs v as indented JSON when E2E_DEBUG_JSON is set.
func (s *BaseHTTPSuite) Dump(v any) {
	if !s.Config.DebugJSON {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	s.Require().NoError(err)
	s.T().Log(string(data))
}
