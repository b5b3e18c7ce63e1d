package auth

import (
	"fmt"
	"time"

	"help-desk/domain"
	"help-desk/errors"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "help-desk"

// Claims carry who is asking and the subscription read when the token was issued.
// The token id doubles as the session id.
type Claims struct {
	UserID         string      `json:"user_id" validate:"required,max=128"`
	OrganizationID string      `json:"org_id" validate:"required,max=128"`
	Role           domain.Role `json:"role" validate:"required,oneof=viewer staff senco dsl business_manager site_manager headteacher trust_leader admin"`
	Plan           domain.Plan `json:"plan" validate:"required,oneof=free schools trusts"`
	Credits        float64     `json:"credits" validate:"gte=0"`
	CreditsUsed    float64     `json:"credits_used" validate:"gte=0"`
	Perspectives   bool        `json:"perspectives"`
	jwt.RegisteredClaims
}

// Session maps the claims onto a help-desk session. School facts are resolved elsewhere.
func (c *Claims) Session() domain.Session {
	id := c.ID
	if id == "" {
		id = c.UserID
	}
	return domain.Session{
		ID:             id,
		CallerID:       c.UserID,
		OrganizationID: c.OrganizationID,
		Role:           c.Role,
		Subscription: domain.SubscriptionState{
			Plan:             c.Plan,
			CreditsRemaining: c.Credits,
			CreditsUsed:      c.CreditsUsed,
		},
		PerspectivesEnabled: c.Perspectives,
	}
}

// Tokens signs and verifies HS256 tokens with one secret.
type Tokens struct {
	secret   []byte
	duration time.Duration
}

func NewTokens(secret string, duration time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), duration: duration}
}

// Generate signs claims after validating them. Expiry, issue time and issuer are set here.
func (t *Tokens) Generate(claims Claims) (string, error) {
	if err := ValidateClaims(claims); err != nil {
		return "", err
	}
	now := time.Now()
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.duration))
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.Issuer = issuer

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(t.secret)
}

// Validate parses the token, checks signature, expiry and issuer, then the claims themselves.
func (t *Tokens) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.ErrInvalidToken
	}
	if err = ValidateClaims(*claims); err != nil {
		return nil, err
	}
	return claims, nil
}
