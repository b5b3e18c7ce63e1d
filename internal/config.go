package internal

import (
	"fmt"
	"time"

	"help-desk/guardrail"
)

type Config struct {
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`
	Host           string `env:"HOST,default=0.0.0.0"`
	Port           int    `env:"PORT,default=8080"`
	DebugPort      int    `env:"DEBUG_PORT,default=8081"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	AnthropicAPIKey    string        `env:"ANTHROPIC_API_KEY"`
	CompletionTimeout  time.Duration `env:"COMPLETION_TIMEOUT,default=30s"`
	PerspectiveTimeout time.Duration `env:"PERSPECTIVE_TIMEOUT,default=20s"`
	GuardrailTimeout   time.Duration `env:"GUARDRAIL_TIMEOUT,default=5s"`
	GuardrailPolicy    string        `env:"GUARDRAIL_FAILURE_POLICY,default=fail_open"`
	EnablePerspectives bool          `env:"ENABLE_PERSPECTIVES,default=true"`

	CacheMinConfidence float64       `env:"CACHE_MIN_CONFIDENCE,default=0.8"`
	CacheMinScore      float64       `env:"CACHE_MIN_SCORE,default=0.75"`
	CacheTTL           time.Duration `env:"CACHE_TTL,default=720h"`

	JWTSecret          string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration  time.Duration `env:"AUTH_TOKEN_DURATION,default=12h"`
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT,default=30m"`
	EvictionInterval   time.Duration `env:"EVICTION_INTERVAL,default=1m"`
	MetricInterval     time.Duration `env:"METRIC_INTERVAL,default=10s"`
	MaxQuestionLength  int           `env:"MAX_QUESTION_LENGTH,default=2000"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT,default=15s"`
}

// Validate checks the values go-env cannot.
func (c Config) Validate() error {
	if !guardrail.FailurePolicy(c.GuardrailPolicy).Valid() {
		return fmt.Errorf("GUARDRAIL_FAILURE_POLICY must be fail_open or require_review, got %q", c.GuardrailPolicy)
	}
	if c.CacheMinConfidence < 0 || c.CacheMinConfidence > 1 {
		return fmt.Errorf("CACHE_MIN_CONFIDENCE must be within [0, 1], got %v", c.CacheMinConfidence)
	}
	if c.CacheMinScore <= 0 || c.CacheMinScore > 1 {
		return fmt.Errorf("CACHE_MIN_SCORE must be within (0, 1], got %v", c.CacheMinScore)
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.MaxQuestionLength <= 0 {
		return fmt.Errorf("MAX_QUESTION_LENGTH must be positive, got %d", c.MaxQuestionLength)
	}
	return nil
}
