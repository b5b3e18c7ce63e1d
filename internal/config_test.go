package internal

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("BADGER_FILEPATH", "/tmp/badger")
	t.Setenv("BLUGE_FILEPATH", "/tmp/bluge")
	t.Setenv("JWT_SECRET", "a-secret-of-sufficient-length")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)
	req.NoError(err)
	req.NoError(config.Validate())

	req.Equal(8080, config.Port)
	req.Equal("fail_open", config.GuardrailPolicy)
	req.Equal(0.8, config.CacheMinConfidence)
	req.Equal(0.75, config.CacheMinScore)
	req.Equal(30*time.Minute, config.SessionIdleTimeout)
	req.True(config.EnablePerspectives)
	req.Equal(2000, config.MaxQuestionLength)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{GuardrailPolicy: "require_review", CacheMinConfidence: 0.8, CacheMinScore: 0.75, JWTSecret: "0123456789abcdef", MaxQuestionLength: 10}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "Unknown policy", mutate: func(c *Config) { c.GuardrailPolicy = "ignore" }},
		{name: "Confidence above one", mutate: func(c *Config) { c.CacheMinConfidence = 1.5 }},
		{name: "No cache score", mutate: func(c *Config) { c.CacheMinScore = 0 }},
		{name: "Raw search score", mutate: func(c *Config) { c.CacheMinScore = 6.5 }},
		{name: "Short secret", mutate: func(c *Config) { c.JWTSecret = "short" }},
		{name: "No question length", mutate: func(c *Config) { c.MaxQuestionLength = 0 }},
	}
	require.NoError(t, valid.Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}
