package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Config{}
	cfg.HTTP.Port = 8080
	cfg.Database.Addrs = []string{"localhost:6379"}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, 200, cfg.Corpus.MinTokens)
	assert.Equal(t, 500, cfg.Corpus.MaxTokens)
	assert.Equal(t, 100, cfg.Corpus.OverlapTokens)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.1, cfg.Retrieval.MinScore, 1e-9)
	assert.Equal(t, 4000, cfg.Retrieval.MaxContextChars)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
	assert.Equal(t, 2, cfg.LLM.MaxRetries)
	assert.Equal(t, "medrag:", cfg.Storage.KeyPrefix)
	assert.NotEmpty(t, cfg.Scope.Keywords)
	assert.Contains(t, cfg.Scope.Keywords, "fever")
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.HTTP.Port = 0 },
			wantSub: "http.port",
		},
		{
			name:    "missing addrs",
			mutate:  func(c *Config) { c.Database.Addrs = nil },
			wantSub: "database.addrs",
		},
		{
			name:    "overlap not below min",
			mutate:  func(c *Config) { c.Corpus.OverlapTokens = 200 },
			wantSub: "overlap_tokens",
		},
		{
			name:    "min not below max",
			mutate:  func(c *Config) { c.Corpus.MinTokens = 500 },
			wantSub: "min_tokens",
		},
		{
			name:    "min_score out of range",
			mutate:  func(c *Config) { c.Retrieval.MinScore = 1.5 },
			wantSub: "min_score",
		},
		{
			name:    "threshold out of range",
			mutate:  func(c *Config) { c.Scope.ScoreThreshold = -2 },
			wantSub: "score_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantSub)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("MEDRAG_TEST_KEY", "secret")

	out := expandEnvVars([]byte("api_key: ${MEDRAG_TEST_KEY}\nmodel: ${MEDRAG_TEST_MISSING:-gpt-3.5-turbo}"))
	assert.Equal(t, "api_key: secret\nmodel: gpt-3.5-turbo", string(out))
}
