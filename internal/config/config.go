package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the medrag service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Scope     ScopeConfig     `yaml:"scope"`
	LLM       LLMConfig       `yaml:"llm"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds artifact store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds artifact key settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// CorpusConfig holds document ingestion and chunking settings.
// Consumed by the offline build binary only.
type CorpusConfig struct {
	DocsDir       string `yaml:"docs_dir"`
	MinTokens     int    `yaml:"min_tokens"`
	MaxTokens     int    `yaml:"max_tokens"`
	OverlapTokens int    `yaml:"overlap_tokens"`
}

// RetrievalConfig holds query-time retrieval settings.
type RetrievalConfig struct {
	TopK            int     `yaml:"top_k"`
	MinScore        float64 `yaml:"min_score"`
	MaxContextChars int     `yaml:"max_context_chars"`
}

// ScopeConfig holds scope-gate settings. Keywords and the score threshold are
// product tuning, not algorithm; both signals can be disabled independently.
type ScopeConfig struct {
	Keywords       []string `yaml:"keywords"`
	ScoreThreshold float64  `yaml:"score_threshold"`
}

// LLMConfig holds settings for the hosted generation model.
type LLMConfig struct {
	APIKey           string  `yaml:"api_key"`
	BaseURL          string  `yaml:"base_url"`
	Model            string  `yaml:"model"`
	Temperature      float32 `yaml:"temperature"`
	MaxOutputTokens  int     `yaml:"max_output_tokens"`
	TimeoutSec       int     `yaml:"timeout_sec"`
	MaxRetries       int     `yaml:"max_retries"`
	RequestsPerMin   int     `yaml:"requests_per_min"`
	BreakerThreshold float64 `yaml:"breaker_failure_ratio"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// defaultScopeKeywords is an illustrative starting set of in-domain signals,
// overridable per deployment.
var defaultScopeKeywords = []string{
	"health", "medical", "disease", "symptom", "treatment", "medicine",
	"vitamin", "nutrition", "exercise", "prevention", "first aid",
	"fever", "pain", "injury", "burn", "dehydration", "stress",
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "medrag:"
	}
	if c.Corpus.MinTokens <= 0 {
		c.Corpus.MinTokens = 200
	}
	if c.Corpus.MaxTokens <= 0 {
		c.Corpus.MaxTokens = 500
	}
	if c.Corpus.OverlapTokens <= 0 {
		c.Corpus.OverlapTokens = 100
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 5
	}
	if c.Retrieval.MinScore == 0 {
		c.Retrieval.MinScore = 0.1
	}
	if c.Retrieval.MaxContextChars <= 0 {
		c.Retrieval.MaxContextChars = 4000
	}
	if c.Scope.Keywords == nil {
		c.Scope.Keywords = defaultScopeKeywords
	}
	if c.Scope.ScoreThreshold == 0 {
		c.Scope.ScoreThreshold = 0.25
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-3.5-turbo"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.3
	}
	if c.LLM.MaxOutputTokens <= 0 {
		c.LLM.MaxOutputTokens = 500
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 30
	}
	if c.LLM.MaxRetries < 0 {
		c.LLM.MaxRetries = 0
	} else if c.LLM.MaxRetries == 0 {
		c.LLM.MaxRetries = 2
	}
	if c.LLM.RequestsPerMin <= 0 {
		c.LLM.RequestsPerMin = 60
	}
	if c.LLM.BreakerThreshold <= 0 || c.LLM.BreakerThreshold > 1 {
		c.LLM.BreakerThreshold = 0.6
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Corpus.OverlapTokens >= c.Corpus.MinTokens {
		return fmt.Errorf("corpus.overlap_tokens (%d) must be less than corpus.min_tokens (%d)",
			c.Corpus.OverlapTokens, c.Corpus.MinTokens)
	}
	if c.Corpus.MinTokens >= c.Corpus.MaxTokens {
		return fmt.Errorf("corpus.min_tokens (%d) must be less than corpus.max_tokens (%d)",
			c.Corpus.MinTokens, c.Corpus.MaxTokens)
	}
	if c.Retrieval.MinScore < -1 || c.Retrieval.MinScore > 1 {
		return fmt.Errorf("retrieval.min_score must be in [-1, 1], got %g", c.Retrieval.MinScore)
	}
	if c.Scope.ScoreThreshold < -1 || c.Scope.ScoreThreshold > 1 {
		return fmt.Errorf("scope.score_threshold must be in [-1, 1], got %g", c.Scope.ScoreThreshold)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
