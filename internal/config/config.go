// Package config loads runtime configuration from a YAML file,
// environment variables, and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"searchshell/internal/constants"
)

// Environment variable names
const (
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	EnvGeminiAPIKey  = "GEMINI_API_KEY"
	EnvBraveAPIKeys  = "BRAVE_API_KEYS"
	EnvProvider      = "SEARCHSHELL_PROVIDER"
	EnvModel         = "SEARCHSHELL_MODEL"
	EnvConfigPath    = "SEARCHSHELL_CONFIG"
)

// DefaultFileName is the config file looked up in the working directory
// and under the user config dir.
const DefaultFileName = "searchshell.yaml"

// Errors
var (
	ErrAPIKeyNotFound     = errors.New("model API key not found. Set OPENAI_API_KEY (or GEMINI_API_KEY) or the api.key config entry")
	ErrInvalidProvider    = errors.New("invalid provider. Use 'openai' or 'gemini'")
	ErrSearchKeyNotFound  = errors.New("web search API key not found. Set BRAVE_API_KEYS to use web search")
	ErrInvalidResultCount = errors.New("search result count must be between 1 and 20")
	ErrNoAvailableKeys    = errors.New("all API keys exhausted")
)

// FileConfig mirrors the YAML layout of the config file.
type FileConfig struct {
	Provider string `yaml:"provider"`
	API      struct {
		Key     string `yaml:"key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"api"`
	Model      string `yaml:"model"`
	Generation struct {
		Temperature *float64 `yaml:"temperature"`
		TopP        *float64 `yaml:"top_p"`
		TopK        *int     `yaml:"top_k"`
		MaxTokens   *int     `yaml:"max_tokens"`
	} `yaml:"generation"`
	Search struct {
		Keys    []string `yaml:"keys"`
		Results int      `yaml:"results"`
	} `yaml:"search"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	History struct {
		Path string `yaml:"path"`
	} `yaml:"history"`
}

// Config holds the resolved application configuration.
type Config struct {
	// Provider selection: "openai" or "gemini"
	Provider string

	// Model endpoint settings
	APIKey  string
	BaseURL string
	Model   string

	// Generation parameters
	Temperature float64
	TopP        float64
	TopK        int
	MaxTokens   int

	// Web search
	BraveKeys     *KeyRotator
	SearchResults int

	// Persistence
	HistoryPath string

	// Logging
	LogLevel string

	// Flags
	Stream      bool
	Render      bool
	WebSearch   bool
	Interactive bool
	Verbose     bool

	// genSet records generation parameters the config file set
	// explicitly, so an explicit zero survives default filling.
	genSet struct {
		temperature bool
		topP        bool
		topK        bool
		maxTokens   bool
	}
}

// NewConfig creates a new Config with zero values; Validate fills defaults.
func NewConfig() *Config {
	return &Config{}
}

// Validate resolves the configuration and checks it for consistency.
// Precedence: flag values already set, then environment variables,
// then the config file, then built-in defaults.
func (c *Config) Validate() error {
	if c.Provider == "" {
		c.Provider = os.Getenv(EnvProvider)
	}
	if c.Model == "" {
		c.Model = os.Getenv(EnvModel)
	}
	if c.BaseURL == "" {
		c.BaseURL = os.Getenv(EnvOpenAIBaseURL)
	}

	// The provider-specific key env var can only be chosen once the
	// provider itself is resolved, and the provider may come from the
	// config file. Remember whether the caller supplied a key so the
	// env lookup below cannot clobber it.
	callerKey := c.APIKey

	if fileCfg, err := loadFile(); err == nil && fileCfg != nil {
		c.applyFile(fileCfg)
	}
	// A missing or unreadable config file is not an error; env vars
	// and flags are enough to run.

	if c.Provider == "" {
		c.Provider = constants.DefaultProvider
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider != "openai" && c.Provider != "gemini" {
		return ErrInvalidProvider
	}

	if callerKey == "" {
		var envKey string
		if c.Provider == "gemini" {
			envKey = strings.TrimSpace(os.Getenv(EnvGeminiAPIKey))
		} else {
			envKey = strings.TrimSpace(os.Getenv(EnvOpenAIAPIKey))
		}
		if envKey != "" {
			c.APIKey = envKey
		}
	}

	if c.Model == "" {
		if c.Provider == "gemini" {
			c.Model = constants.DefaultGeminiModel
		} else {
			c.Model = constants.DefaultOpenAIModel
		}
	}

	if c.APIKey == "" {
		return ErrAPIKeyNotFound
	}

	if c.BaseURL == "" {
		if c.Provider == "gemini" {
			c.BaseURL = constants.DefaultGeminiBaseURL
		} else {
			c.BaseURL = constants.DefaultOpenAIBaseURL
		}
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")

	if c.Temperature == 0 && !c.genSet.temperature {
		c.Temperature = constants.DefaultTemperature
	}
	if c.TopP == 0 && !c.genSet.topP {
		c.TopP = constants.DefaultTopP
	}
	if c.TopK == 0 && !c.genSet.topK {
		c.TopK = constants.DefaultTopK
	}
	if c.MaxTokens == 0 && !c.genSet.maxTokens {
		c.MaxTokens = constants.DefaultMaxTokens
	}

	if c.BraveKeys == nil {
		c.BraveKeys = NewKeyRotatorFromEnv(EnvBraveAPIKeys)
	}

	if c.SearchResults == 0 {
		c.SearchResults = constants.DefaultSearchResults
	}
	if c.SearchResults < 1 || c.SearchResults > constants.MaxSearchResults {
		return ErrInvalidResultCount
	}

	if c.WebSearch && !c.BraveKeys.HasKeys() {
		return ErrSearchKeyNotFound
	}

	if c.HistoryPath == "" {
		c.HistoryPath = defaultHistoryPath()
	}

	return nil
}

// GetChatCompletionsURL builds the OpenAI-compatible chat completions URL.
func (c *Config) GetChatCompletionsURL() string {
	return c.BaseURL + "/chat/completions"
}

// GetGenerateContentURL builds the Gemini generateContent URL for a model.
func (c *Config) GetGenerateContentURL() string {
	return fmt.Sprintf("%s/models/%s:generateContent", c.BaseURL, c.Model)
}

func (c *Config) applyFile(f *FileConfig) {
	if c.Provider == "" {
		c.Provider = f.Provider
	}
	if c.APIKey == "" {
		c.APIKey = f.API.Key
	}
	if c.BaseURL == "" {
		c.BaseURL = f.API.BaseURL
	}
	if c.Model == "" {
		c.Model = f.Model
	}
	if f.Generation.Temperature != nil && c.Temperature == 0 {
		c.Temperature = *f.Generation.Temperature
		c.genSet.temperature = true
	}
	if f.Generation.TopP != nil && c.TopP == 0 {
		c.TopP = *f.Generation.TopP
		c.genSet.topP = true
	}
	if f.Generation.TopK != nil && c.TopK == 0 {
		c.TopK = *f.Generation.TopK
		c.genSet.topK = true
	}
	if f.Generation.MaxTokens != nil && c.MaxTokens == 0 {
		c.MaxTokens = *f.Generation.MaxTokens
		c.genSet.maxTokens = true
	}
	if len(f.Search.Keys) > 0 && c.BraveKeys == nil {
		c.BraveKeys = NewKeyRotator(f.Search.Keys)
	}
	if f.Search.Results > 0 && c.SearchResults == 0 {
		c.SearchResults = f.Search.Results
	}
	if c.LogLevel == "" {
		c.LogLevel = f.Logging.Level
	}
	if c.HistoryPath == "" {
		c.HistoryPath = f.History.Path
	}
}

// loadFile reads the config file from SEARCHSHELL_CONFIG, the working
// directory, or the user config dir, in that order.
func loadFile() (*FileConfig, error) {
	paths := []string{os.Getenv(EnvConfigPath), DefaultFileName}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "searchshell", "config.yaml"))
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var f FileConfig
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		return &f, nil
	}

	return nil, os.ErrNotExist
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "searchshell.db"
	}
	return filepath.Join(home, ".local", "share", "searchshell", "history.db")
}
