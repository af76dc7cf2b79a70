package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		EnvOpenAIAPIKey, EnvOpenAIBaseURL, EnvGeminiAPIKey,
		EnvBraveAPIKeys, EnvProvider, EnvModel, EnvConfigPath,
	} {
		t.Setenv(v, "")
	}
}

func TestValidate_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvOpenAIAPIKey, "sk-test")

	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "openai")
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want %q", cfg.Model, "gpt-4o-mini")
	}
	if cfg.Temperature != 0.7 || cfg.TopP != 0.95 || cfg.TopK != 40 || cfg.MaxTokens != 2048 {
		t.Errorf("generation defaults wrong: %+v", cfg)
	}
	if cfg.SearchResults != 5 {
		t.Errorf("SearchResults = %d, want 5", cfg.SearchResults)
	}
	if got := cfg.GetChatCompletionsURL(); got != "https://api.openai.com/v1/chat/completions" {
		t.Errorf("GetChatCompletionsURL() = %q", got)
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	clearEnv(t)

	cfg := NewConfig()
	if err := cfg.Validate(); err != ErrAPIKeyNotFound {
		t.Errorf("Validate() error = %v, want ErrAPIKeyNotFound", err)
	}
}

func TestValidate_GeminiProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvGeminiAPIKey, "gm-test")
	t.Setenv(EnvProvider, "gemini")

	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	if cfg.Model != "gemini-1.5-flash-8b" {
		t.Errorf("Model = %q, want gemini default", cfg.Model)
	}
	want := "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash-8b:generateContent"
	if got := cfg.GetGenerateContentURL(); got != want {
		t.Errorf("GetGenerateContentURL() = %q, want %q", got, want)
	}
}

func TestValidate_InvalidProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvProvider, "anthropic")

	cfg := NewConfig()
	if err := cfg.Validate(); err != ErrInvalidProvider {
		t.Errorf("Validate() error = %v, want ErrInvalidProvider", err)
	}
}

func TestValidate_WebSearchRequiresKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvOpenAIAPIKey, "sk-test")

	cfg := NewConfig()
	cfg.WebSearch = true
	if err := cfg.Validate(); err != ErrSearchKeyNotFound {
		t.Errorf("Validate() error = %v, want ErrSearchKeyNotFound", err)
	}
}

func TestValidate_ConfigFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "searchshell.yaml")
	content := `provider: openai
api:
  key: sk-from-file
  base_url: https://example.com/v1/
model: gpt-4o
generation:
  temperature: 0.2
  max_tokens: 512
search:
  keys: [brave-a, brave-b]
  results: 3
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, path)

	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	if cfg.APIKey != "sk-from-file" {
		t.Errorf("APIKey = %q, want value from file", cfg.APIKey)
	}
	if cfg.BaseURL != "https://example.com/v1" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cfg.BaseURL)
	}
	if cfg.Temperature != 0.2 || cfg.MaxTokens != 512 {
		t.Errorf("generation params not applied: %+v", cfg)
	}
	if cfg.SearchResults != 3 {
		t.Errorf("SearchResults = %d, want 3", cfg.SearchResults)
	}
	if cfg.BraveKeys.GetKeyCount() != 2 {
		t.Errorf("BraveKeys count = %d, want 2", cfg.BraveKeys.GetKeyCount())
	}
}

func TestValidate_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "searchshell.yaml")
	if err := os.WriteFile(path, []byte("api:\n  key: sk-from-file\nmodel: gpt-4o\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvModel, "gpt-4.1")

	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	if cfg.APIKey != "sk-from-file" {
		t.Errorf("APIKey = %q, want value from file", cfg.APIKey)
	}
	if cfg.Model != "gpt-4.1" {
		t.Errorf("Model = %q, want env value gpt-4.1", cfg.Model)
	}
}

func TestValidate_FileProviderSelectsEnvKey(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "searchshell.yaml")
	if err := os.WriteFile(path, []byte("provider: gemini\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvGeminiAPIKey, "gm-key")

	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	if cfg.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini from file", cfg.Provider)
	}
	if cfg.APIKey != "gm-key" {
		t.Errorf("APIKey = %q, want GEMINI_API_KEY picked for the file's provider", cfg.APIKey)
	}
}

func TestValidate_EnvKeyOverridesFileKey(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "searchshell.yaml")
	if err := os.WriteFile(path, []byte("api:\n  key: sk-from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvOpenAIAPIKey, "sk-from-env")

	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if cfg.APIKey != "sk-from-env" {
		t.Errorf("APIKey = %q, want env value to win over the file", cfg.APIKey)
	}
}

func TestValidate_ExplicitZeroGenerationParams(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvOpenAIAPIKey, "sk-test")

	dir := t.TempDir()
	path := filepath.Join(dir, "searchshell.yaml")
	content := `generation:
  temperature: 0
  top_p: 0
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfigPath, path)

	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	if cfg.Temperature != 0 {
		t.Errorf("Temperature = %v, explicit zero from file was replaced by the default", cfg.Temperature)
	}
	if cfg.TopP != 0 {
		t.Errorf("TopP = %v, explicit zero from file was replaced by the default", cfg.TopP)
	}
	// Parameters the file does not mention still get defaults.
	if cfg.TopK != 40 || cfg.MaxTokens != 2048 {
		t.Errorf("unset params lost their defaults: %+v", cfg)
	}
}

func TestKeyRotator(t *testing.T) {
	kr := NewKeyRotator([]string{" key-a ", "", "key-b"})

	if kr.GetKeyCount() != 2 {
		t.Fatalf("GetKeyCount() = %d, want 2", kr.GetKeyCount())
	}
	if kr.GetCurrentKey() != "key-a" {
		t.Errorf("GetCurrentKey() = %q, want key-a", kr.GetCurrentKey())
	}

	key, err := kr.Rotate()
	if err != nil {
		t.Fatalf("Rotate() unexpected error: %v", err)
	}
	if key != "key-b" {
		t.Errorf("Rotate() = %q, want key-b", key)
	}

	if _, err := kr.Rotate(); err != ErrNoAvailableKeys {
		t.Errorf("Rotate() on exhausted pool = %v, want ErrNoAvailableKeys", err)
	}
}

func TestKeyRotator_Empty(t *testing.T) {
	kr := NewKeyRotator(nil)
	if kr.HasKeys() {
		t.Error("HasKeys() = true for empty rotator")
	}
	if kr.GetCurrentKey() != "" {
		t.Errorf("GetCurrentKey() = %q, want empty", kr.GetCurrentKey())
	}
}
