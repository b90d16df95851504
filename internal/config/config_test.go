package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/marketbrief/marketbrief/internal/fault"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GROQ_API_KEY", "groq-key")
	t.Setenv("TAVILY_API_KEY", "tavily-key")
	t.Setenv("SERPER_API_KEY", "serper-key")
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	t.Setenv("TELEGRAM_CHAT_ID", "@channel")
}

func TestValidatePasses(t *testing.T) {
	setRequiredEnv(t)

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.LLMProvider != "groq" {
		t.Fatalf("expected groq default provider, got %s", cfg.LLMProvider)
	}
	if cfg.BackendURL != "https://api.groq.com/openai/v1" {
		t.Fatalf("unexpected backend url %s", cfg.BackendURL)
	}
}

func TestValidateListsAllMissingKeys(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("TAVILY_API_KEY", "")
	t.Setenv("SERPER_API_KEY", "serper-key")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "@channel")

	cfg := DefaultConfig()
	err := cfg.Validate()

	var cfgErr *fault.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	for _, key := range []string{"GROQ_API_KEY", "TAVILY_API_KEY", "TELEGRAM_BOT_TOKEN"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in error, got %q", key, err.Error())
		}
	}
	if strings.Contains(err.Error(), "SERPER_API_KEY") {
		t.Fatalf("SERPER_API_KEY is set and must not be reported missing")
	}
}

func TestDeepSeekProviderRequiresItsKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("LLM_PROVIDER", "deepseek")

	cfg := DefaultConfig()
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DEEPSEEK_API_KEY") {
		t.Fatalf("expected DEEPSEEK_API_KEY reported missing, got %v", err)
	}

	t.Setenv("DEEPSEEK_API_KEY", "ds-key")
	cfg = DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate with deepseek key: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "15")
	t.Setenv("MAX_ATTEMPTS", "5")
	t.Setenv("ANALYSIS_MODEL", "custom-model")

	cfg := DefaultConfig()
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.MaxAttempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", cfg.MaxAttempts)
	}
	if cfg.AnalysisModel != "custom-model" {
		t.Fatalf("expected model override, got %s", cfg.AnalysisModel)
	}
}
