package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/marketbrief/marketbrief/internal/fault"
)

type Config struct {
	ProjectDir string `json:"project_dir"`
	ResultsDir string `json:"results_dir"`
	LogsDir    string `json:"logs_dir"`

	// LLM configuration. Groq exposes an OpenAI-compatible API, so the
	// default provider runs through the openai model component.
	LLMProvider      string `json:"llm_provider"`
	BackendURL       string `json:"backend_url"`
	GroqAPIKey       string `json:"groq_api_key"`
	DeepSeekAPIKey   string `json:"deepseek_api_key"`
	AnalysisModel    string `json:"analysis_model"`
	TranslationModel string `json:"translation_model"`

	// Search provider keys
	TavilyAPIKey string `json:"tavily_api_key"`
	SerperAPIKey string `json:"serper_api_key"`

	// Distribution
	TelegramBotToken string `json:"telegram_bot_token"`
	TelegramChatID   string `json:"telegram_chat_id"`

	RequestTimeout time.Duration `json:"request_timeout"`
	MaxAttempts    int           `json:"max_attempts"`
	Debug          bool          `json:"debug"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		ProjectDir: currentDir,
		ResultsDir: filepath.Join(currentDir, "results"),
		LogsDir:    filepath.Join(currentDir, "logs"),

		LLMProvider:      "groq",
		BackendURL:       "https://api.groq.com/openai/v1",
		AnalysisModel:    "llama-3.3-70b-versatile",
		TranslationModel: "llama-3.1-8b-instant",

		RequestTimeout: 60 * time.Second,
		MaxAttempts:    3,
		Debug:          false,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}
	if val := os.Getenv("LOGS_DIR"); val != "" {
		c.LogsDir = val
	}
	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = val
	}
	if val := os.Getenv("LLM_BACKEND_URL"); val != "" {
		c.BackendURL = val
	}
	if val := os.Getenv("GROQ_API_KEY"); val != "" {
		c.GroqAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	if val := os.Getenv("ANALYSIS_MODEL"); val != "" {
		c.AnalysisModel = val
	}
	if val := os.Getenv("TRANSLATION_MODEL"); val != "" {
		c.TranslationModel = val
	}
	if val := os.Getenv("TAVILY_API_KEY"); val != "" {
		c.TavilyAPIKey = val
	}
	if val := os.Getenv("SERPER_API_KEY"); val != "" {
		c.SerperAPIKey = val
	}
	if val := os.Getenv("TELEGRAM_BOT_TOKEN"); val != "" {
		c.TelegramBotToken = val
	}
	if val := os.Getenv("TELEGRAM_CHAT_ID"); val != "" {
		c.TelegramChatID = val
	}
	if val := os.Getenv("REQUEST_TIMEOUT_SECONDS"); val != "" {
		if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
			c.RequestTimeout = time.Duration(secs) * time.Second
		}
	}
	if val := os.Getenv("MAX_ATTEMPTS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			c.MaxAttempts = n
		}
	}
	if val := os.Getenv("DEBUG"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Debug = b
		}
	}
}

// Validate checks that every required secret is present. It reports all
// missing keys at once so a broken .env can be fixed in one pass.
func (c *Config) Validate() error {
	required := []struct {
		key string
		val string
	}{
		{"TAVILY_API_KEY", c.TavilyAPIKey},
		{"SERPER_API_KEY", c.SerperAPIKey},
		{"TELEGRAM_BOT_TOKEN", c.TelegramBotToken},
		{"TELEGRAM_CHAT_ID", c.TelegramChatID},
	}

	var missing []string
	for _, r := range required {
		if r.val == "" {
			missing = append(missing, r.key)
		}
	}

	switch c.LLMProvider {
	case "deepseek":
		if c.DeepSeekAPIKey == "" {
			missing = append(missing, "DEEPSEEK_API_KEY")
		}
	default:
		if c.GroqAPIKey == "" {
			missing = append(missing, "GROQ_API_KEY")
		}
	}

	if len(missing) > 0 {
		return &fault.ConfigError{Missing: missing}
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ResultsDir, c.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
