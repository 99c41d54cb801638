package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        App        `mapstructure:"app"`
	AI         AI         `mapstructure:"ai"`
	Search     Search     `mapstructure:"search"`
	Resolver   Resolver   `mapstructure:"resolver"`
	Separation Separation `mapstructure:"separation"`
	Server     Server     `mapstructure:"server"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	RefineModel string  `mapstructure:"refine_model"`
	Temperature float32 `mapstructure:"temperature"`
	TopP        float32 `mapstructure:"top_p"`
}

// Search holds search backend configuration
type Search struct {
	Backend    string          `mapstructure:"backend"` // builtin, google, tavily, none
	MaxResults int             `mapstructure:"max_results"`
	Timeout    time.Duration   `mapstructure:"timeout"`
	Providers  SearchProviders `mapstructure:"providers"`
}

// SearchProviders holds configuration for all search providers
type SearchProviders struct {
	Google GoogleSearchConfig `mapstructure:"google"`
	Tavily TavilyConfig       `mapstructure:"tavily"`
}

// GoogleSearchConfig holds Google Custom Search configuration
type GoogleSearchConfig struct {
	APIKey   string `mapstructure:"api_key"`
	SearchID string `mapstructure:"search_id"`
}

// TavilyConfig holds Tavily AI-search configuration
type TavilyConfig struct {
	APIKey      string `mapstructure:"api_key"`
	SearchDepth string `mapstructure:"search_depth"`
}

// Resolver holds media metadata resolver configuration
type Resolver struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	SunoEndpoint string        `mapstructure:"suno_endpoint"` // Optional local analysis service
}

// Separation holds audio-separation backend configuration
type Separation struct {
	BaseURL      string        `mapstructure:"base_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".songsmith")
		viper.SetConfigType("yaml")
	}

	// Set defaults
	setDefaults()

	// Bind environment variables
	bindEnvironmentVariables()

	// Enable automatic environment variable reading
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into struct
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")

	// AI defaults
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.refine_model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.temperature", 0.3)
	viper.SetDefault("ai.gemini.top_p", 0.9)

	// Search defaults
	viper.SetDefault("search.backend", "none")
	viper.SetDefault("search.max_results", 5)
	viper.SetDefault("search.timeout", "30s")
	viper.SetDefault("search.providers.tavily.search_depth", "basic")

	// Resolver defaults
	viper.SetDefault("resolver.timeout", "15s")

	// Separation defaults
	viper.SetDefault("separation.base_url", "http://localhost:8000")
	viper.SetDefault("separation.poll_interval", "2s")
	viper.SetDefault("separation.timeout", "10m")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "120s")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	// Gemini API key - support multiple formats
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	// Google Custom Search - support multiple formats
	bindEnvKeys("search.providers.google.api_key", []string{
		"GOOGLE_CUSTOM_SEARCH_API_KEY",
		"GOOGLE_CSE_API_KEY",
		"GOOGLE_SEARCH_API_KEY",
	})

	bindEnvKeys("search.providers.google.search_id", []string{
		"GOOGLE_CUSTOM_SEARCH_ID",
		"GOOGLE_CSE_ID",
		"GOOGLE_SEARCH_ENGINE_ID",
	})

	// Tavily
	bindEnvKeys("search.providers.tavily.api_key", []string{
		"TAVILY_API_KEY",
		"TAVILY_KEY",
	})

	// Separation backend
	bindEnvKeys("separation.base_url", []string{
		"SEPARATION_BASE_URL",
		"ANALYSIS_BACKEND_URL",
	})

	// General settings
	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"SONGSMITH_DEBUG",
	})

	bindEnvKeys("search.backend", []string{
		"SEARCH_BACKEND",
		"SEARCH_PROVIDER",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// validateConfig performs basic sanity checks on configuration values
func validateConfig(config *Config) error {
	switch config.Search.Backend {
	case "builtin", "google", "tavily", "none", "mock", "":
	default:
		return fmt.Errorf("invalid search backend %q (expected builtin, google, tavily or none)", config.Search.Backend)
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", config.Server.Port)
	}

	return nil
}

// Convenience getter functions for commonly used configuration

func GetApp() App               { return Get().App }
func GetGemini() GeminiConfig   { return Get().AI.Gemini }
func GetSearch() Search         { return Get().Search }
func GetResolver() Resolver     { return Get().Resolver }
func GetSeparation() Separation { return Get().Separation }
func GetServer() Server         { return Get().Server }

func GetGeminiAPIKey() string { return Get().AI.Gemini.APIKey }
func GetGeminiModel() string  { return Get().AI.Gemini.Model }
func GetSearchBackend() string { return Get().Search.Backend }

// HasValidGoogleSearch returns true if Google Custom Search is properly configured
func HasValidGoogleSearch() bool {
	g := Get().Search.Providers.Google
	return g.APIKey != "" && g.SearchID != ""
}

// HasValidTavily returns true if the Tavily API key is configured
func HasValidTavily() bool {
	return Get().Search.Providers.Tavily.APIKey != ""
}

// GetSearchProviderConfig returns provider-specific configuration as a map
// for the search provider factory.
func GetSearchProviderConfig(backend string) map[string]string {
	switch backend {
	case "google":
		g := Get().Search.Providers.Google
		return map[string]string{
			"api_key":   g.APIKey,
			"search_id": g.SearchID,
		}
	case "tavily":
		t := Get().Search.Providers.Tavily
		return map[string]string{
			"api_key":      t.APIKey,
			"search_depth": t.SearchDepth,
		}
	default:
		return map[string]string{}
	}
}

// Reset clears the global configuration (for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
