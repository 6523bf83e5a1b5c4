package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Google   GoogleConfig
	OAuth    OAuthConfig
	Fetch    FetchConfig
	Report   ReportConfig
	Analysis AnalysisConfig
	Log      LogConfig
}

type GoogleConfig struct {
	CredentialsFile string
	TokenFile       string
}

type OAuthConfig struct {
	CallbackAddr   string
	TimeoutSeconds int
}

type FetchConfig struct {
	ExportRatePerSecond  float64
	ActivityLookbackDays int
	SkipContent          bool
}

type ReportConfig struct {
	HTMLFile string
	XLSXFile string
	Format   string
}

type AnalysisConfig struct {
	WordChangeThreshold int
}

type LogConfig struct {
	Level  string
	Format string
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Google: GoogleConfig{
			CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
			TokenFile:       getEnv("GOOGLE_TOKEN_FILE", "token.json"),
		},
		OAuth: OAuthConfig{
			CallbackAddr:   getEnv("OAUTH_CALLBACK_ADDR", "127.0.0.1:0"),
			TimeoutSeconds: getEnvAsInt("OAUTH_TIMEOUT_SECONDS", 300),
		},
		Fetch: FetchConfig{
			ExportRatePerSecond:  getEnvAsFloat("EXPORT_RATE_PER_SECOND", 0.5),
			ActivityLookbackDays: getEnvAsInt("ACTIVITY_LOOKBACK_DAYS", 365),
			SkipContent:          getEnvAsBool("SKIP_CONTENT", false),
		},
		Report: ReportConfig{
			HTMLFile: getEnv("REPORT_FILE", "document_metrics.html"),
			XLSXFile: getEnv("XLSX_FILE", ""),
			Format:   getEnv("REPORT_FORMAT", "text"),
		},
		Analysis: AnalysisConfig{
			WordChangeThreshold: getEnvAsInt("WORD_CHANGE_THRESHOLD", 2),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return nil
}

// Validate checks that the loaded values are usable
func (c *Config) Validate() error {
	if c.Google.CredentialsFile == "" {
		return fmt.Errorf("credentials file path is required")
	}
	if c.Google.TokenFile == "" {
		return fmt.Errorf("token file path is required")
	}
	if c.OAuth.TimeoutSeconds <= 0 {
		return fmt.Errorf("oauth timeout must be positive, got %d", c.OAuth.TimeoutSeconds)
	}
	if c.Fetch.ExportRatePerSecond <= 0 {
		return fmt.Errorf("export rate must be positive, got %v", c.Fetch.ExportRatePerSecond)
	}
	if c.Fetch.ActivityLookbackDays < 0 {
		return fmt.Errorf("activity lookback days cannot be negative")
	}
	if c.Analysis.WordChangeThreshold <= 0 {
		return fmt.Errorf("word change threshold must be positive, got %d", c.Analysis.WordChangeThreshold)
	}
	switch c.Report.Format {
	case "text", "yaml":
	default:
		return fmt.Errorf("unknown report format %q (want text or yaml)", c.Report.Format)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
