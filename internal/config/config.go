package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`

	JiraDomain     string        `mapstructure:"JIRA_DOMAIN"`
	JiraEmail      string        `mapstructure:"JIRA_EMAIL"`
	JiraAPIToken   string        `mapstructure:"JIRA_API_TOKEN"`
	JiraProjectKey string        `mapstructure:"JIRA_PROJECT_KEY"`
	JiraJQL        string        `mapstructure:"JIRA_JQL"`
	JiraPageSize   int           `mapstructure:"JIRA_PAGE_SIZE"`
	JiraRateLimit  float64       `mapstructure:"JIRA_RATE_LIMIT"`
	HTTPTimeout    time.Duration `mapstructure:"HTTP_TIMEOUT"`

	OutputDir    string `mapstructure:"OUTPUT_DIR"`
	FetchCron    string `mapstructure:"FETCH_CRON"`
	TZ           string `mapstructure:"APP_TZ"`
	FetchOnStart bool   `mapstructure:"FETCH_ON_START"`

	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3Prefix    string `mapstructure:"S3_PREFIX"`
	S3Region    string `mapstructure:"S3_REGION"`
	S3UseSSL    bool   `mapstructure:"S3_USE_SSL"`

	FirebaseProjectID       string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsJSON string `mapstructure:"FIREBASE_CREDENTIALS_JSON"`
	CrUXAPIKey              string `mapstructure:"CRUX_API_KEY"`
	WebOrigin               string `mapstructure:"WEB_ORIGIN"`

	AssistantBaseURL   string `mapstructure:"ASSISTANT_BASE_URL"`
	AssistantModel     string `mapstructure:"ASSISTANT_MODEL"`
	AssistantAPIKey    string `mapstructure:"ASSISTANT_API_KEY"`
	AssistantMaxTokens int    `mapstructure:"ASSISTANT_MAX_TOKENS"`

	OTelEnabled  bool   `mapstructure:"OTEL_ENABLED"`
	OTelStdout   bool   `mapstructure:"OTEL_STDOUT"`
	OTelEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// keys without a default still need binding, otherwise Unmarshal never sees
// values that only exist in the environment.
var envKeys = []string{
	"ENV", "PORT", "ADMIN_KEY", "CORS_ALLOWED_ORIGINS", "REQUEST_TIMEOUT", "LOG_LEVEL", "DATABASE_URL",
	"JIRA_DOMAIN", "JIRA_EMAIL", "JIRA_API_TOKEN", "JIRA_PROJECT_KEY", "JIRA_JQL", "JIRA_PAGE_SIZE",
	"JIRA_RATE_LIMIT", "HTTP_TIMEOUT",
	"OUTPUT_DIR", "FETCH_CRON", "APP_TZ", "FETCH_ON_START",
	"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_PREFIX", "S3_REGION", "S3_USE_SSL",
	"FIREBASE_PROJECT_ID", "FIREBASE_CREDENTIALS_JSON", "CRUX_API_KEY", "WEB_ORIGIN",
	"ASSISTANT_BASE_URL", "ASSISTANT_MODEL", "ASSISTANT_API_KEY", "ASSISTANT_MAX_TOKENS",
	"OTEL_ENABLED", "OTEL_STDOUT", "OTEL_EXPORTER_OTLP_ENDPOINT",
}

const MaxPageSize = 100

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("JIRA_DOMAIN", "hbeindia.atlassian.net")
	v.SetDefault("JIRA_PROJECT_KEY", "VZY")
	v.SetDefault("JIRA_PAGE_SIZE", MaxPageSize)
	v.SetDefault("JIRA_RATE_LIMIT", 5.0)
	v.SetDefault("HTTP_TIMEOUT", "30s")

	v.SetDefault("OUTPUT_DIR", ".")
	v.SetDefault("FETCH_CRON", "*/30 * * * *")
	v.SetDefault("APP_TZ", "UTC")
	v.SetDefault("FETCH_ON_START", false)

	v.SetDefault("S3_BUCKET", "dashboard")
	v.SetDefault("WEB_ORIGIN", "https://www.vzy.one")
	v.SetDefault("ASSISTANT_MAX_TOKENS", 800)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.JiraPageSize <= 0 || c.JiraPageSize > MaxPageSize {
		c.JiraPageSize = MaxPageSize
	}
	c.JiraDomain = strings.TrimSpace(c.JiraDomain)
	c.JiraProjectKey = strings.TrimSpace(c.JiraProjectKey)
}

// JQL is the issue query for one run.
func (c Config) JQL() string {
	if strings.TrimSpace(c.JiraJQL) != "" {
		return c.JiraJQL
	}
	return fmt.Sprintf("project = %s ORDER BY updated DESC", c.JiraProjectKey)
}

func (c Config) JiraBaseURL() string {
	d := strings.TrimRight(c.JiraDomain, "/")
	if strings.HasPrefix(d, "http://") || strings.HasPrefix(d, "https://") {
		return d
	}
	return "https://" + d
}

func (c Config) ObjectMirrorEnabled() bool {
	return strings.TrimSpace(c.S3Endpoint) != ""
}

// ConfigError reports required settings that are missing.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return strings.Join(e.Missing, " and ") + " environment variables required"
}

type jiraCredentials struct {
	Domain  string `validate:"required" env:"JIRA_DOMAIN"`
	Email   string `validate:"required" env:"JIRA_EMAIL"`
	Token   string `validate:"required" env:"JIRA_API_TOKEN"`
	Project string `validate:"required" env:"JIRA_PROJECT_KEY"`
}

var envNames = map[string]string{
	"Domain":  "JIRA_DOMAIN",
	"Email":   "JIRA_EMAIL",
	"Token":   "JIRA_API_TOKEN",
	"Project": "JIRA_PROJECT_KEY",
}

// ValidateJira checks the settings needed before any call to Jira is made.
func (c Config) ValidateJira() error {
	creds := jiraCredentials{
		Domain:  c.JiraDomain,
		Email:   strings.TrimSpace(c.JiraEmail),
		Token:   strings.TrimSpace(c.JiraAPIToken),
		Project: c.JiraProjectKey,
	}
	err := validator.New().Struct(creds)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, envNames[fe.StructField()])
	}
	return &ConfigError{Missing: missing}
}
