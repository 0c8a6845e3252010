package config

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultChatChannel is used when CENTRIFUGO_CHAT_NAMESPACE is unset.
const DefaultChatChannel = "chat"

// Config holds the application configuration.
type Config struct {
	Port       string `mapstructure:"PORT"`
	GinMode    string `mapstructure:"GIN_MODE"`
	AppVersion string `mapstructure:"APP_VERSION"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	DatabaseURL  string        `mapstructure:"DATABASE_URL"`
	StoreTimeout time.Duration `mapstructure:"STORE_TIMEOUT"`

	JWTSecret    string `mapstructure:"JWT_SECRET"`
	JWTExpiresIn string `mapstructure:"JWT_EXPIRES_IN"`

	FrontendURL string `mapstructure:"FRONTEND_URL"`

	GoogleClientID      string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret  string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleOAuthEndpoint string `mapstructure:"GOOGLE_OAUTH_ENDPOINT"`

	LichessClientID string `mapstructure:"LICHESS_CLIENT_ID"`
	LichessOAuthKey string `mapstructure:"LICHESS_OAUTH_KEY"`

	CentrifugoHost          string `mapstructure:"CENTRIFUGO_HOST"`
	CentrifugoAPIKey        string `mapstructure:"CENTRIFUGO_API_KEY"`
	CentrifugoHMACSecret    string `mapstructure:"CENTRIFUGO_HMAC_SECRET"`
	CentrifugoChatNamespace string `mapstructure:"CENTRIFUGO_CHAT_NAMESPACE"`

	AIProvider      string `mapstructure:"AI_PROVIDER"`
	GeminiAPIKey    string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel     string `mapstructure:"GEMINI_MODEL"`
	OpenRouterKey   string `mapstructure:"OPEN_ROUTER_KEY"`
	OpenRouterModel string `mapstructure:"OPEN_ROUTER_MODEL"`

	CheckinResetAt  string `mapstructure:"CHECKIN_RESET_AT"`
	CheckinTimezone string `mapstructure:"CHECKIN_TIMEZONE"`
	RefreshSecret   string `mapstructure:"REFRESH_SECRET"`

	MessageRatePerMinute int `mapstructure:"MESSAGE_RATE_PER_MINUTE"`
}

var defaults = map[string]any{
	"PORT":                      "5000",
	"GIN_MODE":                  "release",
	"APP_VERSION":               "1.0.0",
	"LOG_LEVEL":                 "info",
	"DATABASE_URL":              "",
	"STORE_TIMEOUT":             "5s",
	"JWT_SECRET":                "",
	"JWT_EXPIRES_IN":            "7d",
	"FRONTEND_URL":              "",
	"GOOGLE_CLIENT_ID":          "",
	"GOOGLE_CLIENT_SECRET":      "",
	"GOOGLE_OAUTH_ENDPOINT":     "https://accounts.google.com/o/oauth2/v2/auth",
	"LICHESS_CLIENT_ID":         "cpd",
	"LICHESS_OAUTH_KEY":         "",
	"CENTRIFUGO_HOST":           "",
	"CENTRIFUGO_API_KEY":        "",
	"CENTRIFUGO_HMAC_SECRET":    "",
	"CENTRIFUGO_CHAT_NAMESPACE": "",
	"AI_PROVIDER":               "gemini",
	"GEMINI_API_KEY":            "",
	"GEMINI_MODEL":              "gemini-2.5-flash",
	"OPEN_ROUTER_KEY":           "",
	"OPEN_ROUTER_MODEL":         "",
	"CHECKIN_RESET_AT":          "",
	"CHECKIN_TIMEZONE":          "UTC",
	"REFRESH_SECRET":            "",
	"MESSAGE_RATE_PER_MINUTE":   20,
}

// LoadConfig loads the configuration from a .env file in dir and environment variables.
// Environment variables win over the file.
func LoadConfig(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	// Every key needs a default so AutomaticEnv values reach Unmarshal.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	if _, err := cfg.TokenTTL(); err != nil {
		return nil, err
	}
	if cfg.ScheduledReset() {
		if _, _, err := cfg.ResetTime(); err != nil {
			return nil, err
		}
	}
	if _, err := time.LoadLocation(cfg.CheckinTimezone); err != nil {
		return nil, fmt.Errorf("invalid CHECKIN_TIMEZONE %q: %w", cfg.CheckinTimezone, err)
	}

	return &cfg, nil
}

// TokenTTL parses JWT_EXPIRES_IN. Besides Go durations it accepts a day suffix ("7d").
func (c *Config) TokenTTL() (time.Duration, error) {
	return ParseTTL(c.JWTExpiresIn)
}

// ParseTTL parses a Go duration or a whole number of days written as "<n>d".
func ParseTTL(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid token ttl %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid token ttl %q", raw)
	}
	return d, nil
}

// ScheduledReset reports whether the daily reset runs in-process at CHECKIN_RESET_AT. When it
// does, GET /refresh is not served, so only one trigger ever closes a day.
func (c *Config) ScheduledReset() bool {
	return strings.TrimSpace(c.CheckinResetAt) != ""
}

// ResetTime returns the hour and minute of CHECKIN_RESET_AT ("HH:MM").
func (c *Config) ResetTime() (hour, minute uint, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(c.CheckinResetAt))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid CHECKIN_RESET_AT %q: %w", c.CheckinResetAt, err)
	}
	return uint(t.Hour()), uint(t.Minute()), nil
}

// FrontendOrigins splits FRONTEND_URL into trimmed origins without trailing slashes.
func (c *Config) FrontendOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.FrontendURL, ",") {
		origin = strings.TrimSuffix(strings.TrimSpace(origin), "/")
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// FrontendBase is the first configured frontend origin, used for OAuth redirects.
func (c *Config) FrontendBase() string {
	origins := c.FrontendOrigins()
	if len(origins) == 0 {
		return ""
	}
	return origins[0]
}

// ChatChannel is the real-time channel chat messages are published on, shared by the gateway
// and the event stream.
func (c *Config) ChatChannel() string {
	if ns := strings.TrimSpace(c.CentrifugoChatNamespace); ns != "" {
		return ns
	}
	return DefaultChatChannel
}
