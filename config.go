package mealdiary

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Config holds every knob the server needs. Values come from the
// environment; see NewConfigFromEnv.
type Config struct {
	Server      ServerConfig
	Auth        AuthConfig
	Persistence PersistenceConfig
	Mailer      MailerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type AuthConfig struct {
	// SigningKey signs locally minted session tokens.
	SigningKey string
	// PreviousSigningKeys still validate sessions minted before a key
	// rotation. They never sign new tokens.
	PreviousSigningKeys []string
	// ServerSecret is the base material for per-user reset token secrets.
	ServerSecret string
	Issuer       string
	// JWKSetURLs, when set, turns on signature verification of external
	// assertions against the issuer's published keys.
	JWKSetURLs []string
	// ResetURL is the base link embedded in password reset emails.
	ResetURL string
}

type PersistenceConfig struct {
	Driver                string
	DSN                   string
	Debug                 bool
	PingTimeoutExpression string
}

func (p PersistenceConfig) GetDriver() string {
	return p.Driver
}

func (p PersistenceConfig) GetDSN() string {
	return p.DSN
}

func (p PersistenceConfig) GetDebug() bool {
	return p.Debug
}

func (p PersistenceConfig) GetPingTimeout() time.Duration {
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}

type MailerConfig struct {
	APIKey string
	From   string
}

// NewConfigFromEnv reads configuration from the environment, filling in
// development defaults for anything unset.
func NewConfigFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: envOr("SERVER_HOST", "0.0.0.0"),
			Port: envIntOr("SERVER_PORT", 8080),
		},
		Auth: AuthConfig{
			SigningKey:   os.Getenv("AUTH_SIGNING_KEY"),
			ServerSecret: os.Getenv("AUTH_SERVER_SECRET"),
			Issuer:       envOr("AUTH_ISSUER", "mealdiary"),
			ResetURL:     envOr("AUTH_RESET_URL", "http://localhost:8080/users/resetPassword"),
		},
		Persistence: PersistenceConfig{
			Driver:                envOr("DB_DRIVER", "sqlite"),
			DSN:                   envOr("DB_DSN", "file:mealdiary.db?cache=shared&mode=rwc"),
			Debug:                 envBoolOr("DB_DEBUG", false),
			PingTimeoutExpression: envOr("DB_PING_TIMEOUT", "5s"),
		},
		Mailer: MailerConfig{
			APIKey: os.Getenv("MAILER_API_KEY"),
			From:   envOr("MAILER_FROM", "no-reply@mealdiary.app"),
		},
	}

	if urls := os.Getenv("AUTH_JWK_SET_URLS"); urls != "" {
		for _, u := range strings.Split(urls, ",") {
			if u = strings.TrimSpace(u); u != "" {
				cfg.Auth.JWKSetURLs = append(cfg.Auth.JWKSetURLs, u)
			}
		}
	}

	if keys := os.Getenv("AUTH_PREVIOUS_SIGNING_KEYS"); keys != "" {
		for _, k := range strings.Split(keys, ",") {
			if k = strings.TrimSpace(k); k != "" {
				cfg.Auth.PreviousSigningKeys = append(cfg.Auth.PreviousSigningKeys, k)
			}
		}
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Auth.SigningKey == "" {
		return goerrors.New("AUTH_SIGNING_KEY must be set", goerrors.CategoryBadInput)
	}
	if c.Auth.ServerSecret == "" {
		return goerrors.New("AUTH_SERVER_SECRET must be set", goerrors.CategoryBadInput)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
