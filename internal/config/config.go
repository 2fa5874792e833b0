package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"task-tracker/internal/auth"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Log struct {
		Level string
	}
	Auth struct {
		// JWTSecret is the single-key shorthand; Keys/ActiveKey take precedence when set.
		JWTSecret          string
		Keys               string
		ActiveKey          string
		TokenTTLMinutes    int
		BcryptCost         int
		UniformLoginErrors bool
	}
	Storage struct {
		Bucket    string
		KeyPrefix string
		Region    string
		Endpoint  string
	}
	AWS struct {
		Profile string
	}
	Export struct {
		MaxConcurrent int
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv(".env")
	return load(".")
}

func load(configDir string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TASKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:3000")
	v.SetDefault("database.path", "data/tasks.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.keys", "")
	v.SetDefault("auth.activekey", "")
	v.SetDefault("auth.tokenttlminutes", 60)
	v.SetDefault("auth.bcryptcost", 10)
	v.SetDefault("auth.uniformloginerrors", false)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "task-exports")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")
	v.SetDefault("export.maxconcurrent", 2)

	v.SetConfigName("config")
	v.AddConfigPath(configDir)
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Keyring builds the token signing keys. auth.keys ("kid=secret,...") with
// auth.activekey wins over the single auth.jwtsecret.
func (c Config) Keyring() (*auth.Keyring, error) {
	if strings.TrimSpace(c.Auth.Keys) != "" {
		keys, err := auth.ParseKeys(c.Auth.Keys)
		if err != nil {
			return nil, fmt.Errorf("parse auth keys: %w", err)
		}
		active := strings.TrimSpace(c.Auth.ActiveKey)
		if active == "" && len(keys) == 1 {
			for kid := range keys {
				active = kid
			}
		}
		return auth.NewKeyring(active, keys)
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return nil, fmt.Errorf("auth jwt secret is required")
	}
	return auth.SingleKey(c.Auth.JWTSecret)
}

// TokenTTL returns the token lifetime, defaulting to one hour.
func (c Config) TokenTTL() time.Duration {
	if c.Auth.TokenTTLMinutes <= 0 {
		return auth.DefaultTokenTTL
	}
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

func loadDotEnv(path string) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		if !ok || key == "" {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
