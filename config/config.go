// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = pflag.String("config", "", "Path to a config.toml file")

	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"local", "s3"}
	validDrivers      = []string{"sqlite", "postgres"}
	validMailQueues   = []string{"direct", "redis"}
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

// Every key that can be set from the environment. APP_LOG_LEVEL sets
// app.log_level and so on.
var keys = []string{
	"app.log_level",

	"host.port",
	"host.base_url",
	"host.cors",

	"db.driver",
	"db.dsn",

	"jwt.secret",
	"jwt.access_ttl",
	"jwt.refresh_ttl",

	"otp.ttl",
	"otp.reset_ttl",
	"otp.require_reset_token",
	"otp.cleanup_interval",

	"storage.type",
	"storage.poster_dir",

	"aws.access_key",
	"aws.secret_access_key",
	"aws.region",
	"aws.bucket",
	"aws.endpoint",

	"upload.max_size",

	"mail.enabled",
	"mail.host",
	"mail.port",
	"mail.sender",
	"mail.password",
	"mail.queue",

	"redis.addr",

	"security.rate_limit",

	"admin.email",
	"admin.password",
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup parses command line flags and loads the configuration. It returns
// an error if something is critically wrong and the application can't run
// because of that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	return Load(*configPath)
}

// Load reads an optional .env file, the config file at path (config.toml
// in the working directory when empty) and the environment, then validates
// the result.
func Load(path string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file, %w", err)
	}

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, k := range keys {
		v.BindEnv(k)
	}

	setDefaults()

	if err := v.ReadInConfig(); err != nil {
		var notFound v.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	return validate()
}

func setDefaults() {
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.base_url", "http://localhost:8080")
	v.SetDefault("host.cors", "http://localhost:5173")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("jwt.access_ttl", 24*time.Hour)
	v.SetDefault("jwt.refresh_ttl", 50*time.Hour)

	v.SetDefault("otp.ttl", 70*time.Second)
	v.SetDefault("otp.reset_ttl", 10*time.Minute)
	v.SetDefault("otp.require_reset_token", true)
	v.SetDefault("otp.cleanup_interval", 24*time.Hour)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.poster_dir", "posters")

	v.SetDefault("aws.region", "us-east-1")

	v.SetDefault("upload.max_size", 10)

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.queue", "direct")

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("security.rate_limit", 10)
}

func validate() error {
	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("jwt.secret") == "" {
		return fmt.Errorf("no jwt.secret set. Put this random one in your config.toml or JWT_SECRET:\n\n%s", genSecret())
	}

	for _, k := range []string{"jwt.access_ttl", "jwt.refresh_ttl", "otp.ttl", "otp.reset_ttl", "otp.cleanup_interval"} {
		if v.GetDuration(k) <= 0 {
			return fmt.Errorf("%s must be a positive duration", k)
		}
	}

	switch v.GetString("storage.type") {
	case "s3":
		if v.GetString("aws.bucket") == "" {
			return errors.New("bucket can't be empty")
		}
		if v.GetString("aws.access_key") == "" {
			return errors.New("access key can't be empty")
		}
		if v.GetString("aws.secret_access_key") == "" {
			return errors.New("secret access key can't be empty")
		}
	case "local":
		if v.GetString("storage.poster_dir") == "" {
			return errors.New("poster directory can't be empty")
		}
	}

	if !slices.Contains(validStorageTypes, v.GetString("storage.type")) {
		return errors.New("invalid storage type provided")
	}

	if v.GetInt64("upload.max_size") <= 0 {
		return errors.New("max upload size must be bigger than 0")
	}

	if v.GetBool("mail.enabled") {
		if v.GetString("mail.host") == "" || v.GetString("mail.sender") == "" {
			return errors.New("mail.host and mail.sender are required when mail is enabled")
		}

		if !slices.Contains(validMailQueues, v.GetString("mail.queue")) {
			return errors.New("invalid mail queue provided")
		}
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("rate limit must be bigger than 0")
	}

	if (v.GetString("admin.email") == "") != (v.GetString("admin.password") == "") {
		return errors.New("admin.email and admin.password must be set together")
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}

// SetupLogger replaces the global zap logger with a colored development
// logger at level
func SetupLogger(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(log)
	return nil
}
