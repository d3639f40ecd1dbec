package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envBindings maps config keys to the environment variables the deployment
// already uses. The MINIO_* and LOCAL_DATA_PATH names are shared with the
// rest of the lakehouse stack, so they carry no prefix.
var envBindings = map[string]string{
	"endpoint":       "MINIO_ENDPOINT",
	"access_key":     "MINIO_ACCESS_KEY",
	"secret_key":     "MINIO_SECRET_KEY",
	"bucket":         "MINIO_RAW_BUCKET",
	"region":         "MINIO_REGION",
	"max_retries":    "LAKESTREAM_MAX_RETRIES",
	"data_path":      "LOCAL_DATA_PATH",
	"subdir":         "LAKESTREAM_SUBDIR",
	"poll_interval":  "LAKESTREAM_POLL_INTERVAL",
	"upload_timeout": "LAKESTREAM_UPLOAD_TIMEOUT",
	"ignore_file":    "LAKESTREAM_IGNORE_FILE",
	"http_addr":      "LAKESTREAM_HTTP_ADDR",
	"log_file":       "LAKESTREAM_LOG_FILE",
	"log_level":      "LAKESTREAM_LOG_LEVEL",
}

// flagBindings maps config keys to CLI flag names.
var flagBindings = map[string]string{
	"endpoint":      "endpoint",
	"bucket":        "bucket",
	"data_path":     "data-path",
	"subdir":        "subdir",
	"poll_interval": "interval",
	"http_addr":     "http-addr",
	"log_file":      "log-file",
	"log_level":     "log-level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("endpoint", DefaultEndpoint)
	v.SetDefault("access_key", DefaultAccessKey)
	v.SetDefault("secret_key", DefaultSecretKey)
	v.SetDefault("bucket", DefaultBucket)
	v.SetDefault("region", DefaultRegion)
	v.SetDefault("max_retries", DefaultMaxRetries)
	v.SetDefault("data_path", DefaultDataPath)
	v.SetDefault("subdir", DefaultSubdir)
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("upload_timeout", DefaultUploadTimeout)
	v.SetDefault("ignore_file", DefaultIgnoreFile)
	v.SetDefault("http_addr", "")
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", DefaultLogLevel)
}

// LoadEnvFile loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("env file %q: %w", path, err)
	}
	return nil
}

// Load resolves the configuration from defaults, environment and any flags
// present in flags (which may be nil). The result is validated.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Store: Store{
			Endpoint:   strings.TrimSpace(v.GetString("endpoint")),
			AccessKey:  v.GetString("access_key"),
			SecretKey:  v.GetString("secret_key"),
			Bucket:     strings.TrimSpace(v.GetString("bucket")),
			Region:     v.GetString("region"),
			MaxRetries: v.GetInt("max_retries"),
		},
		DataPath:      v.GetString("data_path"),
		Subdir:        v.GetString("subdir"),
		PollInterval:  v.GetDuration("poll_interval"),
		UploadTimeout: v.GetDuration("upload_timeout"),
		IgnoreFile:    v.GetString("ignore_file"),
		HTTPAddr:      v.GetString("http_addr"),
		LogFile:       v.GetString("log_file"),
		LogLevel:      strings.ToLower(v.GetString("log_level")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
