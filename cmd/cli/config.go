package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all service configuration
type Config struct {
	HTTPAddress string

	MongoURI      string
	MongoDatabase string

	RedisAddress  string
	RedisPassword string

	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3ForcePathStyle  bool

	SharedBucket    string
	WorkspaceBucket string

	// NotifySubscribeTimeoutSeconds bounds the blocking wait for the
	// notification channel subscription acknowledgment.
	NotifySubscribeTimeoutSeconds int

	DefaultQuotaBytes int64

	// WorkspaceAPIKeys maps workspace ids to base64 ed25519 public keys.
	// When empty, the workspace API runs unauthenticated. Set through
	// the config file; there is no flat env representation for it.
	WorkspaceAPIKeys map[string]string
}

func (c *Config) NotifySubscribeTimeout() time.Duration {
	return time.Duration(c.NotifySubscribeTimeoutSeconds) * time.Second
}

// LoadConfig loads configuration from files and environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envMappings := map[string]string{
		"HTTPAddress":                   "HTTP_ADDRESS",
		"MongoURI":                      "MONGO_URI",
		"MongoDatabase":                 "MONGO_DATABASE",
		"RedisAddress":                  "REDIS_ADDRESS",
		"RedisPassword":                 "REDIS_PASSWORD",
		"S3Region":                      "S3_REGION",
		"S3Endpoint":                    "S3_ENDPOINT",
		"S3AccessKeyID":                 "S3_ACCESS_KEY_ID",
		"S3SecretAccessKey":             "S3_SECRET_ACCESS_KEY",
		"S3ForcePathStyle":              "S3_FORCE_PATH_STYLE",
		"SharedBucket":                  "SHARED_BUCKET",
		"WorkspaceBucket":               "WORKSPACE_BUCKET",
		"NotifySubscribeTimeoutSeconds": "NOTIFY_SUBSCRIBE_TIMEOUT_SECONDS",
		"DefaultQuotaBytes":             "DEFAULT_QUOTA_BYTES",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	v.SetConfigName("dropspace_config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.dropspace")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTPAddress", ":8080")
	v.SetDefault("MongoDatabase", "dropspace")
	v.SetDefault("RedisAddress", "localhost:6379")
	v.SetDefault("SharedBucket", "dropspace-shared")
	v.SetDefault("WorkspaceBucket", "dropspace-workspace")
	v.SetDefault("NotifySubscribeTimeoutSeconds", 5)
	v.SetDefault("DefaultQuotaBytes", int64(5)<<30)
}

func validateConfig(config *Config) error {
	var missingVars []string

	if config.MongoURI == "" {
		missingVars = append(missingVars, "MONGO_URI")
	}

	if config.S3Region == "" && config.S3Endpoint == "" {
		missingVars = append(missingVars, "S3_REGION")
	}

	if config.S3AccessKeyID == "" {
		missingVars = append(missingVars, "S3_ACCESS_KEY_ID")
	}

	if config.S3SecretAccessKey == "" {
		missingVars = append(missingVars, "S3_SECRET_ACCESS_KEY")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missingVars, ", "))
	}

	return nil
}
