package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "alternator-reqgen/internal/common/errors"
)

// EnvPrefix is prepended to every environment override, e.g. REQGEN_STORE_BACKEND.
const EnvPrefix = "REQGEN"

// Load reads configuration into v. configFile may be empty, in which case
// reqgen.yaml is searched in ./configs and the working directory; a missing
// file is not an error. A nil v gets a fresh viper instance.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	loadEnvFile()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("reqgen")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading base config: %w", err)
			}
		}
	}

	env := v.GetString("app.environment")
	if env != "" && configFile == "" {
		v.SetConfigName("reqgen." + env)
		_ = v.MergeInConfig() // ignore error if not found
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found in the working directory or its parents.
func loadEnvFile() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "${") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal {
			v.Set(key, expanded)
		}
	}
}

// setDefaults registers scalar defaults so env overrides are visible to Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "reqgen")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.environment", "")

	v.SetDefault("schema.path", "generator/service-2.json")
	v.SetDefault("schema.validate", true)

	v.SetDefault("generator.max_depth", 8)
	v.SetDefault("generator.recursive_depth_cap", 2)
	v.SetDefault("generator.placeholders.table", "__TABLE__")
	v.SetDefault("generator.placeholders.attribute", "__ATTR__")
	v.SetDefault("generator.placeholders.resource", "arn:test")
	v.SetDefault("generator.placeholders.string", "_TEST_")

	v.SetDefault("paths.work_dir", ".")
	v.SetDefault("paths.generated", "generator/generated.yaml")
	v.SetDefault("paths.unsupported", "test_automated_unsupported_yet.yaml")
	v.SetDefault("paths.history", "generator/AWS_history.yaml")
	v.SetDefault("paths.reference_pending", "test_generated_AWS.yaml")
	v.SetDefault("paths.reference_reply", "test_generated_AWS.resp.yaml")
	v.SetDefault("paths.candidate_pending", "test_generated_ALT.yaml")
	v.SetDefault("paths.candidate_reply", "test_generated_ALT.resp.yaml")
	v.SetDefault("paths.full_invalid", "generator/full_invalid_payload.yaml")
	v.SetDefault("paths.full_valid", "generator/full_valid_payload.yaml")
	v.SetDefault("paths.full_other", "generator/full_other_errors.yaml")
	v.SetDefault("paths.test_invalid", "test_automated_invalid_payload.yaml")
	v.SetDefault("paths.test_valid", "test_automated_valid_payload.yaml")

	v.SetDefault("store.backend", "file")
	v.SetDefault("store.redis_prefix", "reqgen:history")
	v.SetDefault("store.table", "request_history")

	v.SetDefault("database.redis.address", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("database.postgres.host", "")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "")
	v.SetDefault("database.postgres.user", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("classification.error_type_field", "__type")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("metrics.textfile", "")
}

// applyDefaults fills the list-valued settings viper cannot default per element.
func applyDefaults(cfg *Config) {
	g := &cfg.Generator
	if len(g.SupportedOperations) == 0 {
		g.SupportedOperations = append([]string(nil), DefaultSupportedOperations...)
	}
	if len(g.RecursiveShapes) == 0 {
		g.RecursiveShapes = []string{"AttributeValue"}
	}
	if len(g.Identifiers.TableShapes) == 0 {
		g.Identifiers.TableShapes = []string{"TableName", "TableArn"}
	}
	if len(g.Identifiers.AttributeShapes) == 0 {
		g.Identifiers.AttributeShapes = []string{"AttributeName"}
	}
	if len(g.Identifiers.ResourceShapes) == 0 {
		g.Identifiers.ResourceShapes = []string{"ResourceArnString"}
	}

	if len(cfg.Classification.ValidationMarkers) == 0 {
		cfg.Classification.ValidationMarkers = []string{"ValidationException", "SerializationException"}
	}

	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 5
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Generator.MaxDepth <= 0 {
		return apperrors.NewConfigInvalidError("generator.max_depth must be positive")
	}
	if cfg.Generator.RecursiveDepthCap <= 0 {
		return apperrors.NewConfigInvalidError("generator.recursive_depth_cap must be positive")
	}
	p := cfg.Generator.Placeholders
	if p.Table == "" || p.Attribute == "" || p.Resource == "" || p.String == "" {
		return apperrors.NewConfigInvalidError("generator.placeholders must all be non-empty")
	}
	if cfg.Schema.Path == "" {
		return apperrors.NewConfigInvalidError("schema.path is required")
	}

	switch cfg.Store.Backend {
	case "file":
		if cfg.Paths.History == "" {
			return apperrors.NewConfigInvalidError("paths.history is required for the file store")
		}
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return apperrors.NewConfigInvalidError("database.redis.address is required for the redis store")
		}
	case "postgres":
		if cfg.Database.Postgres.Host == "" {
			return apperrors.NewConfigInvalidError("database.postgres.host is required for the postgres store")
		}
		if cfg.Database.Postgres.Database == "" {
			return apperrors.NewConfigInvalidError("database.postgres.database is required for the postgres store")
		}
		if cfg.Database.Postgres.User == "" {
			return apperrors.NewConfigInvalidError("database.postgres.user is required for the postgres store")
		}
	default:
		return apperrors.NewConfigInvalidError(fmt.Sprintf("unknown store.backend %q", cfg.Store.Backend))
	}
	return nil
}
