package config

import (
	"fmt"
	"path/filepath"
)

// Config is the main application configuration struct.
type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Schema         SchemaConfig         `mapstructure:"schema"`
	Generator      GeneratorConfig      `mapstructure:"generator"`
	Paths          PathsConfig          `mapstructure:"paths"`
	Store          StoreConfig          `mapstructure:"store"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Classification ClassificationConfig `mapstructure:"classification"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Metrics        MetricsConfig        `mapstructure:"metrics"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// SchemaConfig points at the service description the corpus is generated from.
type SchemaConfig struct {
	Path string `mapstructure:"path"`
	// Validate runs the document through the embedded JSON Schema before decoding.
	Validate bool `mapstructure:"validate"`
}

// GeneratorConfig holds the mutation generator settings.
type GeneratorConfig struct {
	MaxDepth            int               `mapstructure:"max_depth"`
	SupportedOperations []string          `mapstructure:"supported_operations"`
	RecursiveShapes     []string          `mapstructure:"recursive_shapes"`
	RecursiveDepthCap   int               `mapstructure:"recursive_depth_cap"`
	Identifiers         IdentifierConfig  `mapstructure:"identifiers"`
	Placeholders        PlaceholderConfig `mapstructure:"placeholders"`
}

// IdentifierConfig names the shapes that always carry a substitutable marker.
type IdentifierConfig struct {
	TableShapes     []string `mapstructure:"table_shapes"`
	AttributeShapes []string `mapstructure:"attribute_shapes"`
	ResourceShapes  []string `mapstructure:"resource_shapes"`
}

// PlaceholderConfig holds the literal tokens written into valid instances.
type PlaceholderConfig struct {
	Table     string `mapstructure:"table"`
	Attribute string `mapstructure:"attribute"`
	Resource  string `mapstructure:"resource"`
	String    string `mapstructure:"string"`
}

// PathsConfig lists every file the generator and reconciler touch.
// Relative entries are resolved against WorkDir.
type PathsConfig struct {
	WorkDir string `mapstructure:"work_dir"`

	Generated   string `mapstructure:"generated"`
	Unsupported string `mapstructure:"unsupported"`
	History     string `mapstructure:"history"`

	ReferencePending string `mapstructure:"reference_pending"`
	ReferenceReply   string `mapstructure:"reference_reply"`
	CandidatePending string `mapstructure:"candidate_pending"`
	CandidateReply   string `mapstructure:"candidate_reply"`

	FullInvalid string `mapstructure:"full_invalid"`
	FullValid   string `mapstructure:"full_valid"`
	FullOther   string `mapstructure:"full_other"`
	TestInvalid string `mapstructure:"test_invalid"`
	TestValid   string `mapstructure:"test_valid"`
}

// Resolve returns p joined onto WorkDir unless p is already absolute.
func (p PathsConfig) Resolve(name string) string {
	if name == "" || filepath.IsAbs(name) || p.WorkDir == "" {
		return name
	}
	return filepath.Join(p.WorkDir, name)
}

// StoreConfig selects the historical response cache backend.
type StoreConfig struct {
	Backend     string `mapstructure:"backend"` // file, redis or postgres
	RedisPrefix string `mapstructure:"redis_prefix"`
	Table       string `mapstructure:"table"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ClassificationConfig holds the markers used to bucket reference responses.
type ClassificationConfig struct {
	ValidationMarkers []string `mapstructure:"validation_markers"`
	ErrorTypeField    string   `mapstructure:"error_type_field"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig controls the prometheus textfile written after each command.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// DefaultSupportedOperations is the allow-list of operations the corpus is generated for.
var DefaultSupportedOperations = []string{
	"CreateTable", "DescribeTable", "DeleteTable", "UpdateTable",
	"PutItem", "UpdateItem", "GetItem", "DeleteItem",
	"ListTables", "Scan", "DescribeEndpoints", "BatchWriteItem",
	"BatchGetItem", "Query", "TagResource", "UntagResource",
	"ListTagsOfResource", "UpdateTimeToLive", "DescribeTimeToLive", "ListStreams",
	"DescribeStream", "GetShardIterator", "GetRecords", "DescribeContinuousBackups",
}
