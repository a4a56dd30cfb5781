/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suparena/docmapper/errors"
)

// Supported backends.
const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendDynamoDB = "dynamodb"
)

// Defaults applied by Load and Parse.
const (
	DefaultBackend  = BackendMemory
	DefaultPageSize = 20
	DefaultKeyField = "_id"
)

// Config describes the store a collection is read from and how it is paged.
type Config struct {
	Backend    string `yaml:"backend"`
	Collection string `yaml:"collection"`
	PageSize   int    `yaml:"page_size"`
	KeyField   string `yaml:"key_field"`
	// IndexMaps points to an OpenAPI document whose schemas carry
	// x-dynamodb-indexmap extensions. Relative paths resolve against the
	// working directory.
	IndexMaps string `yaml:"index_maps"`

	Mongo    MongoConfig    `yaml:"mongo"`
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// DynamoDBConfig holds the DynamoDB table settings. Empty credentials fall
// back to the default AWS credential chain.
type DynamoDBConfig struct {
	Table     string `yaml:"table"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PageSize  int32  `yaml:"page_size"`
}

// Load reads the YAML configuration at path. The env files are loaded first
// (".env" when none is given, skipped when missing) so ${VAR} references in
// the file can resolve against them. Variables already set in the
// environment win over the env files.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := loadEnv(envFiles...); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses the YAML configuration from r.
func Read(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse expands ${VAR} references in data, decodes it, fills in the
// defaults and validates the result. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if strings.TrimSpace(expanded) != "" {
		dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Backend == "" {
		c.Backend = DefaultBackend
	}
	c.Backend = strings.ToLower(c.Backend)
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.KeyField == "" {
		c.KeyField = DefaultKeyField
	}
}

// Validate checks that the settings needed by the selected backend are present.
func (c *Config) Validate() error {
	if c.PageSize < 0 {
		return errors.NewConfigurationError("config", "page_size must not be negative, got %d", c.PageSize)
	}

	switch c.Backend {
	case BackendMemory:
		return nil
	case BackendMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return errors.NewConfigurationError("config", "mongo backend requires mongo.uri and mongo.database")
		}
	case BackendDynamoDB:
		if c.DynamoDB.Table == "" || c.DynamoDB.Region == "" {
			return errors.NewConfigurationError("config", "dynamodb backend requires dynamodb.table and dynamodb.region")
		}
		if c.DynamoDB.PageSize < 0 {
			return errors.NewConfigurationError("config", "dynamodb.page_size must not be negative")
		}
		if c.IndexMaps == "" {
			return errors.NewConfigurationError("config", "dynamodb backend requires index_maps")
		}
	default:
		return errors.NewConfigurationError("config", "unknown backend %q", c.Backend)
	}

	if c.Collection == "" {
		return errors.NewConfigurationError("config", "%s backend requires a collection", c.Backend)
	}
	return nil
}

func loadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", file, err)
		}
	}
	return nil
}
