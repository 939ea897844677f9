// Package config loads the YAML settings shared by the genogrove commands.
package config

import (
	"bytes"
	"io"
	"os"

	"genogrove/bplustree"
	"genogrove/graph"
	"genogrove/grove"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config mirrors the YAML file. Zero fields take their defaults.
type Config struct {
	Order       int     `yaml:"order"`
	BulkFill    float64 `yaml:"bulk_fill"`
	EdgePolicy  string  `yaml:"edge_policy"` // multi, reject or overwrite
	QueryCache  int64   `yaml:"query_cache"` // max cached matches, 0 disables
	Compression string  `yaml:"compression"` // zstd or none
	LogLevel    string  `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Order:       bplus.DefaultOrder,
		BulkFill:    bplus.DefaultBulkFill,
		EdgePolicy:  graph.AllowMulti.String(),
		Compression: "zstd",
		LogLevel:    "warn",
	}
}

// OrDefault returns Default() if c is nil, otherwise fills unset fields.
func (c *Config) OrDefault() *Config {
	if c == nil {
		return Default()
	}
	d := Default()
	if c.Order == 0 {
		c.Order = d.Order
	}
	if c.BulkFill == 0 {
		c.BulkFill = d.BulkFill
	}
	if c.EdgePolicy == "" {
		c.EdgePolicy = d.EdgePolicy
	}
	if c.Compression == "" {
		c.Compression = d.Compression
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	return c
}

// Validate rejects settings the grove cannot honour.
func (c *Config) Validate() error {
	if c.Order < bplus.MinOrder {
		return errors.Errorf("order %d below minimum %d", c.Order, bplus.MinOrder)
	}
	if c.BulkFill < bplus.MinBulkFill || c.BulkFill > bplus.MaxBulkFill {
		return errors.Errorf("bulk_fill %.2f outside [%.2f, %.2f]", c.BulkFill, bplus.MinBulkFill, bplus.MaxBulkFill)
	}
	if _, err := graph.ParsePolicy(c.EdgePolicy); err != nil {
		return err
	}
	if c.QueryCache < 0 {
		return errors.Errorf("query_cache %d is negative", c.QueryCache)
	}
	if c.Compression != "zstd" && c.Compression != "none" {
		return errors.Errorf("unknown compression %q", c.Compression)
	}
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}
	return nil
}

// Load reads path, fills defaults and validates. Unknown keys are errors.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(raw)
}

// Parse is Load for an in-memory document.
func Parse(raw []byte) (*Config, error) {
	c := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "parse config")
	}
	c = c.OrDefault()
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return c, nil
}

// GroveOptions translates the settings into grove options.
func (c *Config) GroveOptions(logger *zap.Logger) []grove.Option {
	c = c.OrDefault()
	policy, _ := graph.ParsePolicy(c.EdgePolicy)
	return []grove.Option{
		grove.WithOrder(c.Order),
		grove.WithBulkFill(c.BulkFill),
		grove.WithEdgePolicy(policy),
		grove.WithQueryCache(c.QueryCache),
		grove.WithCompression(c.Compression == "zstd"),
		grove.WithLogger(logger),
	}
}

// Logger builds a zap logger at the configured level; development mode
// adds caller and stack information.
func (c *Config) Logger(development bool) (*zap.Logger, error) {
	c = c.OrDefault()
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "log_level")
	}
	zc := zap.NewProductionConfig()
	if development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
