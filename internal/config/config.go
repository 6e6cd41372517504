// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-secureelement.
//
// go-secureelement is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package config loads the deployment configuration: logging and metrics
// settings, binding storage, and the slot provisioning file describing the
// chip's hardware configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-secureelement/pkg/slot"
	"github.com/jeremyhahn/go-secureelement/pkg/storage"
)

// Config represents the complete deployment configuration
type Config struct {
	Logging      LoggingConfig      `yaml:"logging"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	Storage      StorageConfig      `yaml:"storage"`
	Provisioning ProvisioningConfig `yaml:"provisioning"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	// Level is "debug" or "info".
	Level string `yaml:"level"`
}

// MetricsConfig controls the Prometheus metrics endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// StorageConfig selects the binding metadata store
type StorageConfig struct {
	// Type is "memory" or "file".
	Type string `yaml:"type"`

	// Dir is the root directory for the file store.
	Dir string `yaml:"dir"`
}

// ProvisioningConfig locates the slot provisioning data
type ProvisioningConfig struct {
	// File is the path to the YAML provisioning file holding one hardware
	// configuration per physical slot, in slot order.
	File string `yaml:"file"`
}

// DefaultConfig returns a configuration suitable for local development.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Metrics: MetricsConfig{Enabled: false, Listen: ":9464"},
		Storage: StorageConfig{Type: "memory"},
	}
}

// Load reads configuration from a YAML file and applies environment variable overrides
func Load(path string) (*Config, error) {
	// #nosec G304 - Config file path is provided by admin/user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	if level := os.Getenv("SECUREELEMENT_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if listen := os.Getenv("SECUREELEMENT_METRICS_LISTEN"); listen != "" {
		cfg.Metrics.Listen = listen
		cfg.Metrics.Enabled = true
	}
	if storageType := os.Getenv("SECUREELEMENT_STORAGE_TYPE"); storageType != "" {
		cfg.Storage.Type = storageType
	}
	if dir := os.Getenv("SECUREELEMENT_STORAGE_DIR"); dir != "" {
		cfg.Storage.Dir = dir
	}
	if file := os.Getenv("SECUREELEMENT_PROVISIONING_FILE"); file != "" {
		cfg.Provisioning.File = file
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	switch c.Storage.Type {
	case "memory":
	case "file":
		if c.Storage.Dir == "" {
			return fmt.Errorf("file storage requires a directory")
		}
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	return nil
}

// Debug returns true if debug logging is enabled.
func (c *Config) Debug() bool {
	return c.Logging.Level == "debug"
}

// CreateStorage builds the binding storage backend selected by the
// configuration.
func (c *Config) CreateStorage() (storage.Backend, error) {
	switch c.Storage.Type {
	case "memory", "":
		return storage.NewMemory(), nil
	case "file":
		return storage.NewFile(c.Storage.Dir)
	default:
		return nil, fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
}

// provisioningFile is the on-disk shape of the provisioning data.
type provisioningFile struct {
	Slots []slot.Config `yaml:"slots"`
}

// LoadProvisioning reads the per-slot hardware configurations from a YAML
// provisioning file. The entries appear in physical slot order. The data
// originates from chip introspection performed by the driver layer.
func LoadProvisioning(path string) ([]slot.Config, error) {
	// #nosec G304 - Provisioning file path is provided by admin/user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read provisioning file: %w", err)
	}

	var pf provisioningFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse provisioning file: %w", err)
	}
	if len(pf.Slots) == 0 {
		return nil, fmt.Errorf("provisioning file %s declares no slots", path)
	}
	for i, cfg := range pf.Slots {
		if !cfg.KeyType.IsValid() {
			return nil, fmt.Errorf("slot %d: %w: %q", i, slot.ErrUnknownHardwareKeyType, cfg.KeyType)
		}
	}
	return pf.Slots, nil
}
