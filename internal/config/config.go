// Package config implements the layered configuration loader named in
// §6: defaults, then a config file, then environment variables, with
// unknown keys ignored and out-of-range values rejected at load time.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/slasshy/slasshy/internal/keyring"
	"github.com/slasshy/slasshy/internal/vaultindex"
)

// KDFConfig mirrors keyring.KDFParams in the shape the config file uses.
type KDFConfig struct {
	TimeCost    uint32 `mapstructure:"time_cost"`
	MemoryCost  uint32 `mapstructure:"memory_cost"`
	Parallelism uint8  `mapstructure:"parallelism"`
}

// Config holds everything the CLI/daemon needs at startup (§6 Environment
// block, plus the ambient cloud/log settings the core's collaborators
// need but the core itself does not interpret).
type Config struct {
	VaultDir          string      `mapstructure:"vault_dir"`
	AutoLockTimeoutMs int64       `mapstructure:"auto_lock_timeout_ms"`
	PreferredCarrier  string      `mapstructure:"preferred_carrier"` // png|jpg
	DecoyRatio        int         `mapstructure:"decoy_ratio"`
	KDF               KDFConfig   `mapstructure:"kdf"`

	LogLevel  string `mapstructure:"log_level"`
	AdminAddr string `mapstructure:"admin_addr"`

	AWSRegion        string `mapstructure:"aws_region"`
	CloudTableName   string `mapstructure:"cloud_table_name"`
	CloudVaultID     string `mapstructure:"cloud_vault_id"`
	TokenSecretName  string `mapstructure:"token_secret_name"`

	configPath string
}

// Default returns the built-in defaults, used as the base layer before
// a config file or environment overrides are applied.
func Default() *Config {
	home, _ := os.UserHomeDir()
	d := keyring.DefaultKDFParams()
	return &Config{
		VaultDir:          filepath.Join(home, ".slasshy"),
		AutoLockTimeoutMs: int64(keyring.DefaultExpiry / 1e6),
		PreferredCarrier:  string(vaultindex.CarrierPNG),
		DecoyRatio:        0,
		KDF: KDFConfig{
			TimeCost:    d.TimeCost,
			MemoryCost:  d.MemoryCost,
			Parallelism: d.Parallelism,
		},
		LogLevel:       "info",
		AdminAddr:      "127.0.0.1:7417",
		AWSRegion:      "us-west-2",
		CloudTableName: "slasshy_vaults",
		TokenSecretName: "slasshy/tokens",
	}
}

// Load builds a viper-backed layered config: defaults, then
// <vault-config-root>/config.yaml if present, then SLASSHY_*
// environment variables. Out-of-range values are rejected; unknown keys
// are ignored by virtue of only mapstructure-tagged fields being read.
func Load(configPath string) (*Config, error) {
	def := Default()
	if configPath == "" {
		configPath = filepath.Join(def.VaultDir, "config.yaml")
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("vault_dir", def.VaultDir)
	v.SetDefault("auto_lock_timeout_ms", def.AutoLockTimeoutMs)
	v.SetDefault("preferred_carrier", def.PreferredCarrier)
	v.SetDefault("decoy_ratio", def.DecoyRatio)
	v.SetDefault("kdf.time_cost", def.KDF.TimeCost)
	v.SetDefault("kdf.memory_cost", def.KDF.MemoryCost)
	v.SetDefault("kdf.parallelism", def.KDF.Parallelism)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("admin_addr", def.AdminAddr)
	v.SetDefault("aws_region", def.AWSRegion)
	v.SetDefault("cloud_table_name", def.CloudTableName)
	v.SetDefault("cloud_vault_id", def.CloudVaultID)
	v.SetDefault("token_secret_name", def.TokenSecretName)

	v.SetEnvPrefix("slasshy")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	cfg := &Config{configPath: configPath}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}
	cfg.configPath = configPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects out-of-range configuration values (§6).
func (c *Config) Validate() error {
	if c.AutoLockTimeoutMs < 0 {
		return fmt.Errorf("config: auto_lock_timeout_ms must be >= 0, got %d", c.AutoLockTimeoutMs)
	}
	if c.PreferredCarrier != string(vaultindex.CarrierPNG) && c.PreferredCarrier != string(vaultindex.CarrierJPG) {
		return fmt.Errorf("config: preferred_carrier must be png or jpg, got %q", c.PreferredCarrier)
	}
	if c.DecoyRatio < 0 {
		return fmt.Errorf("config: decoy_ratio must be >= 0, got %d", c.DecoyRatio)
	}
	kdf := keyring.KDFParams{TimeCost: c.KDF.TimeCost, MemoryCost: c.KDF.MemoryCost, Parallelism: c.KDF.Parallelism}
	if err := kdf.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// AutoLockDuration converts AutoLockTimeoutMs to a time.Duration. Zero
// means auto-lock is disabled.
func (c *Config) AutoLockDuration() time.Duration {
	return time.Duration(c.AutoLockTimeoutMs) * time.Millisecond
}

// KDFParams converts the config's KDF block to keyring.KDFParams.
func (c *Config) KDFParams() keyring.KDFParams {
	return keyring.KDFParams{
		TimeCost:    c.KDF.TimeCost,
		MemoryCost:  c.KDF.MemoryCost,
		Parallelism: c.KDF.Parallelism,
	}
}

// Save persists the config back to its file as YAML-compatible JSON-free
// mapstructure, via viper's own writer.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0700); err != nil {
		return fmt.Errorf("config: creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(c.configPath)
	v.Set("vault_dir", c.VaultDir)
	v.Set("auto_lock_timeout_ms", c.AutoLockTimeoutMs)
	v.Set("preferred_carrier", c.PreferredCarrier)
	v.Set("decoy_ratio", c.DecoyRatio)
	v.Set("kdf.time_cost", c.KDF.TimeCost)
	v.Set("kdf.memory_cost", c.KDF.MemoryCost)
	v.Set("kdf.parallelism", c.KDF.Parallelism)
	v.Set("log_level", c.LogLevel)
	v.Set("aws_region", c.AWSRegion)
	v.Set("cloud_table_name", c.CloudTableName)
	v.Set("cloud_vault_id", c.CloudVaultID)
	v.Set("token_secret_name", c.TokenSecretName)

	if err := v.WriteConfigAs(c.configPath); err != nil {
		return fmt.Errorf("config: writing %s: %w", c.configPath, err)
	}
	return nil
}

// ConfigPath returns the file this config was loaded from/will save to.
func (c *Config) ConfigPath() string { return c.configPath }
