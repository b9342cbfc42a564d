package config

// Package config provides a reusable loader for Keypom service
// configuration files and environment variables. It is versioned so that
// embedders can depend on a stable API contract.
//
// Version: v0.1.0

import (
	"fmt"

	"github.com/spf13/viper"

	"keypom/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config represents the unified configuration for a Keypom service
// instance. It mirrors the structure of the YAML files under cmd/config.
type Config struct {
	Contract struct {
		AccountID      string `mapstructure:"account_id" json:"account_id"`
		RootAccountID  string `mapstructure:"root_account_id" json:"root_account_id"`
		MaxLenPayout   uint32 `mapstructure:"max_len_payout" json:"max_len_payout"`
	} `mapstructure:"contract" json:"contract"`

	Fees struct {
		PerDrop string `mapstructure:"per_drop" json:"per_drop"`
		PerKey  string `mapstructure:"per_key" json:"per_key"`
	} `mapstructure:"fees" json:"fees"`

	Cost struct {
		ReceiptGas         uint64 `mapstructure:"receipt_gas" json:"receipt_gas"`
		GasPerCCC          uint64 `mapstructure:"gas_per_ccc" json:"gas_per_ccc"`
		PlatformGasCeiling uint64 `mapstructure:"platform_gas_ceiling" json:"platform_gas_ceiling"`
		StorageBytePrice   string `mapstructure:"storage_byte_price" json:"storage_byte_price"`
		BaseGasForClaim    uint64 `mapstructure:"base_gas_for_claim" json:"base_gas_for_claim"`
		BaseGasForCAAC     uint64 `mapstructure:"base_gas_for_caac" json:"base_gas_for_caac"`
	} `mapstructure:"cost" json:"cost"`

	Server struct {
		Port       string `mapstructure:"port" json:"port"`
		ListenAddr string `mapstructure:"listen_addr" json:"listen_addr"`
	} `mapstructure:"server" json:"server"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and returned.
//
// The function uses the provided environment name to merge additional config
// files. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // picks up matching process environment variables

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the KEYPOM_ENV environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("KEYPOM_ENV", ""))
}
