// Package config defines the engine configuration and loads it from a
// YAML file with environment overrides.
package config

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DefaultPartTimeTaxRate is the statutory flat rate applied to
// part-time-taxed gross emoluments when the config does not set one.
const DefaultPartTimeTaxRate = "0.15"

// Configuration holds all settings for a payroll installation.
type Configuration struct {
	// DataDir is the root of the payroll data tree (organisation.yml,
	// employees/, tables/, payments/ and so on).
	DataDir string

	// PartTimeTaxRate is the flat part-time withholding rate as a decimal
	// string, e.g. "0.15".
	PartTimeTaxRate string

	// TransactionsDB, when set, switches transaction records from YAML
	// files to the SQLite database at this path.
	TransactionsDB string

	// Listen is the HTTP API bind address, e.g. ":8080".
	Listen string

	Logging LoggingConfig
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // console, json
}

// Load reads the YAML-formatted configuration at configPath. Every key can
// be overridden through the environment.
func Load(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	viper.SetDefault("DataDir", "data")
	viper.SetDefault("PartTimeTaxRate", DefaultPartTimeTaxRate)
	viper.SetDefault("Listen", ":8080")
	viper.SetDefault("Logging.Level", "info")
	viper.SetDefault("Logging.Format", "console")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	if err := viper.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if _, err := decimal.NewFromString(configuration.PartTimeTaxRate); err != nil {
		return nil, fmt.Errorf("invalid PartTimeTaxRate %q: %w", configuration.PartTimeTaxRate, err)
	}

	return &configuration, nil
}

// PartTimeRate returns the configured flat rate as a decimal.
func (c *Configuration) PartTimeRate() decimal.Decimal {
	rate, err := decimal.NewFromString(c.PartTimeTaxRate)
	if err != nil {
		rate, _ = decimal.NewFromString(DefaultPartTimeTaxRate)
	}
	return rate
}
