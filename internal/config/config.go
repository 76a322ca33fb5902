// Package config holds the command line configuration and its validation.
package config

import (
	"errors"
	"fmt"

	"github.com/idelchi/gogen/pkg/validator"
)

// Config is populated by viper from flags and TREECRYPT_* environment variables.
type Config struct {
	// Show the configuration and exit
	Show bool

	// Positional arguments
	Source      string `label:"source"      validate:"required"`
	Destination string `label:"destination" validate:"required,distinct=Source"`

	// Set by the decrypt command
	Decrypt bool

	// Key selection
	KeyLength int    `label:"--key-length" mapstructure:"key-length" validate:"omitempty,oneof=128 192 256"`
	Key       string `label:"--key"        mapstructure:"key"        validate:"omitempty,hexadecimal,exclusive=KeyFile"`
	KeyFile   string `label:"--key-file"   mapstructure:"key-file"   validate:"omitempty,readable"`

	// Processing
	Suite              string `label:"--suite"     mapstructure:"suite"     validate:"omitempty,oneof=ctr-hmac gcm-stream"`
	PreserveTimestamps bool   `mapstructure:"preserve-timestamps"`
	Dry                bool   `mapstructure:"dry"`

	// Selection
	Include     []string `mapstructure:"include"`
	Exclude     []string `mapstructure:"exclude"`
	IncludeFrom string   `label:"--include-from" mapstructure:"include-from" validate:"omitempty,readable"`
	ExcludeFrom string   `label:"--exclude-from" mapstructure:"exclude-from" validate:"omitempty,readable"`

	// Output
	Quiet    bool   `mapstructure:"quiet"`
	Stats    bool   `mapstructure:"stats"`
	LogLevel string `label:"--log-level" mapstructure:"log-level" validate:"oneof=debug info warn error"`
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Display returns the value of the Show field.
func (c Config) Display() bool {
	return c.Show
}

// Validate validates the configuration against the struct tags.
func (c Config) Validate(config any) error {
	validator := validator.NewValidator()

	if err := registerRules(validator); err != nil {
		return err
	}

	if errs := validator.Validate(config); len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}

	return nil
}
