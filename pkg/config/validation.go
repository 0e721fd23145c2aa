package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks the configuration using struct tags plus custom rules.
// Independent failures are aggregated so a broken config reports
// everything wrong with it at once. A failed validation is fatal to
// startup; it is never observed at request time.
func Validate(cfg *Config) error {
	var result *multierror.Error

	if err := validate.Struct(cfg); err != nil {
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			for _, e := range validationErrs {
				result = multierror.Append(result, fmt.Errorf(
					"%s: validation failed on '%s' tag (value: %v)",
					e.Namespace(), e.Tag(), e.Value()))
			}
		} else {
			result = multierror.Append(result, err)
		}
	}

	if err := validateCustomRules(cfg); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

// validateCustomRules performs validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	var result *multierror.Error

	// Epoch years are 32-bit in the mount option grammar; anything wider
	// would also overflow the day-count arithmetic.
	if cfg.Epoch > 1<<31-1 || cfg.Epoch < -(1<<31) {
		result = multierror.Append(result,
			fmt.Errorf("epoch: year %d out of range", cfg.Epoch))
	}

	return result.ErrorOrNil()
}
