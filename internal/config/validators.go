package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/idelchi/gogen/pkg/validator"
)

// rule is a custom validation with its error message.
type rule struct {
	fn      func(validator.FieldLevel) bool
	message string
}

// rules are the custom validations understood by the struct tags.
var rules = map[string]rule{
	"exclusive": {validateExclusive, "{0} is mutually exclusive with {1}"},
	"distinct":  {validateDistinct, "{0} must differ from {1}"},
	"readable":  {validateReadable, "{0} must be a readable file"},
}

// registerRules adds the custom validations and their messages, and reports fields
// by their label tag.
func registerRules(validator *validator.Validator) error {
	for tag, rule := range rules {
		if err := validator.RegisterValidationAndTranslation(tag, rule.fn, rule.message); err != nil {
			return fmt.Errorf("registering %s validation: %w", tag, err)
		}
	}

	validator.Validator().RegisterTagNameFunc(func(fld reflect.StructField) string {
		label, _, _ := strings.Cut(fld.Tag.Get("label"), ",")
		if label == "" || label == "-" {
			return fld.Name
		}

		return label
	})

	return nil
}

// validateExclusive fails when both string fields are set.
func validateExclusive(fl validator.FieldLevel) bool {
	this, other := fl.Field(), fl.Parent().FieldByName(fl.Param())

	if !this.IsValid() || !other.IsValid() ||
		this.Kind() != reflect.String || other.Kind() != reflect.String {
		return true
	}

	return this.String() == "" || other.String() == ""
}

// validateDistinct fails when both fields resolve to the same absolute path.
func validateDistinct(fl validator.FieldLevel) bool {
	other := fl.Parent().FieldByName(fl.Param())
	if !other.IsValid() || other.Kind() != reflect.String {
		return true
	}

	this, errThis := filepath.Abs(fl.Field().String())
	that, errThat := filepath.Abs(other.String())

	return errThis != nil || errThat != nil || this != that
}

// validateReadable checks that the field names an existing regular file.
func validateReadable(fl validator.FieldLevel) bool {
	info, err := os.Stat(fl.Field().String())

	return err == nil && info.Mode().IsRegular()
}
