package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// requirements lists credentials that must be present per environment
var requirements = map[Environment][]func(*Config) *ValidationError{
	Production: {requireJWTSecret, requireDBPassword},
	CI:         {requireJWTSecret},
}

func requireJWTSecret(cfg *Config) *ValidationError {
	if cfg.Auth.JWTSecret == "" {
		return &ValidationError{Field: "auth.jwt_secret", Message: "JWT_SECRET or the jwt_secret secret is required"}
	}
	return nil
}

func requireDBPassword(cfg *Config) *ValidationError {
	if cfg.Database.Driver == "postgres" && cfg.Database.Password == "" {
		return &ValidationError{Field: "database.password", Message: "DB_PASSWORD or the db_password secret is required"}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateConfig checks struct constraints and the requirements of the current environment
func ValidateConfig(cfg *Config) error {
	var problems []string

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			problems = append(problems, ValidationError{
				Field:   fe.Namespace(),
				Message: fmt.Sprintf("failed %q constraint (value %v)", fe.Tag(), fe.Value()),
			}.Error())
		}
	}

	for _, check := range requirements[cfg.Environment] {
		if verr := check(cfg); verr != nil {
			problems = append(problems, verr.Error())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}
