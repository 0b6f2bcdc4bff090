package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hellenic-development/supernova-cli/internal/logging"
	"github.com/hellenic-development/supernova-cli/pkg/supernova"
)

// ValidationError is a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid field of a configuration.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, err := range e {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Validate checks cfg and returns ValidationErrors listing every problem.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if _, err := supernova.ParseEnvironment(cfg.Environment); err != nil {
		errs = append(errs, ValidationError{Field: "environment", Message: err.Error()})
	}

	if cfg.APIURL != "" {
		u, err := url.Parse(cfg.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{Field: "api_url", Message: fmt.Sprintf("%q is not an http(s) URL", cfg.APIURL)})
		}
	}

	if cfg.ProxyURL != "" {
		if _, err := supernova.ParseProxyURL(cfg.ProxyURL); err != nil {
			errs = append(errs, ValidationError{Field: "proxy_url", Message: err.Error()})
		}
	}

	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		errs = append(errs, ValidationError{Field: "log_level", Message: fmt.Sprintf("unknown level %q (must be debug, info, warn or error)", cfg.LogLevel)})
	}

	if cfg.Concurrency < 1 {
		errs = append(errs, ValidationError{Field: "concurrency", Message: fmt.Sprintf("must be at least 1, got %d", cfg.Concurrency)})
	}

	if cfg.RateLimit < 0 {
		errs = append(errs, ValidationError{Field: "rate_limit", Message: fmt.Sprintf("must not be negative, got %g", cfg.RateLimit)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
