package supernova

import (
	"fmt"
	"strings"
)

// Environment selects which deployment of the service the client talks to.
type Environment string

// Known environments.
const (
	Production  Environment = "production"
	Development Environment = "development"
	Staging     Environment = "staging"
	Demo        Environment = "demo"
)

// Environments lists every supported environment.
var Environments = []Environment{Production, Development, Staging, Demo}

// ParseEnvironment validates an environment name (case-insensitive).
func ParseEnvironment(s string) (Environment, error) {
	env := Environment(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Environments {
		if env == known {
			return env, nil
		}
	}
	return "", fmt.Errorf("unsupported environment %q (must be production, development, staging, or demo)", s)
}

// EnvironmentAPI returns the API base URL of an environment. A non-empty apiVersion
// is appended as a path fragment, e.g. "https://api.supernova.io/api/v2".
func EnvironmentAPI(env Environment, apiVersion string) (string, error) {
	versionFragment := ""
	if apiVersion != "" {
		versionFragment = "/" + apiVersion
	}

	switch env {
	case Production:
		return "https://api.supernova.io/api" + versionFragment, nil
	case Development:
		return "https://api.dev.supernova.io/api" + versionFragment, nil
	case Staging:
		return "https://api.staging.supernova.io/api" + versionFragment, nil
	case Demo:
		return "https://api.demo.supernova.io/api" + versionFragment, nil
	}
	return "", fmt.Errorf("unsupported network environment %q", env)
}
