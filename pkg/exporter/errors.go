package exporter

import "errors"

// Error kinds reported by the loader, the context builder and the engine. They are
// wrapped with the offending path or id; test for them with errors.Is.
var (
	ErrPluginNotFound        = errors.New("exporter package not found")
	ErrPluginManifestInvalid = errors.New("exporter manifest invalid")
	ErrInvalidSelection      = errors.New("invalid brand/theme selection")
	ErrBrandNotFound         = errors.New("brand not found")
	ErrThemeNotFound         = errors.New("theme not found")
	ErrPluginExecutionFailed = errors.New("exporter execution failed")
)
