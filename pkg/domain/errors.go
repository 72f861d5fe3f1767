package domain

import "fmt"

// ConfigurationError reports a missing required binding detected at
// construction time. It is fatal: the component refusing the configuration
// must not be used afterwards.
type ConfigurationError struct {
	// Field names the missing binding, e.g. "pathways" or "identifier column".
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("compath: missing required binding: %s", e.Field)
}

// NewConfigurationError builds a ConfigurationError for the named binding.
func NewConfigurationError(field string) *ConfigurationError {
	return &ConfigurationError{Field: field}
}

// NotFoundError reports that an entity referenced by the membership index
// could not be resolved to a row. It signals corrupt backing data, not an
// expected-empty lookup, and is never handled inside the engine.
type NotFoundError struct {
	Kind string // entity kind, e.g. "pathway"
	Key  string // the identifier that failed to resolve
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("compath: %s %q not found", e.Kind, e.Key)
}
