package cli

import "fmt"

// ConfigError reports unusable configuration: a file that failed to load
// or a field the invoked command cannot run without.
type ConfigError struct {
	// Path is the configuration file involved, when known.
	Path string

	// Field is the dotted configuration field, when the problem is
	// attributable to one.
	Field string

	Message string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Field != "" && e.Path != "":
		return fmt.Sprintf("config %s: %s: %s", e.Path, e.Field, e.Message)
	case e.Field != "":
		return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
	case e.Path != "":
		return fmt.Sprintf("config %s: %s", e.Path, e.Message)
	default:
		return fmt.Sprintf("config error: %s", e.Message)
	}
}

// NewConfigError creates a ConfigError. Path and field may be empty.
func NewConfigError(path, field, message string) *ConfigError {
	return &ConfigError{
		Path:    path,
		Field:   field,
		Message: message,
	}
}

// CommandError wraps a failure from one minos subcommand so the top level
// can report which operation failed.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("minos %s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}
