package batch

import "fmt"

// FileReadError reports a view file that could not be opened or read.
type FileReadError struct {
	View string
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("read view %s (%s): %v", e.View, e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// ConfigurationError reports an invalid generator configuration. It is
// always returned before any command line is emitted.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}
