package review

import "fmt"

// ConfigError reports an invalid parameter value. It is fatal for the
// call that received it: no computation is attempted and the message
// is surfaced to the caller as-is.
type ConfigError struct {
	Param string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Msg)
}
