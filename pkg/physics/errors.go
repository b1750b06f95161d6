package physics

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig 所有配置错误都可以用 errors.Is(err, ErrInvalidConfig) 匹配
var ErrInvalidConfig = errors.New("invalid motion configuration")

// ConfigError describes a rejected configuration value.
// Configuration is validated when an instance is created and is never clamped.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

// Is 让 errors.Is 识别 ErrInvalidConfig
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func configErr(field string, value any, reason string) error {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}
