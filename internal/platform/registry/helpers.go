package registry

import (
	"fmt"
	"time"
)

// Helpers para leer cfg.Custom dentro de las factories sin repetir type
// assertions. Los valores de YAML llegan como int, float64 o string.

// GetStringConfig devuelve custom[key] si es un string no vacío.
func GetStringConfig(custom map[string]interface{}, key, defaultValue string) string {
	if val, ok := custom[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}

// GetIntConfig acepta int y float64.
func GetIntConfig(custom map[string]interface{}, key string, defaultValue int) int {
	switch val := custom[key].(type) {
	case int:
		return val
	case float64:
		return int(val)
	}
	return defaultValue
}

// GetDurationConfig acepta time.Duration, segundos numéricos o un string
// de time.ParseDuration ("5s").
func GetDurationConfig(custom map[string]interface{}, key string, defaultValue time.Duration) time.Duration {
	switch val := custom[key].(type) {
	case time.Duration:
		return val
	case int:
		return time.Duration(val) * time.Second
	case float64:
		return time.Duration(val * float64(time.Second))
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetSliceConfig acepta []string y []interface{} de strings.
func GetSliceConfig(custom map[string]interface{}, key string, defaultValue []string) []string {
	switch val := custom[key].(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return defaultValue
			}
			out = append(out, s)
		}
		return out
	}
	return defaultValue
}

// ValidatePositiveInt devuelve error si value <= 0.
func ValidatePositiveInt(fieldName string, value int) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive, got %d", fieldName, value)
	}
	return nil
}

// ValidatePositiveDuration devuelve error si value <= 0.
func ValidatePositiveDuration(fieldName string, value time.Duration) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive, got %v", fieldName, value)
	}
	return nil
}
