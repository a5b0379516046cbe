package provider

import (
	"strconv"
	"time"
)

// SettingsOf returns the nested "settings" map of a provider config, or the
// config itself when it is flat.
func SettingsOf(config map[string]interface{}) map[string]interface{} {
	if settings, ok := config["settings"].(map[string]interface{}); ok {
		return settings
	}
	return config
}

// AuthOf returns the nested "auth" map of a provider config, or an empty map.
func AuthOf(config map[string]interface{}) map[string]interface{} {
	if auth, ok := config["auth"].(map[string]interface{}); ok {
		return auth
	}
	return map[string]interface{}{}
}

// String reads a string setting.
func String(settings map[string]interface{}, key, fallback string) string {
	if v, ok := settings[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// Bool reads a bool setting. "true"/"false" strings are accepted for env-expanded values.
func Bool(settings map[string]interface{}, key string, fallback bool) bool {
	switch v := settings[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// Int reads an integer setting. YAML and JSON decoders disagree on number types.
func Int(settings map[string]interface{}, key string, fallback int) int {
	switch v := settings[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// Float reads a float setting.
func Float(settings map[string]interface{}, key string, fallback float64) float64 {
	switch v := settings[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// Duration reads a duration setting given either as seconds or as a Go duration string.
func Duration(settings map[string]interface{}, key string, fallback time.Duration) time.Duration {
	switch v := settings[key].(type) {
	case int:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Duration(f * float64(time.Second))
		}
	}
	return fallback
}

// StringMap reads a map of strings, dropping non-string values.
func StringMap(settings map[string]interface{}, key string) map[string]string {
	out := make(map[string]string)
	raw, ok := settings[key].(map[string]interface{})
	if !ok {
		return out
	}
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
