// config_keys.go provides key-value access to configuration settings for the
// config command and the MCP server, where settings are addressed by dotted
// string keys such as "search.workers".
//
// Optional fields are pointers so "not set" (nil) and "explicitly set to
// zero/false" stay distinguishable; defaults apply only to nil.

package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ValidKeys returns all valid configuration keys.
func ValidKeys() []string {
	return []string{
		"search.types", "search.workers", "search.max_length",
		"search.exclude", "search.hidden",
		"color",
		"history.enabled",
		"limits.max_line_length",
	}
}

// IsValidKey returns true if the key is a valid configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// Get returns the value of a configuration key as a string. List values are
// comma separated.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "search.types":
		return strings.Join(c.Types(), ","), nil
	case "search.workers":
		return strconv.Itoa(c.Workers()), nil
	case "search.max_length":
		return strconv.Itoa(c.MaxLength()), nil
	case "search.exclude":
		return strings.Join(c.Exclude(), ","), nil
	case "search.hidden":
		return strconv.FormatBool(c.Hidden()), nil
	case "color":
		return c.ColorMode(), nil
	case "history.enabled":
		return strconv.FormatBool(c.HistoryEnabled()), nil
	case "limits.max_line_length":
		return strconv.Itoa(c.MaxLineLength()), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set sets the value of a configuration key. An empty value clears a list.
func (c *Config) Set(key, value string) error {
	switch key {
	case "search.types":
		c.Search.Types = splitList(value)
	case "search.workers":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > MaxWorkers {
			return fmt.Errorf("%w: search.workers must be an integer between 0 and %d", ErrInvalidValue, MaxWorkers)
		}
		c.Search.Workers = &n
	case "search.max_length":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: search.max_length must be a non-negative integer", ErrInvalidValue)
		}
		c.Search.MaxLength = &n
	case "search.exclude":
		c.Search.Exclude = splitList(value)
	case "search.hidden":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.Search.Hidden = &b
	case "color":
		v := strings.ToLower(value)
		if v != ColorAuto && v != ColorAlways && v != ColorNever {
			return fmt.Errorf("%w: color must be auto, always or never", ErrInvalidValue)
		}
		c.Color = v
	case "history.enabled":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		c.History.Enabled = &b
	case "limits.max_line_length":
		n, err := strconv.Atoi(value)
		if err != nil || n < MinMaxLineLength || n > MaxMaxLineLength {
			return fmt.Errorf("%w: limits.max_line_length must be a positive integer", ErrInvalidValue)
		}
		c.Limits.MaxLineLength = &n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// All returns all configuration values as a map.
func (c *Config) All() map[string]string {
	all := make(map[string]string, len(ValidKeys()))
	for _, k := range ValidKeys() {
		all[k], _ = c.Get(k)
	}
	return all
}

// IsSet returns true if the key has an explicit value (not just defaults).
func (c *Config) IsSet(key string) bool {
	switch key {
	case "search.types":
		return c.Search.Types != nil
	case "search.workers":
		return c.Search.Workers != nil
	case "search.max_length":
		return c.Search.MaxLength != nil
	case "search.exclude":
		return c.Search.Exclude != nil
	case "search.hidden":
		return c.Search.Hidden != nil
	case "color":
		return c.Color != ""
	case "history.enabled":
		return c.History.Enabled != nil
	case "limits.max_line_length":
		return c.Limits.MaxLineLength != nil
	default:
		return false
	}
}

func parseBool(key, value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: %s must be true or false", ErrInvalidValue, key)
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
