package workload

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Properties is the flat key/value configuration of a run, as read from a YCSB style properties file.
type Properties map[string]string

// Has reports whether any of the keys is set.
func (p Properties) Has(keys ...string) bool {
	_, ok := p.lookup(keys...)

	return ok
}

// String returns the first set key of keys, or the fallback.
func (p Properties) String(fallback string, keys ...string) string {
	if v, ok := p.lookup(keys...); ok {
		return v
	}

	return fallback
}

// Int64 returns the first set key of keys parsed as an integer, or the fallback.
func (p Properties) Int64(fallback int64, keys ...string) (int64, error) {
	v, ok := p.lookup(keys...)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, invalidProperty(keys[0], v, err)
	}

	return parsed, nil
}

// Float64 returns the first set key of keys parsed as a float, or the fallback.
func (p Properties) Float64(fallback float64, keys ...string) (float64, error) {
	v, ok := p.lookup(keys...)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, invalidProperty(keys[0], v, err)
	}

	return parsed, nil
}

// Bool returns the first set key of keys parsed as a boolean, or the fallback.
func (p Properties) Bool(fallback bool, keys ...string) (bool, error) {
	v, ok := p.lookup(keys...)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, invalidProperty(keys[0], v, err)
	}

	return parsed, nil
}

func (p Properties) lookup(keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := p[key]; ok {
			return strings.TrimSpace(v), true
		}
	}

	// viper lower-cases keys, so camel-cased YCSB keys are matched case-insensitively.
	for _, key := range keys {
		for k, v := range p {
			if strings.EqualFold(k, key) {
				return strings.TrimSpace(v), true
			}
		}
	}

	return "", false
}

func invalidProperty(key, value string, err error) error {
	return errors.Join(ErrInvalidProperty, fmt.Errorf("%s=%q: %w", key, value, err))
}
