package config

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPreflight          = errors.New("TITAN_PREFLIGHT should be either 1 or 0")
	ErrInvalidSignature          = errors.New("TITAN_REMOTE_CACHE_SIGNATURE should be either 1 or 0")
	ErrInvalidRemoteCacheEnabled = errors.New("TITAN_REMOTE_CACHE_ENABLED should be either 1 or 0")
	ErrNoGlobalConfigDir         = errors.New("global config directory not found")
)

// ParseError is returned when an environment variable holds a value that
// cannot be converted to the option's type.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InvalidLogOrderError is returned for an unknown TITAN_LOG_ORDER value.
type InvalidLogOrderError struct {
	Value string
	Valid string
}

func (e *InvalidLogOrderError) Error() string {
	return fmt.Sprintf("invalid value %q for log order. Valid values are: %s", e.Value, e.Valid)
}

// EncodingError is returned when an environment variable is not valid UTF-8.
type EncodingError struct {
	Var string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("environment variable %s is not valid UTF-8", e.Var)
}

// AbsoluteCacheDirError is returned when titan.json sets cacheDir to an
// absolute path.
type AbsoluteCacheDirError struct {
	// Path is the location of the offending value, "titan.json:line:col".
	Path  string
	Value string
}

func (e *AbsoluteCacheDirError) Error() string {
	return fmt.Sprintf("cacheDir %q at %s must be a relative path", e.Value, e.Path)
}

// ReadError is returned when a configuration file exists but cannot be
// read or decoded.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read config at %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
