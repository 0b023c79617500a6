// Package types provides type-safe enumerations shared by the configuration
// resolver and the task-definition loader.
//
// Each type follows the same shape: typed string constants, an All*
// function listing valid values, Validate, String and a case-insensitive
// Parse* constructor.
package types

import (
	"fmt"
	"strings"
)

// UIMode selects how task output is rendered.
type UIMode string

const (
	// UIModeTUI renders the interactive terminal UI.
	UIModeTUI UIMode = "tui"
	// UIModeStream streams task logs line by line.
	UIModeStream UIMode = "stream"
)

// AllUIModes returns all valid UI modes.
func AllUIModes() []UIMode {
	return []UIMode{UIModeTUI, UIModeStream}
}

// Validate checks if the UIMode is a valid value.
func (m UIMode) Validate() error {
	switch m {
	case UIModeTUI, UIModeStream:
		return nil
	case "":
		return fmt.Errorf("ui mode is required")
	default:
		return fmt.Errorf("invalid ui mode '%s' (must be tui or stream)", m)
	}
}

// String returns the string representation of the UIMode.
func (m UIMode) String() string {
	return string(m)
}

// IsTUI returns true if the UI mode is the terminal UI.
func (m UIMode) IsTUI() bool {
	return m == UIModeTUI
}

// ParseUIMode parses a string into a UIMode.
func ParseUIMode(s string) (UIMode, error) {
	m := UIMode(strings.ToLower(s))
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// EnvMode controls which environment variables are visible to tasks.
type EnvMode string

const (
	// EnvModeStrict only exposes declared variables.
	EnvModeStrict EnvMode = "strict"
	// EnvModeLoose exposes the whole environment.
	EnvModeLoose EnvMode = "loose"
)

// AllEnvModes returns all valid env modes.
func AllEnvModes() []EnvMode {
	return []EnvMode{EnvModeStrict, EnvModeLoose}
}

// Validate checks if the EnvMode is a valid value.
func (m EnvMode) Validate() error {
	switch m {
	case EnvModeStrict, EnvModeLoose:
		return nil
	case "":
		return fmt.Errorf("env mode is required")
	default:
		return fmt.Errorf("invalid env mode '%s' (must be strict or loose)", m)
	}
}

// String returns the string representation of the EnvMode.
func (m EnvMode) String() string {
	return string(m)
}

// ParseEnvMode parses a string into an EnvMode.
func ParseEnvMode(s string) (EnvMode, error) {
	m := EnvMode(strings.ToLower(s))
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// LogOrder controls how task logs are interleaved.
type LogOrder string

const (
	// LogOrderAuto lets the runner pick based on the environment.
	LogOrderAuto LogOrder = "auto"
	// LogOrderStream prints lines as soon as they are produced.
	LogOrderStream LogOrder = "stream"
	// LogOrderGrouped buffers each task's output until it finishes.
	LogOrderGrouped LogOrder = "grouped"
)

// AllLogOrders returns all valid log orders, default first.
func AllLogOrders() []LogOrder {
	return []LogOrder{LogOrderAuto, LogOrderStream, LogOrderGrouped}
}

// Validate checks if the LogOrder is a valid value.
func (o LogOrder) Validate() error {
	switch o {
	case LogOrderAuto, LogOrderStream, LogOrderGrouped:
		return nil
	case "":
		return fmt.Errorf("log order is required")
	default:
		return fmt.Errorf("invalid log order '%s' (must be auto, stream, or grouped)", o)
	}
}

// String returns the string representation of the LogOrder.
func (o LogOrder) String() string {
	return string(o)
}

// ParseLogOrder parses a string into a LogOrder.
func ParseLogOrder(s string) (LogOrder, error) {
	o := LogOrder(strings.ToLower(s))
	if err := o.Validate(); err != nil {
		return "", err
	}
	return o, nil
}
