package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ValidationError represents an invalid value in a config file.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the values a config file set. Unset fields are not
// checked.
func Validate(o ConfigurationOptions) error {
	var errors []string

	for field, value := range map[string]*string{"apiUrl": o.APIURL, "loginUrl": o.LoginURL} {
		if err := validateURL(field, value); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if o.UI != nil {
		if err := o.UI.Validate(); err != nil {
			errors = append(errors, ValidationError{Field: "ui", Message: err.Error()}.Error())
		}
	}
	if o.EnvMode != nil {
		if err := o.EnvMode.Validate(); err != nil {
			errors = append(errors, ValidationError{Field: "envMode", Message: err.Error()}.Error())
		}
	}
	if o.LogOrder != nil {
		if err := o.LogOrder.Validate(); err != nil {
			errors = append(errors, ValidationError{Field: "logOrder", Message: err.Error()}.Error())
		}
	}

	if len(errors) > 0 {
		sort.Strings(errors)
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func validateURL(field string, value *string) error {
	if value == nil || *value == "" {
		return nil
	}
	u, err := url.Parse(*value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%q is not an http(s) URL", *value),
		}
	}
	return nil
}
