package main

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Validator provides input validation for seed entries and person upserts
type Validator struct {
	errors []string
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]string, 0),
	}
}

// AddError adds a validation error
func (v *Validator) AddError(message string) {
	v.errors = append(v.errors, message)
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// ErrorString returns all errors as a single string
func (v *Validator) ErrorString() string {
	return strings.Join(v.errors, "; ")
}

// ValidateRequired checks if a string is not empty
func (v *Validator) ValidateRequired(value, field string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(fmt.Sprintf("%s is required", field))
	}
	return v
}

// ValidateLength checks string length constraints
func (v *Validator) ValidateLength(value, field string, min, max int) *Validator {
	length := utf8.RuneCountInString(value)
	if length < min {
		v.AddError(fmt.Sprintf("%s must be at least %d characters long", field, min))
	}
	if max > 0 && length > max {
		v.AddError(fmt.Sprintf("%s must not exceed %d characters", field, max))
	}
	return v
}

// ValidateHTTPURL checks that the value parses as an absolute http(s) URL
func (v *Validator) ValidateHTTPURL(value, field string) *Validator {
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		v.AddError(fmt.Sprintf("%s must be an absolute http or https URL", field))
	}
	return v
}

// ValidationError carries a single validation failure message
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
