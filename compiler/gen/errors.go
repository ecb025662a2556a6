package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates a schema type that cannot be turned into a class.
	ErrInvalidSchema = errors.New("fhirgen: invalid schema")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("fhirgen: missing configuration")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("fhirgen: code generation failed")
	// ErrInvalidInput indicates a classifier input that is neither a schema
	// node nor a type name.
	ErrInvalidInput = errors.New("fhirgen: invalid input")
	// ErrPropertyConflict indicates two properties with the same name on one class.
	ErrPropertyConflict = errors.New("fhirgen: property conflict")
)

// SchemaError represents an error building the class of a schema type.
type SchemaError struct {
	Type     string // Schema element name
	Property string // Property name (if applicable)
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("fhirgen: schema error")
	if e.Type != "" {
		b.WriteString(" on type ")
		b.WriteString(e.Type)
	}
	if e.Property != "" {
		b.WriteString(" property ")
		b.WriteString(e.Property)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(typeName, property, message string, cause error) *SchemaError {
	return &SchemaError{
		Type:     typeName,
		Property: property,
		Message:  message,
		Cause:    cause,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("fhirgen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("fhirgen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// GenerationError represents a code generation error.
type GenerationError struct {
	Phase   string // "class", "template", "snapshot", etc.
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("fhirgen: generation error")
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// InputError is returned by the type classifier when it cannot derive a
// type name from its input.
type InputError struct {
	Input   any
	Message string
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return fmt.Sprintf("fhirgen: invalid input %v: %s", e.Input, e.Message)
}

// Is reports whether the target matches the sentinel error for InputError.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewInputError creates a new InputError.
func NewInputError(input any, message string) *InputError {
	return &InputError{Input: input, Message: message}
}

// PropertyConflictError records a property whose name was already taken on
// its class. The first declaration is kept.
type PropertyConflictError struct {
	Class    string
	Property string
	Kept     PropertyKind
	Dropped  PropertyKind
}

// Error implements the error interface.
func (e *PropertyConflictError) Error() string {
	return fmt.Sprintf("fhirgen: property %q redeclared on class %q (kept %s, dropped %s)", e.Property, e.Class, e.Kept, e.Dropped)
}

// Is reports whether the target matches the sentinel error for PropertyConflictError.
func (e *PropertyConflictError) Is(target error) bool {
	return target == ErrPropertyConflict
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// IsInputError reports whether the error is an InputError.
func IsInputError(err error) bool {
	var inputErr *InputError
	return errors.As(err, &inputErr)
}

// IsPropertyConflict reports whether the error is a PropertyConflictError.
func IsPropertyConflict(err error) bool {
	var conflict *PropertyConflictError
	return errors.As(err, &conflict)
}
