// Package errors provides the structured error type returned by every
// fallible Caliper operation.
//
// Each error carries a class (its place in the error taxonomy), a stable
// code that doubles as the localization message key, a rendered English
// message and the template data used to render it.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and matching with errors.Is.
type ErrorClass string

const (
	ClassDefinition ErrorClass = "definition" // Invalid unit definition or lookup
	ClassOffset     ErrorClass = "offset"     // Non-zero offset in unit algebra
	ClassDimension  ErrorClass = "dimension"  // Incompatible dimensions
	ClassPath       ErrorClass = "path"       // No conversion path
	ClassRecursion  ErrorClass = "recursion"  // Hop or depth bound exceeded
	ClassArithmetic ErrorClass = "arithmetic" // Division by zero, invalid decimal
	ClassConfig     ErrorClass = "config"     // Configuration and definition files
)

// Sentinels for errors.Is matching by class.
var (
	ErrInvalidDefinition = &CaliperError{Class: ClassDefinition}
	ErrUnsupportedOffset = &CaliperError{Class: ClassOffset}
	ErrDimensionMismatch = &CaliperError{Class: ClassDimension}
	ErrNoConversionPath  = &CaliperError{Class: ClassPath}
	ErrRecursionLimit    = &CaliperError{Class: ClassRecursion}
	ErrArithmetic        = &CaliperError{Class: ClassArithmetic}
	ErrConfig            = &CaliperError{Class: ClassConfig}
)

// CaliperError represents any recoverable error raised by the library.
type CaliperError struct {
	Class   ErrorClass     `json:"class"`           // Error category
	Code    string         `json:"code"`            // Error code and message key (e.g., "DIM-0002")
	Message string         `json:"message"`         // Rendered English message
	Hints   []string       `json:"hints,omitempty"` // Suggestions for fixing
	Data    map[string]any `json:"data,omitempty"`  // Template variables
	Err     error          `json:"-"`               // Underlying cause, if any
}

// Error implements the error interface.
func (e *CaliperError) Error() string {
	var sb strings.Builder
	if e.Code != "" {
		sb.WriteString("[")
		sb.WriteString(e.Code)
		sb.WriteString("] ")
	}
	sb.WriteString(e.Message)
	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *CaliperError) Unwrap() error {
	return e.Err
}

// Is matches sentinels by class, or by code when the target carries one.
func (e *CaliperError) Is(target error) bool {
	t, ok := target.(*CaliperError)
	if !ok {
		return false
	}
	if t.Code != "" {
		return t.Code == e.Code
	}
	return t.Class == e.Class
}

// ToJSON returns the error as JSON bytes.
func (e *CaliperError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithCause returns a copy of the error wrapping cause.
func (e *CaliperError) WithCause(cause error) *CaliperError {
	c := *e
	c.Err = cause
	return &c
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass // Error category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Definition errors (DEF-0xxx)
	"DEF-0001": {
		Class:    ClassDefinition,
		Template: "a unit symbol is required",
	},
	"DEF-0002": {
		Class:    ClassDefinition,
		Template: "unit type is required for '{{.Symbol}}'",
	},
	"DEF-0003": {
		Class:    ClassDefinition,
		Template: "{{.Operand}} is required to define '{{.Symbol}}'",
	},
	"DEF-0004": {
		Class:    ClassDefinition,
		Template: "symbol '{{.Symbol}}' is already registered as {{.Existing}}, cannot redefine it as {{.Requested}}",
	},
	"DEF-0005": {
		Class:    ClassDefinition,
		Template: "unknown unit '{{.Symbol}}'",
	},
	"DEF-0006": {
		Class:    ClassDefinition,
		Template: "power exponent for '{{.Symbol}}' must not be zero",
	},
	"DEF-0007": {
		Class:    ClassDefinition,
		Template: "offset is only defined for scalar units, '{{.Symbol}}' is a {{.Shape}}",
	},
	"DEF-0008": {
		Class:    ClassDefinition,
		Template: "abscissa unit is required for the conversion of '{{.Symbol}}'",
	},
	"DEF-0009": {
		Class:    ClassDefinition,
		Template: "unit is required",
	},
	"DEF-0010": {
		Class:    ClassDefinition,
		Template: "scaling factor of '{{.Symbol}}' must not be zero",
	},
	// Offset errors (OFFSET-0xxx)
	"OFFSET-0001": {
		Class:    ClassOffset,
		Template: "cannot {{.Operation}} '{{.Symbol}}': it has a non-zero offset of {{.Offset}}",
		Hints:    []string{"convert to a unit without an offset first"},
	},
	// Dimension errors (DIM-0xxx)
	"DIM-0001": {
		Class:    ClassDimension,
		Template: "cannot convert '{{.From}}' to '{{.To}}': {{.FromCount}} base dimensions vs {{.ToCount}}",
	},
	"DIM-0002": {
		Class:    ClassDimension,
		Template: "cannot convert '{{.From}}' to '{{.To}}': exponent of {{.Type}} is {{.FromExponent}} vs {{.ToExponent}}",
	},
	"DIM-0003": {
		Class:    ClassDimension,
		Template: "cannot convert '{{.From}}' to '{{.To}}': base term '{{.Term}}' is not a scalar unit",
	},
	"DIM-0004": {
		Class:    ClassDimension,
		Template: "cannot convert '{{.From}}' to '{{.To}}': no {{.Type}} dimension in '{{.To}}'",
	},
	// Path errors (PATH-0xxx)
	"PATH-0001": {
		Class:    ClassPath,
		Template: "no conversion path from '{{.From}}' to '{{.To}}'",
		Hints:    []string{"define a bridge conversion between '{{.From}}' and '{{.To}}'"},
	},
	// Recursion errors (LIMIT-0xxx)
	"LIMIT-0001": {
		Class:    ClassRecursion,
		Template: "reducing '{{.Symbol}}' exceeded the depth limit of {{.Limit}}",
	},
	"LIMIT-0002": {
		Class:    ClassRecursion,
		Template: "conversion chain of '{{.Symbol}}' exceeded {{.Limit}} hops",
	},
	// Arithmetic errors (ARITH-0xxx)
	"ARITH-0001": {
		Class:    ClassArithmetic,
		Template: "division by zero in {{.Operation}}",
	},
	"ARITH-0002": {
		Class:    ClassArithmetic,
		Template: "invalid amount '{{.Value}}'",
	},
	// Configuration errors (CONF-0xxx)
	"CONF-0001": {
		Class:    ClassConfig,
		Template: "unknown unit type '{{.Type}}'",
	},
	"CONF-0002": {
		Class:    ClassConfig,
		Template: "unknown unit shape '{{.Shape}}' for '{{.Symbol}}'",
		Hints:    []string{"use one of: scalar, product, quotient, power"},
	},
	"CONF-0003": {
		Class:    ClassConfig,
		Template: "unknown measurement system '{{.System}}'",
	},
}

// New creates a CaliperError from a catalog code and template data.
func New(code string, data map[string]any) *CaliperError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if m, ok := data["message"].(string); ok {
			msg = m
		}
		return &CaliperError{
			Class:   ClassDefinition,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	err := &CaliperError{
		Class:   def.Class,
		Code:    code,
		Message: renderTemplate(def.Template, data),
		Data:    data,
	}
	for _, hintTmpl := range def.Hints {
		if rendered := renderTemplate(hintTmpl, data); rendered != "" {
			err.Hints = append(err.Hints, rendered)
		}
	}
	return err
}

// Newf creates an error outside the catalog, for one-off messages.
func Newf(class ErrorClass, format string, args ...any) *CaliperError {
	return &CaliperError{
		Class:   class,
		Message: fmt.Sprintf(format, args...),
	}
}

// ClassOf returns the class of err if it is (or wraps) a CaliperError.
func ClassOf(err error) (ErrorClass, bool) {
	for err != nil {
		if ce, ok := err.(*CaliperError); ok {
			return ce.Class, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return "", false
		}
		err = u.Unwrap()
	}
	return "", false
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}
	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}
	return buf.String()
}
