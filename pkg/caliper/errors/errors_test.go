package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func TestCaliperError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *CaliperError
		expected string
	}{
		{
			name:     "message only",
			err:      &CaliperError{Message: "something went wrong"},
			expected: "something went wrong",
		},
		{
			name:     "with code",
			err:      &CaliperError{Code: "DEF-0001", Message: "a unit symbol is required"},
			expected: "[DEF-0001] a unit symbol is required",
		},
		{
			name: "with hints",
			err: &CaliperError{
				Code:    "DEF-0005",
				Message: "unknown unit 'mtr'",
				Hints:   []string{"Did you mean `m`?"},
			},
			expected: "[DEF-0005] unknown unit 'mtr'\n  Did you mean `m`?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNew_RendersTemplate(t *testing.T) {
	err := New("DIM-0002", map[string]any{
		"From":         "m²",
		"To":           "ft³",
		"Type":         "LENGTH",
		"FromExponent": 2,
		"ToExponent":   3,
	})
	if err.Class != ClassDimension {
		t.Errorf("Class = %q, want %q", err.Class, ClassDimension)
	}
	want := "cannot convert 'm²' to 'ft³': exponent of LENGTH is 2 vs 3"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
}

func TestNew_RendersHints(t *testing.T) {
	err := New("PATH-0001", map[string]any{"From": "ft", "To": "m"})
	if len(err.Hints) != 1 || !strings.Contains(err.Hints[0], "'ft' and 'm'") {
		t.Errorf("unexpected hints: %v", err.Hints)
	}
}

func TestNew_UnknownCode(t *testing.T) {
	err := New("NOPE-9999", map[string]any{"message": "custom"})
	if err.Message != "custom" || err.Code != "NOPE-9999" {
		t.Errorf("unexpected error: %+v", err)
	}
}

func TestIs_MatchesByClass(t *testing.T) {
	tests := []struct {
		code     string
		sentinel error
	}{
		{"DEF-0001", ErrInvalidDefinition},
		{"OFFSET-0001", ErrUnsupportedOffset},
		{"DIM-0001", ErrDimensionMismatch},
		{"PATH-0001", ErrNoConversionPath},
		{"LIMIT-0002", ErrRecursionLimit},
		{"ARITH-0001", ErrArithmetic},
		{"CONF-0003", ErrConfig},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", New(tt.code, nil))
			if !stderrors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%s, sentinel) = false", tt.code)
			}
			if stderrors.Is(err, ErrConfig) && tt.sentinel != ErrConfig {
				t.Errorf("%s unexpectedly matches ErrConfig", tt.code)
			}
		})
	}
}

func TestIs_MatchesByCode(t *testing.T) {
	err := New("DIM-0004", nil)
	if !stderrors.Is(err, &CaliperError{Code: "DIM-0004"}) {
		t.Error("expected code match")
	}
	if stderrors.Is(err, &CaliperError{Code: "DIM-0001"}) {
		t.Error("unexpected match on a different code")
	}
}

func TestClassOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", New("LIMIT-0001", nil))
	class, ok := ClassOf(err)
	if !ok || class != ClassRecursion {
		t.Errorf("ClassOf = %q, %v", class, ok)
	}
	if _, ok := ClassOf(stderrors.New("plain")); ok {
		t.Error("plain errors have no class")
	}
}

func TestWithCause(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := New("ARITH-0002", map[string]any{"Value": "x"}).WithCause(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable")
	}
}

func TestToJSON(t *testing.T) {
	err := New("DEF-0005", map[string]any{"Symbol": "xyz"})
	data, jerr := err.ToJSON()
	if jerr != nil {
		t.Fatal(jerr)
	}
	var decoded map[string]any
	if jerr := json.Unmarshal(data, &decoded); jerr != nil {
		t.Fatal(jerr)
	}
	if decoded["code"] != "DEF-0005" || decoded["class"] != "definition" {
		t.Errorf("unexpected JSON: %s", data)
	}
}

func TestLocalize(t *testing.T) {
	err := New("PATH-0001", map[string]any{"From": "ft", "To": "m"})

	tests := []struct {
		name     string
		tag      language.Tag
		expected string
	}{
		{"german", language.German, "kein Umrechnungsweg von 'ft' nach 'm'"},
		{"french", language.French, "aucun chemin de conversion de 'ft' vers 'm'"},
		{"english falls back", language.English, "no conversion path from 'ft' to 'm'"},
		{"unknown falls back", language.Japanese, "no conversion path from 'ft' to 'm'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := err.Localize(tt.tag); got != tt.expected {
				t.Errorf("Localize(%s) = %q, want %q", tt.tag, got, tt.expected)
			}
		})
	}
}

func TestLocalize_MissingTranslation(t *testing.T) {
	err := New("DEF-0009", nil)
	if got := err.Localize(language.French); got != "unit is required" {
		t.Errorf("Localize = %q", got)
	}
}

func TestSuggest(t *testing.T) {
	known := []string{"m", "mm", "km", "ft", "in", "kg", "lbm", "Pa"}
	tests := []struct {
		input    string
		expected string
	}{
		{"kmm", "km"},
		{"lbs", "lbm"},
		{"pa", "Pa"},
		{"parsec", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Suggest(tt.input, known, 1)
			if tt.expected == "" {
				if len(got) != 0 {
					t.Errorf("Suggest(%q) = %v, want none", tt.input, got)
				}
				return
			}
			if len(got) != 1 || got[0] != tt.expected {
				t.Errorf("Suggest(%q) = %v, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewUnknownUnit(t *testing.T) {
	err := NewUnknownUnit("fot", []string{"ft", "yd", "mi"})
	if err.Code != "DEF-0005" {
		t.Errorf("Code = %q", err.Code)
	}
	if len(err.Hints) != 1 || !strings.Contains(err.Hints[0], "`ft`") {
		t.Errorf("Hints = %v", err.Hints)
	}
}
